package budget

import (
	"math"

	"mylg-backend/internal/models"
)

// Totals - satır listesinden türetilen header toplamları
type Totals struct {
	Budgeted        float64 `json:"budgeted"`
	Final           float64 `json:"final"`
	Actual          float64 `json:"actual"`
	EffectiveMarkup float64 `json:"effectiveMarkup"`
}

// num: bozuk değerleri (NaN/Inf) 0'a indirger; satır asla atlanmaz
func num(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CalculateHeaderTotals - header rollup'larını satır listesinden hesaplar.
// Saf fonksiyon, satır sırasından bağımsız.
//
// Dikkat: "final" toplamı satırların kendi itemFinalCost alanından değil,
// budgeted * (1 + markup) üzerinden türetilir. "actual" toplamında ise
// öncelik actual > reconciled'dır (satır bazlı final cost önceliğinin tersi).
func CalculateHeaderTotals(items []models.BudgetLineItem) Totals {
	var budgeted, final, actual float64

	for _, it := range items {
		qty := num(it.Quantity)
		budget := num(it.ItemBudgetedCost)
		markup := num(it.ItemMarkUp)

		var actualUnit float64
		if it.ItemActualCost != nil {
			actualUnit = num(*it.ItemActualCost)
		} else if it.ItemReconciledCost != nil {
			actualUnit = num(*it.ItemReconciledCost)
		}

		budgeted += qty * budget
		final += qty * budget * (1 + markup)
		actual += qty * actualUnit
	}

	effectiveMarkup := 0.0
	if budgeted != 0 {
		effectiveMarkup = (final - budgeted) / budgeted
	}

	return Totals{
		Budgeted:        budgeted,
		Final:           final,
		Actual:          actual,
		EffectiveMarkup: effectiveMarkup,
	}
}

// ActiveBaseCost - final cost hesabında kullanılan aktif baz maliyet.
// Öncelik: reconciled > actual > budgeted; girilmiş VE sıfırdan farklı olan kazanır.
func ActiveBaseCost(it *models.BudgetLineItem) float64 {
	if it.ItemReconciledCost != nil && num(*it.ItemReconciledCost) != 0 {
		return num(*it.ItemReconciledCost)
	}
	if it.ItemActualCost != nil && num(*it.ItemActualCost) != 0 {
		return num(*it.ItemActualCost)
	}
	return num(it.ItemBudgetedCost)
}

// ComputeFinalCost - aktif bazdan ileri yönlü final cost.
// Miktar 0 ise çarpan 1 kabul edilir; baz yoksa final 0'dır.
func ComputeFinalCost(it *models.BudgetLineItem) float64 {
	base := ActiveBaseCost(it)
	if base == 0 {
		return 0
	}
	qty := num(it.Quantity)
	if qty == 0 {
		qty = 1
	}
	return base * (1 + num(it.ItemMarkUp)) * qty
}

// BackSolveMarkup - baz maliyet değiştiğinde eski final cost'u koruyacak markup.
// newMarkup = prevFinal / (base * qty) - 1
// Yüzde iki ondalığa yuvarlanır (oran olarak 1e-4), UI ile bire bir aynı davranış.
func BackSolveMarkup(prevFinal, base, qty float64) float64 {
	if base == 0 {
		return 0
	}
	if qty == 0 {
		qty = 1
	}
	markup := prevFinal/(base*qty) - 1
	return math.Round(markup*10000) / 10000
}

// CostField - maliyet matematiğini etkileyen alanların kapalı kümesi.
// String bazlı alan adı dispatch'i yerine burada tek tek ele alınır.
type CostField int

const (
	FieldQuantity CostField = iota
	FieldBudgetedCost
	FieldActualCost
	FieldReconciledCost
	FieldMarkUp
)

// ApplyCostEdit - tek bir maliyet alanı düzenlemesini satıra uygular.
// actual/reconciled düzenlenirken satırın final cost'u doluysa markup geriye doğru
// çözülür ki final cost aynı kalsın; ardından final her durumda ileri yönlü yeniden
// hesaplanır. Bu çift yönlü bağımlılık (maliyet→markup / markup→maliyet) görünür
// toplamların kaymaması için şart.
func ApplyCostEdit(it *models.BudgetLineItem, field CostField, value float64) {
	prevFinal := num(it.ItemFinalCost)

	switch field {
	case FieldQuantity:
		it.Quantity = num(value)
	case FieldBudgetedCost:
		it.ItemBudgetedCost = num(value)
	case FieldActualCost:
		v := num(value)
		it.ItemActualCost = &v
	case FieldReconciledCost:
		v := num(value)
		it.ItemReconciledCost = &v
	case FieldMarkUp:
		it.ItemMarkUp = num(value)
	}

	if (field == FieldActualCost || field == FieldReconciledCost) && prevFinal != 0 {
		base := ActiveBaseCost(it)
		if base != 0 {
			qty := num(it.Quantity)
			it.ItemMarkUp = BackSolveMarkup(prevFinal, base, qty)
		}
	}

	it.ItemFinalCost = ComputeFinalCost(it)
}

func costChanged(a, b *float64) bool {
	if a == nil || b == nil {
		return a != b
	}
	return *a != *b
}

// MergeCostEdits - tam gövde güncellemesini alan bazlı maliyet düzenlemelerine
// çevirir. Gelen gövdede öncekinden farklı olan her maliyet alanı ApplyCostEdit
// üzerinden geçer; actual/reconciled girişleri böylece markup'ı geriye doğru
// çözer. Final cost istemciden alınmaz, her zaman sunucuda hesaplanır.
func MergeCostEdits(prev, incoming models.BudgetLineItem) models.BudgetLineItem {
	merged := incoming
	merged.Quantity = prev.Quantity
	merged.ItemBudgetedCost = prev.ItemBudgetedCost
	merged.ItemActualCost = prev.ItemActualCost
	merged.ItemReconciledCost = prev.ItemReconciledCost
	merged.ItemMarkUp = prev.ItemMarkUp
	merged.ItemFinalCost = prev.ItemFinalCost

	if incoming.Quantity != prev.Quantity {
		ApplyCostEdit(&merged, FieldQuantity, incoming.Quantity)
	}
	if incoming.ItemBudgetedCost != prev.ItemBudgetedCost {
		ApplyCostEdit(&merged, FieldBudgetedCost, incoming.ItemBudgetedCost)
	}
	if costChanged(prev.ItemActualCost, incoming.ItemActualCost) {
		if incoming.ItemActualCost != nil {
			ApplyCostEdit(&merged, FieldActualCost, *incoming.ItemActualCost)
		} else {
			merged.ItemActualCost = nil
			merged.ItemFinalCost = ComputeFinalCost(&merged)
		}
	}
	if costChanged(prev.ItemReconciledCost, incoming.ItemReconciledCost) {
		if incoming.ItemReconciledCost != nil {
			ApplyCostEdit(&merged, FieldReconciledCost, *incoming.ItemReconciledCost)
		} else {
			merged.ItemReconciledCost = nil
			merged.ItemFinalCost = ComputeFinalCost(&merged)
		}
	}
	if incoming.ItemMarkUp != prev.ItemMarkUp {
		ApplyCostEdit(&merged, FieldMarkUp, incoming.ItemMarkUp)
	}

	return merged
}
