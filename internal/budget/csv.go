package budget

import (
	"strconv"
	"strings"

	"mylg-backend/internal/models"
)

// csvFields - export kolon sırası; değişirse müşteri tarafı şablonları bozulur
var csvFields = []string{
	"elementKey",
	"title",
	"category",
	"quantity",
	"itemBudgetedCost",
	"itemFinalCost",
	"vendor",
	"notes",
}

func csvNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func csvQuote(val string) string {
	return `"` + strings.ReplaceAll(val, `"`, `""`) + `"`
}

// WriteCSV - revizyon satırlarını CSV'ye döker. Başlık satırı çıplak,
// tüm değerler çift tırnaklı, içteki tırnaklar ikilenir (RFC4180).
// encoding/csv kasıtlı kullanılmıyor: o yalnızca gerektiğinde tırnaklar,
// buradaki format her değeri koşulsuz tırnaklar.
func WriteCSV(items []models.BudgetLineItem) string {
	var b strings.Builder
	b.WriteString(strings.Join(csvFields, ","))

	for _, it := range items {
		row := []string{
			csvQuote(it.ElementKey),
			csvQuote(it.Title),
			csvQuote(it.Category),
			csvQuote(csvNumber(it.Quantity)),
			csvQuote(csvNumber(it.ItemBudgetedCost)),
			csvQuote(csvNumber(it.ItemFinalCost)),
			csvQuote(it.Vendor),
			csvQuote(it.Notes),
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(row, ","))
	}

	return b.String()
}

// CSVFileName - indirme dosya adı: revision-3.1.csv
func CSVFileName(rev float64) string {
	return "revision-" + FormatRevision(rev) + ".csv"
}
