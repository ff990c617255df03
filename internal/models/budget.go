package models

import "time"

// BudgetHeader - bir (proje, revizyon) çiftinin başlık satırı.
// Aynı budget_id'yi paylaşan header'lar aynı bütçenin revizyonlarıdır.
type BudgetHeader struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	ProjectID    string  `gorm:"size:64;index;not null" json:"projectId"`
	BudgetID     string  `gorm:"size:64;index;not null" json:"budgetId"`
	BudgetItemID string  `gorm:"size:64;uniqueIndex;not null" json:"budgetItemId"` // HEADER-<uuid>
	Revision     float64 `gorm:"index;not null;default:1" json:"revision"`

	Title     string `gorm:"size:255" json:"title"`
	StartDate string `gorm:"size:20" json:"startDate"`
	EndDate   string `gorm:"size:20" json:"endDate"`

	HeaderBallPark          float64 `gorm:"default:0" json:"headerBallPark"` // elle girilen kaba tahmin
	HeaderBudgetedTotalCost float64 `gorm:"default:0" json:"headerBudgetedTotalCost"`
	HeaderActualTotalCost   float64 `gorm:"default:0" json:"headerActualTotalCost"`
	HeaderFinalTotalCost    float64 `gorm:"default:0" json:"headerFinalTotalCost"`
	HeaderEffectiveMarkup   float64 `gorm:"default:0" json:"headerEffectiveMarkup"`

	// Revizyonla ilişkili müşteri isimleri (JSON dizisi)
	Clients string `gorm:"type:jsonb;default:'[]'" json:"clients"`

	// Müşteriye görünür revizyon işareti; tüm header'lara kopyalanır
	ClientRevisionID *float64 `json:"clientRevisionId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BudgetLineItem - bir maliyet satırı.
// ItemActualCost / ItemReconciledCost pointer'dır: NULL "girilmemiş" demektir,
// 0 ise girilmiş sıfır; ikisi farklı davranır (bkz. budget paketi).
type BudgetLineItem struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	ProjectID    string  `gorm:"size:64;index;not null" json:"projectId"`
	BudgetID     string  `gorm:"size:64;index;not null" json:"budgetId"`
	BudgetItemID string  `gorm:"size:64;uniqueIndex;not null" json:"budgetItemId"` // LINE-<uuid>
	Revision     float64 `gorm:"index;not null;default:1" json:"revision"`

	ElementKey  string `gorm:"size:64;index" json:"elementKey"` // <proje-slug>-0007
	ElementID   string `gorm:"size:64" json:"elementId"`        // <KATEGORI>-0003
	Title       string `gorm:"size:255" json:"title"`
	Category    string `gorm:"size:100;index" json:"category"`
	Description string `gorm:"size:500" json:"description"`

	Quantity           float64  `gorm:"default:0" json:"quantity"`
	UnitCost           float64  `gorm:"default:0" json:"unitCost"`
	ItemBudgetedCost   float64  `gorm:"default:0" json:"itemBudgetedCost"`
	ItemActualCost     *float64 `json:"itemActualCost"`
	ItemReconciledCost *float64 `json:"itemReconciledCost"`
	ItemFinalCost      float64  `gorm:"default:0" json:"itemFinalCost"`
	ItemMarkUp         float64  `gorm:"default:0" json:"itemMarkUp"` // oran, yüzde değil (0.25)

	AreaGroup     string `gorm:"size:100" json:"areaGroup"`
	InvoiceGroup  string `gorm:"size:100" json:"invoiceGroup"`
	Client        string `gorm:"size:100" json:"client"`
	Vendor        string `gorm:"size:100" json:"vendor"`
	Notes         string `gorm:"size:500" json:"notes"`
	PaymentStatus string `gorm:"size:30" json:"paymentStatus"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
