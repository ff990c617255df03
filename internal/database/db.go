package database

import (
	"log"

	"mylg-backend/internal/config"
	"mylg-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	// BudgetHeader migration: client_revision_id eskiden integer'dı,
	// ondalıklı revizyonlar (3.1 gibi) geldiğinde numeric'e çevrildi.
	// AutoMigrate tip değişikliğini her zaman yapmıyor, elle kontrol et.
	if DB.Migrator().HasTable(&models.BudgetHeader{}) {
		var colType string
		DB.Raw(`
			SELECT data_type
			FROM information_schema.columns
			WHERE table_name = 'budget_headers' AND column_name = 'client_revision_id'
		`).Scan(&colType)
		if colType == "bigint" || colType == "integer" {
			log.Println("BudgetHeader.client_revision_id numeric'e çevriliyor...")
			if err := DB.Exec("ALTER TABLE budget_headers ALTER COLUMN client_revision_id TYPE numeric USING client_revision_id::numeric").Error; err != nil {
				log.Printf("client_revision_id tipi değiştirilirken hata: %v", err)
			} else {
				log.Println("client_revision_id numeric yapıldı")
			}
		}
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.BudgetHeader{},
		&models.BudgetLineItem{},
		&models.Task{},
		&models.Message{},
		&models.FileEntry{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate hatası: %v", err)
	}

	// Satır sorguları hep (budget_id, revision) çifti üzerinden gider
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_budget_line_items_budget_revision ON budget_line_items(budget_id, revision)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_budget_headers_budget_revision ON budget_headers(budget_id, revision)")

	log.Println("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}
