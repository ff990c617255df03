package budget

import (
	"errors"
	"fmt"

	"mylg-backend/internal/models"

	"gorm.io/gorm"
)

// ErrItemNotFound - güncellenmek istenen satır yok; handler 404'e çevirir
var ErrItemNotFound = errors.New("bütçe kalemi bulunamadı")

// Store - bütçe kalıcılık sınırı. Session ve revizyon kodu global DB yerine
// bu arayüz üzerinden konuşur; testlerde in-memory sahte ile değiştirilir.
type Store interface {
	CreateItem(item *models.BudgetLineItem) error
	UpdateItem(item *models.BudgetLineItem) error
	DeleteItem(projectID, budgetItemID string) error
	FetchItems(budgetID string, revision float64) ([]models.BudgetLineItem, error)

	CreateHeader(h *models.BudgetHeader) error
	UpdateHeader(h *models.BudgetHeader) error
	UpdateHeaderTotals(budgetItemID string, revision float64, t Totals) error
	DeleteHeader(projectID, budgetItemID string) error
	FetchHeaders(projectID string) ([]models.BudgetHeader, error)

	FetchProject(projectID string) (*models.Project, error)
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateItem(item *models.BudgetLineItem) error {
	if err := s.db.Create(item).Error; err != nil {
		return fmt.Errorf("bütçe kalemi oluşturulamadı: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateItem(item *models.BudgetLineItem) error {
	res := s.db.Model(&models.BudgetLineItem{}).
		Where("project_id = ? AND budget_item_id = ?", item.ProjectID, item.BudgetItemID).
		Select("*").
		Omit("id", "created_at").
		Updates(item)
	if res.Error != nil {
		return fmt.Errorf("bütçe kalemi güncellenemedi: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, item.BudgetItemID)
	}
	return nil
}

func (s *GormStore) DeleteItem(projectID, budgetItemID string) error {
	err := s.db.
		Where("project_id = ? AND budget_item_id = ?", projectID, budgetItemID).
		Delete(&models.BudgetLineItem{}).Error
	if err != nil {
		return fmt.Errorf("bütçe kalemi silinemedi: %w", err)
	}
	return nil
}

func (s *GormStore) FetchItems(budgetID string, revision float64) ([]models.BudgetLineItem, error) {
	var items []models.BudgetLineItem
	err := s.db.
		Where("budget_id = ? AND revision = ?", budgetID, revision).
		Order("element_key ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("bütçe kalemleri alınamadı: %w", err)
	}
	return items, nil
}

func (s *GormStore) CreateHeader(h *models.BudgetHeader) error {
	if err := s.db.Create(h).Error; err != nil {
		return fmt.Errorf("bütçe header oluşturulamadı: %w", err)
	}
	return nil
}

func (s *GormStore) UpdateHeader(h *models.BudgetHeader) error {
	err := s.db.Model(&models.BudgetHeader{}).
		Where("project_id = ? AND budget_item_id = ?", h.ProjectID, h.BudgetItemID).
		Select("*").
		Omit("id", "created_at").
		Updates(h).Error
	if err != nil {
		return fmt.Errorf("bütçe header güncellenemedi: %w", err)
	}
	return nil
}

// UpdateHeaderTotals - dört toplam alanını tek seferde yazar. Revision koşulu,
// bayat bir sync'in sonradan oluşturulmuş başka bir revizyonu ezmesini önler.
func (s *GormStore) UpdateHeaderTotals(budgetItemID string, revision float64, t Totals) error {
	err := s.db.Model(&models.BudgetHeader{}).
		Where("budget_item_id = ? AND revision = ?", budgetItemID, revision).
		Updates(map[string]interface{}{
			"header_budgeted_total_cost": t.Budgeted,
			"header_final_total_cost":    t.Final,
			"header_actual_total_cost":   t.Actual,
			"header_effective_markup":    t.EffectiveMarkup,
		}).Error
	if err != nil {
		return fmt.Errorf("header toplamları yazılamadı: %w", err)
	}
	return nil
}

func (s *GormStore) DeleteHeader(projectID, budgetItemID string) error {
	err := s.db.
		Where("project_id = ? AND budget_item_id = ?", projectID, budgetItemID).
		Delete(&models.BudgetHeader{}).Error
	if err != nil {
		return fmt.Errorf("bütçe header silinemedi: %w", err)
	}
	return nil
}

func (s *GormStore) FetchHeaders(projectID string) ([]models.BudgetHeader, error) {
	var headers []models.BudgetHeader
	err := s.db.
		Where("project_id = ?", projectID).
		Order("revision ASC").
		Find(&headers).Error
	if err != nil {
		return nil, fmt.Errorf("revizyonlar alınamadı: %w", err)
	}
	return headers, nil
}

func (s *GormStore) FetchProject(projectID string) (*models.Project, error) {
	var p models.Project
	if err := s.db.Where("project_id = ?", projectID).First(&p).Error; err != nil {
		return nil, fmt.Errorf("proje bulunamadı: %w", err)
	}
	return &p, nil
}
