package timeline

import (
	"encoding/json"
	"fmt"

	"mylg-backend/internal/models"

	"github.com/google/uuid"
)

// DecodeEvents - projenin jsonb timelineEvents dizisini çözer.
// Bozuk JSON boş listeye indirgenir, hata yükseltilmez.
func DecodeEvents(raw string) []models.TimelineEvent {
	events := []models.TimelineEvent{}
	if raw == "" {
		return events
	}
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		return []models.TimelineEvent{}
	}
	return events
}

func EncodeEvents(events []models.TimelineEvent) string {
	if events == nil {
		events = []models.TimelineEvent{}
	}
	b, err := json.Marshal(events)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// ValidateEvent - tarih ve saat zorunlu; ağ çağrısından önce kontrol edilir
func ValidateEvent(ev models.TimelineEvent) error {
	if ev.Date == "" {
		return fmt.Errorf("tarih zorunlu")
	}
	if ev.Hours <= 0 {
		return fmt.Errorf("saat zorunlu")
	}
	return nil
}

// ReplaceEventsForItem - tek bir bütçe satırının event'lerini komple değiştirir.
// Diğer satırların event'leri korunur; id'si olmayan yeni event'lere id üretilir.
func ReplaceEventsForItem(existing []models.TimelineEvent, budgetItemID string, incoming []models.TimelineEvent) ([]models.TimelineEvent, error) {
	for _, ev := range incoming {
		if err := ValidateEvent(ev); err != nil {
			return nil, err
		}
	}

	updated := []models.TimelineEvent{}
	for _, ev := range existing {
		if ev.BudgetItemID != budgetItemID {
			updated = append(updated, ev)
		}
	}

	for _, ev := range incoming {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		ev.BudgetItemID = budgetItemID
		updated = append(updated, ev)
	}

	return updated, nil
}
