package budget

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"mylg-backend/internal/models"
)

// FormatRevision - 3 -> "3", 3.1 -> "3.1" (sondaki sıfırlar atılır)
func FormatRevision(rev float64) string {
	return strconv.FormatFloat(rev, 'f', -1, 64)
}

// decimalSuffix - "3.12" -> 12; tam sayı revizyonlar için 0, false
func decimalSuffix(rev float64) (int, bool) {
	parts := strings.SplitN(FormatRevision(rev), ".", 2)
	if len(parts) != 2 {
		return 0, false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func containsRevision(revs []float64, rev float64) bool {
	for _, r := range revs {
		if r == rev {
			return true
		}
	}
	return false
}

// nextRevisionNumber - yeni revizyon numarası.
// Boş revizyon: floor(mevcut en büyük taban) + 1.
// Kopya: hedefin tabanı altında kullanılmayan ilk ondalık ek (max + 1, yoksa 1).
// Çakışma olursa (eşzamanlı kopyalama yarışı) ek artırılarak boşta olan bulunur.
func nextRevisionNumber(revs []float64, duplicate bool, target float64) float64 {
	if duplicate {
		base := math.Floor(target)
		maxDec := 0
		for _, r := range revs {
			if math.Floor(r) != base || r == base {
				continue
			}
			if d, ok := decimalSuffix(r); ok && d > maxDec {
				maxDec = d
			}
		}
		dec := maxDec + 1
		for {
			newRev, _ := strconv.ParseFloat(fmt.Sprintf("%d.%d", int(base), dec), 64)
			if !containsRevision(revs, newRev) {
				return newRev
			}
			dec++
		}
	}

	maxBase := 0
	for _, r := range revs {
		if b := int(math.Floor(r)); b > maxBase {
			maxBase = b
		}
	}
	newRev := float64(maxBase + 1)
	for containsRevision(revs, newRev) {
		newRev++
	}
	return newRev
}

// Revisions - projenin tüm revizyon header'ları (revizyon sırasında)
func (s *Session) Revisions() ([]models.BudgetHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil, fmt.Errorf("aktif proje yok")
	}
	return s.store.FetchHeaders(s.project.ProjectID)
}

// NewRevision - yeni revizyon oluşturur ve oturumu ona geçirir.
// duplicate=false: başlık/tarih/müşteri listesi korunur, tüm tutarlar sıfırlanır,
// satırsız başlar. duplicate=true: kaynak revizyonun header'ı ve tüm satırları
// yeni numara altında yeniden yaratılır (her satıra taze LINE id'si).
// Kopya yarıda kalırsa temizlik yapılmaz; sunucuda kısmi satırlar kalabilir.
func (s *Session) NewRevision(duplicate bool, fromRevision *float64) (*models.BudgetHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil || s.header == nil {
		return nil, fmt.Errorf("aktif bütçe yok")
	}

	revisions, err := s.store.FetchHeaders(s.project.ProjectID)
	if err != nil {
		log.Printf("Revizyonlar alınamadı: %v", err)
		return nil, err
	}

	targetRev := s.header.Revision
	if fromRevision != nil {
		targetRev = *fromRevision
	}

	revNums := make([]float64, 0, len(revisions))
	for _, h := range revisions {
		revNums = append(revNums, h.Revision)
	}
	newRev := nextRevisionNumber(revNums, duplicate, targetRev)

	source := s.header
	for i := range revisions {
		if revisions[i].Revision == targetRev {
			source = &revisions[i]
			break
		}
	}

	var newHeader models.BudgetHeader
	if duplicate {
		newHeader = *source
	} else {
		newHeader = models.BudgetHeader{
			Title:     s.header.Title,
			StartDate: s.header.StartDate,
			EndDate:   s.header.EndDate,
			Clients:   s.header.Clients,
		}
	}
	newHeader.ID = 0
	newHeader.CreatedAt = time.Time{}
	newHeader.UpdatedAt = time.Time{}
	newHeader.ProjectID = s.project.ProjectID
	newHeader.BudgetID = s.header.BudgetID
	newHeader.BudgetItemID = NewHeaderID()
	newHeader.Revision = newRev

	if err := s.store.CreateHeader(&newHeader); err != nil {
		log.Printf("Revizyon oluşturulamadı: %v", err)
		return nil, err
	}

	newItems := []models.BudgetLineItem{}
	if duplicate {
		sourceItems := s.items
		if source.Revision != s.header.Revision {
			sourceItems, err = s.store.FetchItems(source.BudgetID, source.Revision)
			if err != nil {
				log.Printf("Kaynak revizyon satırları alınamadı: %v", err)
				return nil, err
			}
		}
		for _, src := range sourceItems {
			clone := src
			clone.ID = 0
			clone.CreatedAt = time.Time{}
			clone.UpdatedAt = time.Time{}
			clone.BudgetItemID = NewLineItemID()
			clone.Revision = newRev
			if err := s.store.CreateItem(&clone); err != nil {
				log.Printf("Revizyon satırı kopyalanamadı: %v", err)
				return nil, err
			}
			newItems = append(newItems, clone)
		}
	}

	s.header = &newHeader
	s.items = newItems
	return cloneHeader(&newHeader), nil
}

// SwitchRevision - oturumu başka bir revizyona geçirir; mevcut durum zaten
// kalıcılaştırılmış olduğundan sadece hedefin header'ı ve satırları yüklenir
func (s *Session) SwitchRevision(rev float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil {
		return fmt.Errorf("aktif proje yok")
	}

	revisions, err := s.store.FetchHeaders(s.project.ProjectID)
	if err != nil {
		return err
	}

	var target *models.BudgetHeader
	for i := range revisions {
		if revisions[i].Revision == rev {
			target = &revisions[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("revizyon bulunamadı: %s", FormatRevision(rev))
	}

	items, err := s.store.FetchItems(target.BudgetID, rev)
	if err != nil {
		log.Printf("Revizyon satırları alınamadı: %v", err)
		return err
	}

	s.header = target
	s.items = items
	return nil
}

// DeleteRevision - revizyonun önce tüm satırlarını, sonra header'ını siler.
// Silinen aktif revizyonsa kalan listenin ilkine düşülür, kimse kalmadıysa
// oturum boşaltılır (header nil, satırlar boş).
func (s *Session) DeleteRevision(rev float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil {
		return fmt.Errorf("aktif proje yok")
	}

	revisions, err := s.store.FetchHeaders(s.project.ProjectID)
	if err != nil {
		return err
	}

	var target *models.BudgetHeader
	for i := range revisions {
		if revisions[i].Revision == rev {
			target = &revisions[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("revizyon bulunamadı: %s", FormatRevision(rev))
	}

	items, err := s.store.FetchItems(target.BudgetID, rev)
	if err != nil {
		log.Printf("Revizyon satırları alınamadı: %v", err)
		return err
	}
	for _, it := range items {
		if err := s.store.DeleteItem(s.project.ProjectID, it.BudgetItemID); err != nil {
			log.Printf("Revizyon satırı silinemedi: %v", err)
			return err
		}
	}
	if err := s.store.DeleteHeader(s.project.ProjectID, target.BudgetItemID); err != nil {
		log.Printf("Revizyon header silinemedi: %v", err)
		return err
	}

	remaining := make([]models.BudgetHeader, 0, len(revisions)-1)
	for _, h := range revisions {
		if h.Revision != rev {
			remaining = append(remaining, h)
		}
	}

	if s.header != nil && s.header.Revision == rev {
		if len(remaining) > 0 {
			next := remaining[0]
			nextItems, err := s.store.FetchItems(next.BudgetID, next.Revision)
			if err != nil {
				log.Printf("Sonraki revizyon satırları alınamadı: %v", err)
				return err
			}
			s.header = &next
			s.items = nextItems
		} else {
			s.header = nil
			s.items = []models.BudgetLineItem{}
		}
	}

	return nil
}

// SetClientRevision - müşteriye görünür revizyon işaretini projenin TÜM
// header'larına yazar (işaret her revizyondan okunabilsin diye kopyalanır)
func (s *Session) SetClientRevision(rev float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil {
		return fmt.Errorf("aktif proje yok")
	}

	revisions, err := s.store.FetchHeaders(s.project.ProjectID)
	if err != nil {
		return err
	}

	for i := range revisions {
		revisions[i].ClientRevisionID = &rev
		if err := s.store.UpdateHeader(&revisions[i]); err != nil {
			log.Printf("Client revizyon işareti yazılamadı: %v", err)
			return err
		}
	}

	// Düzenlenen revizyon değişmez, sadece işareti tazelenir
	if s.header != nil {
		s.header.ClientRevisionID = &rev
	}
	return nil
}
