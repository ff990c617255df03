package budget

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"mylg-backend/internal/models"

	"github.com/tiendc/go-deepcopy"
)

// historyDepth - undo yığınının üst sınırı; taşınca en eski kayıt düşer
const historyDepth = 20

// Snapshot - mutasyon öncesi alınan tam kopya (satırlar + header)
type Snapshot struct {
	Items  []models.BudgetLineItem
	Header *models.BudgetHeader
}

// Session - tek bir kullanıcının tek bir proje üzerindeki düzenleme oturumu.
// Tarayıcı tarafındaki canlı state'in sunucu karşılığı: aktif revizyonun
// header'ı ve satırları bellekte tutulur, her mutasyon önce history'ye
// snapshot atar, sonra store'a yazar, sonra toplamları senkronlar.
type Session struct {
	mu sync.Mutex

	store    Store
	project  *models.Project
	header   *models.BudgetHeader
	items    []models.BudgetLineItem
	undoStk  []Snapshot
	redoStk  []Snapshot
	onUpdate func() // başarılı sync sonrası (budgetUpdated yayını buradan tetiklenir)
}

func NewSession(store Store, onUpdate func()) *Session {
	if onUpdate == nil {
		onUpdate = func() {}
	}
	return &Session{store: store, onUpdate: onUpdate}
}

// Load - projeyi ve aktif revizyonu (en yüksek revizyon numarası) oturuma yükler
func (s *Session) Load(projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, err := s.store.FetchProject(projectID)
	if err != nil {
		return err
	}

	headers, err := s.store.FetchHeaders(projectID)
	if err != nil {
		return err
	}

	s.project = project
	s.undoStk = nil
	s.redoStk = nil

	if len(headers) == 0 {
		s.header = nil
		s.items = []models.BudgetLineItem{}
		return nil
	}

	active := headers[len(headers)-1]
	items, err := s.store.FetchItems(active.BudgetID, active.Revision)
	if err != nil {
		return err
	}

	s.header = &active
	s.items = items
	return nil
}

// Refresh - aktif revizyonun header'ını ve satırlarını store'dan yeniden yükler.
// Undo/redo yığınları korunur. Başka bir editörün yazdıkları budgetUpdated sonrası
// refetch'te bu yoldan görünür olur; oturum cache'i bayat kalmaz. Aktif revizyon
// silinmişse en yüksek kalan revizyona, hiç revizyon kalmadıysa boş duruma düşülür.
func (s *Session) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil {
		return fmt.Errorf("aktif proje yok")
	}

	headers, err := s.store.FetchHeaders(s.project.ProjectID)
	if err != nil {
		return err
	}
	if len(headers) == 0 {
		s.header = nil
		s.items = []models.BudgetLineItem{}
		return nil
	}

	target := headers[len(headers)-1]
	if s.header != nil {
		for i := range headers {
			if headers[i].Revision == s.header.Revision {
				target = headers[i]
				break
			}
		}
	}

	items, err := s.store.FetchItems(target.BudgetID, target.Revision)
	if err != nil {
		return err
	}

	s.header = &target
	s.items = items
	return nil
}

func (s *Session) Project() *models.Project { return s.project }

// Header - aktif header'ın kopyası; nil ise yüklü revizyon yok
func (s *Session) Header() *models.BudgetHeader {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneHeader(s.header)
}

func (s *Session) Items() []models.BudgetLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

func (s *Session) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undoStk)
}

func (s *Session) RedoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redoStk)
}

func cloneItems(items []models.BudgetLineItem) []models.BudgetLineItem {
	out := []models.BudgetLineItem{}
	if err := deepcopy.Copy(&out, items); err != nil {
		log.Printf("Snapshot kopyalanamadı: %v", err)
	}
	return out
}

func cloneHeader(h *models.BudgetHeader) *models.BudgetHeader {
	if h == nil {
		return nil
	}
	out := &models.BudgetHeader{}
	if err := deepcopy.Copy(out, h); err != nil {
		log.Printf("Header kopyalanamadı: %v", err)
	}
	return out
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{Items: cloneItems(s.items), Header: cloneHeader(s.header)}
}

// pushHistory - mevcut durumu undo yığınına atar, redo yığınını koşulsuz temizler.
// Yeni bir düzenlemeden sonra redo yapılamaz (lineer history).
func (s *Session) pushHistory() {
	s.undoStk = append(s.undoStk, s.snapshot())
	if len(s.undoStk) > historyDepth {
		s.undoStk = s.undoStk[len(s.undoStk)-historyDepth:]
	}
	s.redoStk = nil
}

// syncHeaderTotals - toplamları hesaplar, store'a yazar, lokal header'ı günceller.
// Header yoksa no-op. Yazma hatası loglanır ve yutulur; lokal header son bilinen
// iyi değerde kalır (satır mutasyonu geri alınmaz, bir sonraki başarılı sync'e
// kadar toplamlarla satırlar ayrışabilir).
func (s *Session) syncHeaderTotals(items []models.BudgetLineItem) {
	if s.project == nil || s.header == nil {
		return
	}

	totals := CalculateHeaderTotals(items)

	if err := s.store.UpdateHeaderTotals(s.header.BudgetItemID, s.header.Revision, totals); err != nil {
		log.Printf("Header toplamları senkronlanamadı: %v", err)
		return
	}

	s.header.HeaderBudgetedTotalCost = totals.Budgeted
	s.header.HeaderFinalTotalCost = totals.Final
	s.header.HeaderActualTotalCost = totals.Actual
	s.header.HeaderEffectiveMarkup = totals.EffectiveMarkup

	s.onUpdate()
}

// SyncHeaderTotals - dışarıdan tetiklenen toplam senkronu (ör. revizyon geçişi sonrası)
func (s *Session) SyncHeaderTotals() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncHeaderTotals(s.items)
}

// Undo - son snapshot'a döner. Yığın boşsa no-op. Mevcut durum redo'ya taşınır,
// geri yüklenen satır listesi üzerinden toplamlar yeniden senkronlanır ki uzak
// toplamlar geri yüklenen lokal durumla tutarlı kalsın.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undoStk) == 0 {
		return false
	}

	prev := s.undoStk[len(s.undoStk)-1]
	s.undoStk = s.undoStk[:len(s.undoStk)-1]
	s.redoStk = append(s.redoStk, s.snapshot())

	s.items = prev.Items
	s.header = prev.Header
	s.syncHeaderTotals(s.items)
	return true
}

// Redo - Undo'nun aynadaki karşılığı
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redoStk) == 0 {
		return false
	}

	next := s.redoStk[len(s.redoStk)-1]
	s.redoStk = s.redoStk[:len(s.redoStk)-1]
	s.undoStk = append(s.undoStk, s.snapshot())

	s.items = next.Items
	s.header = next.Header
	s.syncHeaderTotals(s.items)
	return true
}

func (s *Session) normalize(it *models.BudgetLineItem) {
	it.AreaGroup = NormalizeGroup(it.AreaGroup)
	it.InvoiceGroup = NormalizeGroup(it.InvoiceGroup)
	it.Description = NormalizeGroup(it.Description)
}

// maintainClients - satır yeni bir müşteri adı getiriyorsa header'ın clients
// listesine ekler ve header'ı kalıcılaştırır. Hata loglanır, işlem kesilmez.
func (s *Session) maintainClients(clientName string) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" || s.header == nil {
		return
	}

	clients := DecodeClients(s.header.Clients)
	for _, c := range clients {
		if c == clientName {
			return
		}
	}

	clients = append(clients, clientName)
	s.header.Clients = EncodeClients(clients)
	if err := s.store.UpdateHeader(s.header); err != nil {
		log.Printf("Müşteri listesi güncellenemedi: %v", err)
	}
}

// CreateLineItem - yeni satır. elementKey/elementId boşsa sıradaki değer üretilir.
func (s *Session) CreateLineItem(draft models.BudgetLineItem) (*models.BudgetLineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil || s.header == nil {
		return nil, fmt.Errorf("aktif bütçe revizyonu yok")
	}

	s.pushHistory()

	s.normalize(&draft)
	draft.ProjectID = s.project.ProjectID
	draft.BudgetID = s.header.BudgetID
	draft.Revision = s.header.Revision
	draft.BudgetItemID = NewLineItemID()
	if draft.ElementKey == "" {
		draft.ElementKey = NextElementKey(s.project.Title, s.items)
	}
	if draft.ElementID == "" && draft.Category != "" {
		draft.ElementID = NextElementID(draft.Category, s.items)
	}
	draft.ItemFinalCost = ComputeFinalCost(&draft)

	if err := s.store.CreateItem(&draft); err != nil {
		log.Printf("Satır oluşturulamadı: %v", err)
		return nil, err
	}

	s.items = append(s.items, draft)
	s.maintainClients(draft.Client)
	s.syncHeaderTotals(s.items)

	return &draft, nil
}

// UpdateLineItem - mevcut satırı tam gövdeyle günceller. Metin alanları son yazan
// kazanır; maliyet alanları MergeCostEdits üzerinden geçer ki actual/reconciled
// girişleri markup'ı geriye doğru çözsün ve final cost sunucuda hesaplansın.
func (s *Session) UpdateLineItem(data models.BudgetLineItem) (*models.BudgetLineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil || data.BudgetItemID == "" {
		return nil, fmt.Errorf("budgetItemId zorunlu")
	}

	// Olmayan satır için history kirletilmez
	idx := -1
	for i := range s.items {
		if s.items[i].BudgetItemID == data.BudgetItemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, data.BudgetItemID)
	}

	s.pushHistory()

	s.normalize(&data)
	prev := s.items[idx]
	data = MergeCostEdits(prev, data)
	data.ID = prev.ID
	data.CreatedAt = prev.CreatedAt
	data.ProjectID = s.project.ProjectID
	if s.header != nil {
		data.BudgetID = s.header.BudgetID
		data.Revision = s.header.Revision
	}

	if err := s.store.UpdateItem(&data); err != nil {
		log.Printf("Satır güncellenemedi: %v", err)
		return nil, err
	}

	s.items[idx] = data
	s.maintainClients(data.Client)
	s.syncHeaderTotals(s.items)

	return &data, nil
}

// DeleteLineItems - toplu silme. Herhangi biri silinemezse lokal state değişmez.
func (s *Session) DeleteLineItems(budgetItemIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil || len(budgetItemIDs) == 0 {
		return nil
	}

	s.pushHistory()

	for _, id := range budgetItemIDs {
		if err := s.store.DeleteItem(s.project.ProjectID, id); err != nil {
			log.Printf("Satır silinemedi: %v", err)
			return err
		}
	}

	drop := make(map[string]bool, len(budgetItemIDs))
	for _, id := range budgetItemIDs {
		drop[id] = true
	}
	kept := s.items[:0:0]
	for _, it := range s.items {
		if !drop[it.BudgetItemID] {
			kept = append(kept, it)
		}
	}
	s.items = kept
	s.syncHeaderTotals(s.items)
	return nil
}

// DuplicateLineItems - seçili satırları kopyalar. Her kopya yeni LINE id'si ve
// sıradaki elementKey/elementId ile oluşturulur; createdAt/updatedAt taşınmaz.
func (s *Session) DuplicateLineItems(budgetItemIDs []string) ([]models.BudgetLineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project == nil || s.header == nil || len(budgetItemIDs) == 0 {
		return nil, nil
	}

	s.pushHistory()

	want := make(map[string]bool, len(budgetItemIDs))
	for _, id := range budgetItemIDs {
		want[id] = true
	}

	temp := cloneItems(s.items)
	var clones []models.BudgetLineItem

	for _, src := range s.items {
		if !want[src.BudgetItemID] {
			continue
		}

		clone := src
		clone.ID = 0
		clone.CreatedAt = time.Time{}
		clone.UpdatedAt = time.Time{}
		clone.BudgetItemID = NewLineItemID()
		clone.Revision = s.header.Revision
		clone.ElementKey = NextElementKey(s.project.Title, temp)
		if clone.Category != "" {
			clone.ElementID = NextElementID(clone.Category, temp)
		}

		if err := s.store.CreateItem(&clone); err != nil {
			log.Printf("Satır kopyalanamadı: %v", err)
			return nil, err
		}

		temp = append(temp, clone)
		clones = append(clones, clone)
	}

	s.items = append(s.items, clones...)
	s.syncHeaderTotals(s.items)
	return clones, nil
}

// HeaderUpdate - header meta alanlarının kısmi güncellemesi; nil alan dokunulmaz
type HeaderUpdate struct {
	Title          *string
	StartDate      *string
	EndDate        *string
	HeaderBallPark *float64
}

// UpdateHeaderInfo - aktif revizyonun başlık/tarih/ballpark alanlarını günceller.
// Satır mutasyonu değildir, history'ye girmez; toplamlar satırlardan türediği
// için yeniden hesaplanmaz.
func (s *Session) UpdateHeaderInfo(upd HeaderUpdate) (*models.BudgetHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.header == nil {
		return nil, fmt.Errorf("aktif bütçe revizyonu yok")
	}

	if upd.Title != nil && strings.TrimSpace(*upd.Title) != "" {
		s.header.Title = strings.TrimSpace(*upd.Title)
	}
	if upd.StartDate != nil {
		s.header.StartDate = *upd.StartDate
	}
	if upd.EndDate != nil {
		s.header.EndDate = *upd.EndDate
	}
	if upd.HeaderBallPark != nil {
		s.header.HeaderBallPark = *upd.HeaderBallPark
	}

	if err := s.store.UpdateHeader(s.header); err != nil {
		log.Printf("Header güncellenemedi: %v", err)
		return nil, err
	}

	return cloneHeader(s.header), nil
}

// DecodeClients / EncodeClients - header'daki jsonb clients dizisi
func DecodeClients(raw string) []string {
	var out []string
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func EncodeClients(clients []string) string {
	if clients == nil {
		clients = []string{}
	}
	b, err := json.Marshal(clients)
	if err != nil {
		return "[]"
	}
	return string(b)
}
