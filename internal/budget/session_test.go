package budget

import (
	"fmt"
	"sort"
	"testing"

	"mylg-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore - Store'un in-memory sahtesi; hata enjeksiyonu bayraklarla
type fakeStore struct {
	project *models.Project
	headers []models.BudgetHeader
	items   []models.BudgetLineItem

	failCreateItem bool
	failDeleteItem bool
	totalsWrites   int
}

func (f *fakeStore) CreateItem(item *models.BudgetLineItem) error {
	if f.failCreateItem {
		return fmt.Errorf("create reddedildi")
	}
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeStore) UpdateItem(item *models.BudgetLineItem) error {
	for i := range f.items {
		if f.items[i].BudgetItemID == item.BudgetItemID {
			f.items[i] = *item
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, item.BudgetItemID)
}

func (f *fakeStore) DeleteItem(projectID, budgetItemID string) error {
	if f.failDeleteItem {
		return fmt.Errorf("delete reddedildi")
	}
	kept := f.items[:0:0]
	for _, it := range f.items {
		if !(it.ProjectID == projectID && it.BudgetItemID == budgetItemID) {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeStore) FetchItems(budgetID string, revision float64) ([]models.BudgetLineItem, error) {
	var out []models.BudgetLineItem
	for _, it := range f.items {
		if it.BudgetID == budgetID && it.Revision == revision {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateHeader(h *models.BudgetHeader) error {
	f.headers = append(f.headers, *h)
	return nil
}

func (f *fakeStore) UpdateHeader(h *models.BudgetHeader) error {
	for i := range f.headers {
		if f.headers[i].BudgetItemID == h.BudgetItemID {
			f.headers[i] = *h
			return nil
		}
	}
	return nil
}

func (f *fakeStore) UpdateHeaderTotals(budgetItemID string, revision float64, t Totals) error {
	f.totalsWrites++
	for i := range f.headers {
		if f.headers[i].BudgetItemID == budgetItemID && f.headers[i].Revision == revision {
			f.headers[i].HeaderBudgetedTotalCost = t.Budgeted
			f.headers[i].HeaderFinalTotalCost = t.Final
			f.headers[i].HeaderActualTotalCost = t.Actual
			f.headers[i].HeaderEffectiveMarkup = t.EffectiveMarkup
		}
	}
	return nil
}

func (f *fakeStore) DeleteHeader(projectID, budgetItemID string) error {
	kept := f.headers[:0:0]
	for _, h := range f.headers {
		if !(h.ProjectID == projectID && h.BudgetItemID == budgetItemID) {
			kept = append(kept, h)
		}
	}
	f.headers = kept
	return nil
}

func (f *fakeStore) FetchHeaders(projectID string) ([]models.BudgetHeader, error) {
	var out []models.BudgetHeader
	for _, h := range f.headers {
		if h.ProjectID == projectID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Revision < out[j].Revision })
	return out, nil
}

func (f *fakeStore) FetchProject(projectID string) (*models.Project, error) {
	if f.project == nil || f.project.ProjectID != projectID {
		return nil, fmt.Errorf("proje bulunamadı: %s", projectID)
	}
	p := *f.project
	return &p, nil
}

func newTestStore() *fakeStore {
	return &fakeStore{
		project: &models.Project{ProjectID: "p1", Title: "Loft Remodel"},
		headers: []models.BudgetHeader{
			{ProjectID: "p1", BudgetID: "b1", BudgetItemID: "HEADER-1", Revision: 1, Title: "Loft Remodel", Clients: "[]"},
		},
	}
}

func newTestSession(t *testing.T, store *fakeStore) *Session {
	t.Helper()
	sess := NewSession(store, nil)
	require.NoError(t, sess.Load("p1"))
	return sess
}

func TestCreateLineItemGeneratesKeys(t *testing.T) {
	store := newTestStore()
	sess := newTestSession(t, store)

	created, err := sess.CreateLineItem(models.BudgetLineItem{
		Title: "Sofa", Category: "FURNITURE", Quantity: 2, ItemBudgetedCost: 100, ItemMarkUp: 0.1,
	})
	require.NoError(t, err)

	assert.Contains(t, created.BudgetItemID, "LINE-")
	assert.Equal(t, "loft-remodel-0001", created.ElementKey)
	assert.Equal(t, "FURNITURE-0001", created.ElementID)
	assert.InDelta(t, 220.0, created.ItemFinalCost, 1e-9)
	assert.Equal(t, "b1", created.BudgetID)
	assert.Equal(t, 1.0, created.Revision)

	// Header toplamlari store'a da yazildi
	assert.InDelta(t, 200.0, store.headers[0].HeaderBudgetedTotalCost, 1e-9)
	assert.InDelta(t, 220.0, store.headers[0].HeaderFinalTotalCost, 1e-9)
}

func TestUndoRedoRoundTrip(t *testing.T) {
	store := newTestStore()
	sess := newTestSession(t, store)

	_, err := sess.CreateLineItem(models.BudgetLineItem{Title: "Sofa", Quantity: 2, ItemBudgetedCost: 100})
	require.NoError(t, err)
	after := sess.Items()
	require.Len(t, after, 1)

	require.True(t, sess.Undo())
	assert.Empty(t, sess.Items())
	assert.Equal(t, 0, sess.UndoDepth())
	assert.Equal(t, 1, sess.RedoDepth())
	// Geri alinan durumun toplamlari da geri yazilir
	assert.Equal(t, 0.0, sess.Header().HeaderBudgetedTotalCost)

	require.True(t, sess.Redo())
	assert.Equal(t, after, sess.Items())
	assert.Equal(t, 0, sess.RedoDepth())

	// Yigin bosken no-op
	assert.False(t, sess.Redo())
}

func TestUndoEmptyStackNoOp(t *testing.T) {
	sess := newTestSession(t, newTestStore())
	assert.False(t, sess.Undo())
}

func TestHistoryDepthCapped(t *testing.T) {
	sess := newTestSession(t, newTestStore())

	for i := 0; i < historyDepth+5; i++ {
		_, err := sess.CreateLineItem(models.BudgetLineItem{Title: "x", Quantity: 1, ItemBudgetedCost: 1})
		require.NoError(t, err)
	}
	assert.Equal(t, historyDepth, sess.UndoDepth())
}

func TestRedoClearedOnNewMutation(t *testing.T) {
	sess := newTestSession(t, newTestStore())

	_, err := sess.CreateLineItem(models.BudgetLineItem{Title: "a", Quantity: 1, ItemBudgetedCost: 10})
	require.NoError(t, err)
	require.True(t, sess.Undo())
	require.Equal(t, 1, sess.RedoDepth())

	_, err = sess.CreateLineItem(models.BudgetLineItem{Title: "b", Quantity: 1, ItemBudgetedCost: 20})
	require.NoError(t, err)
	assert.Equal(t, 0, sess.RedoDepth())
}

func TestDeleteLineItemsFailureKeepsState(t *testing.T) {
	store := newTestStore()
	sess := newTestSession(t, store)

	created, err := sess.CreateLineItem(models.BudgetLineItem{Title: "Sofa", Quantity: 1, ItemBudgetedCost: 10})
	require.NoError(t, err)

	store.failDeleteItem = true
	err = sess.DeleteLineItems([]string{created.BudgetItemID})
	require.Error(t, err)

	// Lokal liste dokunulmadan kalir
	assert.Len(t, sess.Items(), 1)
}

func TestDuplicateLineItems(t *testing.T) {
	store := newTestStore()
	sess := newTestSession(t, store)

	src, err := sess.CreateLineItem(models.BudgetLineItem{
		Title: "Sofa", Category: "FURNITURE", Quantity: 2, ItemBudgetedCost: 100,
	})
	require.NoError(t, err)

	clones, err := sess.DuplicateLineItems([]string{src.BudgetItemID})
	require.NoError(t, err)
	require.Len(t, clones, 1)

	clone := clones[0]
	assert.NotEqual(t, src.BudgetItemID, clone.BudgetItemID)
	assert.Contains(t, clone.BudgetItemID, "LINE-")
	assert.Equal(t, "loft-remodel-0002", clone.ElementKey)
	assert.Equal(t, "FURNITURE-0002", clone.ElementID)
	assert.Equal(t, src.Title, clone.Title)
	assert.True(t, clone.CreatedAt.IsZero())
	assert.Len(t, sess.Items(), 2)
}

func TestNormalizeOnWrite(t *testing.T) {
	sess := newTestSession(t, newTestStore())

	created, err := sess.CreateLineItem(models.BudgetLineItem{
		Title: "Sofa", AreaGroup: " kitchen ", InvoiceGroup: "phase 1",
	})
	require.NoError(t, err)
	assert.Equal(t, "KITCHEN", created.AreaGroup)
	assert.Equal(t, "PHASE 1", created.InvoiceGroup)
}

func TestMaintainClients(t *testing.T) {
	store := newTestStore()
	sess := newTestSession(t, store)

	_, err := sess.CreateLineItem(models.BudgetLineItem{Title: "Sofa", Client: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, DecodeClients(sess.Header().Clients))

	// Ayni musteri ikinci kez eklenmez
	_, err = sess.CreateLineItem(models.BudgetLineItem{Title: "Chair", Client: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, DecodeClients(sess.Header().Clients))
}

func TestRefreshSeesOtherEditorsChanges(t *testing.T) {
	store := newTestStore()
	sm := NewSessionManager(store)

	// Iki editor ayni projeyi acar
	s1, err := sm.Get(1, "p1")
	require.NoError(t, err)
	s2, err := sm.Get(2, "p1")
	require.NoError(t, err)

	_, err = s1.CreateLineItem(models.BudgetLineItem{Title: "Sofa", Quantity: 2, ItemBudgetedCost: 100})
	require.NoError(t, err)

	// Refetch yolu: store'dan tazelenince diger editorun satiri ve toplamlari gorunur
	require.NoError(t, s2.Refresh())
	require.Len(t, s2.Items(), 1)
	assert.Equal(t, "Sofa", s2.Items()[0].Title)
	assert.InDelta(t, 200.0, s2.Header().HeaderBudgetedTotalCost, 1e-9)
}

func TestRefreshKeepsUndoStacks(t *testing.T) {
	sess := newTestSession(t, newTestStore())

	_, err := sess.CreateLineItem(models.BudgetLineItem{Title: "a", Quantity: 1, ItemBudgetedCost: 10})
	require.NoError(t, err)
	require.Equal(t, 1, sess.UndoDepth())

	require.NoError(t, sess.Refresh())
	assert.Equal(t, 1, sess.UndoDepth())
	assert.Len(t, sess.Items(), 1)
}

func TestRefreshFallsBackWhenRevisionGone(t *testing.T) {
	store := newTestStore()
	sess := newTestSession(t, store)

	// Aktif revizyon baska bir oturum tarafindan silinmis gibi
	store.headers = nil
	require.NoError(t, sess.Refresh())
	assert.Nil(t, sess.Header())
	assert.Empty(t, sess.Items())
}

func TestUpdateLineItemBackSolvesMarkup(t *testing.T) {
	store := newTestStore()
	sess := newTestSession(t, store)

	created, err := sess.CreateLineItem(models.BudgetLineItem{
		Title: "Sofa", Quantity: 2, ItemBudgetedCost: 100, ItemMarkUp: 0.1,
	})
	require.NoError(t, err)
	require.InDelta(t, 220.0, created.ItemFinalCost, 1e-9)

	// actual girisi markup'i geriye cozer, final ayni kalir
	body := *created
	body.ItemActualCost = ptr(110)
	updated, err := sess.UpdateLineItem(body)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, updated.ItemMarkUp, 1e-9)
	assert.InDelta(t, 220.0, updated.ItemFinalCost, 1e-9)

	// markup duzenlemesi finali ileri hesaplar (aktif baz artik actual)
	body = *updated
	body.ItemMarkUp = 0.5
	updated, err = sess.UpdateLineItem(body)
	require.NoError(t, err)
	assert.InDelta(t, 330.0, updated.ItemFinalCost, 1e-9)
}

func TestUpdateLineItemIgnoresClientFinalCost(t *testing.T) {
	sess := newTestSession(t, newTestStore())

	created, err := sess.CreateLineItem(models.BudgetLineItem{
		Title: "Sofa", Quantity: 2, ItemBudgetedCost: 100, ItemMarkUp: 0.1,
	})
	require.NoError(t, err)

	// Istemcinin yolladigi final cost hicbir maliyet alani degismeden yazilamaz
	body := *created
	body.ItemFinalCost = 9999
	updated, err := sess.UpdateLineItem(body)
	require.NoError(t, err)
	assert.InDelta(t, 220.0, updated.ItemFinalCost, 1e-9)
}

func TestUpdateLineItemNotFound(t *testing.T) {
	sess := newTestSession(t, newTestStore())

	_, err := sess.UpdateLineItem(models.BudgetLineItem{BudgetItemID: "LINE-yok", Title: "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrItemNotFound)
	// Olmayan satir history kirletmez
	assert.Equal(t, 0, sess.UndoDepth())
}

func TestUpdateHeaderInfo(t *testing.T) {
	store := newTestStore()
	sess := newTestSession(t, store)

	title := "Loft Remodel v2"
	ballpark := 50000.0
	header, err := sess.UpdateHeaderInfo(HeaderUpdate{Title: &title, HeaderBallPark: &ballpark})
	require.NoError(t, err)

	assert.Equal(t, "Loft Remodel v2", header.Title)
	assert.Equal(t, 50000.0, header.HeaderBallPark)
	// Store'a da yazildi
	assert.Equal(t, "Loft Remodel v2", store.headers[0].Title)
	assert.Equal(t, 50000.0, store.headers[0].HeaderBallPark)

	// Nil alanlar dokunulmaz
	start := "2026-02-01"
	header, err = sess.UpdateHeaderInfo(HeaderUpdate{StartDate: &start})
	require.NoError(t, err)
	assert.Equal(t, "Loft Remodel v2", header.Title)
	assert.Equal(t, "2026-02-01", header.StartDate)
}

func TestSessionManagerGetAndDrop(t *testing.T) {
	sm := NewSessionManager(newTestStore())

	s1, err := sm.Get(1, "p1")
	require.NoError(t, err)
	again, err := sm.Get(1, "p1")
	require.NoError(t, err)
	assert.Same(t, s1, again)

	sm.Drop(1, "p1")
	fresh, err := sm.Get(1, "p1")
	require.NoError(t, err)
	assert.NotSame(t, s1, fresh)
}

func TestEncodeDecodeClients(t *testing.T) {
	assert.Equal(t, "[]", EncodeClients(nil))
	assert.Nil(t, DecodeClients("bozuk"))
	assert.Equal(t, []string{"a", "b"}, DecodeClients(`["a","b"]`))
}
