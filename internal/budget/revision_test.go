package budget

import (
	"testing"

	"mylg-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRevision(t *testing.T) {
	assert.Equal(t, "3", FormatRevision(3))
	assert.Equal(t, "3.1", FormatRevision(3.1))
	assert.Equal(t, "3.12", FormatRevision(3.12))
}

func TestNextRevisionNumber(t *testing.T) {
	tests := []struct {
		name      string
		revs      []float64
		duplicate bool
		target    float64
		want      float64
	}{
		{"bos revizyon en buyuk tabanin ustune", []float64{1, 2, 3.1}, false, 0, 4},
		{"ilk revizyon", nil, false, 0, 1},
		{"kopya ilk ondalik", []float64{3}, true, 3, 3.1},
		{"kopya mevcut ondaliklarin ustune", []float64{3, 3.1, 3.2}, true, 3, 3.3},
		{"kopya kaynagin tabanini kullanir", []float64{2, 3, 3.1}, true, 3.1, 3.2},
		{"bosluk doldurulmaz max uzerinden devam", []float64{3, 3.5}, true, 3, 3.6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, nextRevisionNumber(tc.revs, tc.duplicate, tc.target))
		})
	}
}

func TestNewRevisionBlank(t *testing.T) {
	store := newTestStore()
	store.headers[0].Title = "Loft Remodel"
	store.headers[0].StartDate = "2026-01-01"
	store.headers[0].Clients = `["Acme"]`
	sess := newTestSession(t, store)

	_, err := sess.CreateLineItem(models.BudgetLineItem{Title: "Sofa", Quantity: 2, ItemBudgetedCost: 100})
	require.NoError(t, err)

	header, err := sess.NewRevision(false, nil)
	require.NoError(t, err)

	assert.Equal(t, 2.0, header.Revision)
	assert.Equal(t, "Loft Remodel", header.Title)
	assert.Equal(t, "2026-01-01", header.StartDate)
	assert.Equal(t, `["Acme"]`, header.Clients)
	assert.Contains(t, header.BudgetItemID, "HEADER-")
	assert.Equal(t, "b1", header.BudgetID)

	// Tutarlar sifirlanir, satirsiz baslar
	assert.Equal(t, 0.0, header.HeaderBudgetedTotalCost)
	assert.Equal(t, 0.0, header.HeaderFinalTotalCost)
	assert.Empty(t, sess.Items())
	assert.Equal(t, 2.0, sess.Header().Revision)
}

func TestNewRevisionDuplicate(t *testing.T) {
	store := newTestStore()
	sess := newTestSession(t, store)

	src, err := sess.CreateLineItem(models.BudgetLineItem{Title: "Sofa", Quantity: 2, ItemBudgetedCost: 100})
	require.NoError(t, err)

	header, err := sess.NewRevision(true, nil)
	require.NoError(t, err)

	assert.Equal(t, 1.1, header.Revision)

	items := sess.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1.1, items[0].Revision)
	assert.Equal(t, src.Title, items[0].Title)
	// Kopya satir taze LINE id'si alir
	assert.NotEqual(t, src.BudgetItemID, items[0].BudgetItemID)
	assert.Contains(t, items[0].BudgetItemID, "LINE-")

	// Kaynak revizyonun satirlari yerinde durur
	srcItems, err := store.FetchItems("b1", 1)
	require.NoError(t, err)
	assert.Len(t, srcItems, 1)
}

func TestSwitchRevision(t *testing.T) {
	store := newTestStore()
	sess := newTestSession(t, store)

	_, err := sess.CreateLineItem(models.BudgetLineItem{Title: "Sofa", Quantity: 1, ItemBudgetedCost: 50})
	require.NoError(t, err)

	_, err = sess.NewRevision(false, nil)
	require.NoError(t, err)
	require.Empty(t, sess.Items())

	require.NoError(t, sess.SwitchRevision(1))
	assert.Equal(t, 1.0, sess.Header().Revision)
	assert.Len(t, sess.Items(), 1)

	assert.Error(t, sess.SwitchRevision(9))
}

func TestDeleteRevision(t *testing.T) {
	t.Run("aktif revizyon silinince kalanin ilkine dusulur", func(t *testing.T) {
		store := newTestStore()
		sess := newTestSession(t, store)

		_, err := sess.CreateLineItem(models.BudgetLineItem{Title: "Sofa", Quantity: 1, ItemBudgetedCost: 50})
		require.NoError(t, err)

		_, err = sess.NewRevision(false, nil)
		require.NoError(t, err)
		require.Equal(t, 2.0, sess.Header().Revision)

		require.NoError(t, sess.DeleteRevision(2))
		assert.Equal(t, 1.0, sess.Header().Revision)
		assert.Len(t, sess.Items(), 1)
	})

	t.Run("son revizyon silinince oturum bosalir", func(t *testing.T) {
		store := newTestStore()
		sess := newTestSession(t, store)

		_, err := sess.CreateLineItem(models.BudgetLineItem{Title: "Sofa", Quantity: 1, ItemBudgetedCost: 50})
		require.NoError(t, err)

		require.NoError(t, sess.DeleteRevision(1))
		assert.Nil(t, sess.Header())
		assert.Empty(t, sess.Items())
		assert.Empty(t, store.items)
		assert.Empty(t, store.headers)
	})

	t.Run("olmayan revizyon hata doner", func(t *testing.T) {
		sess := newTestSession(t, newTestStore())
		assert.Error(t, sess.DeleteRevision(7))
	})
}

func TestSetClientRevision(t *testing.T) {
	store := newTestStore()
	sess := newTestSession(t, store)

	_, err := sess.NewRevision(false, nil)
	require.NoError(t, err)

	require.NoError(t, sess.SetClientRevision(2))

	// Isaret TUM header'lara kopyalanir
	headers, err := store.FetchHeaders("p1")
	require.NoError(t, err)
	require.Len(t, headers, 2)
	for _, h := range headers {
		require.NotNil(t, h.ClientRevisionID)
		assert.Equal(t, 2.0, *h.ClientRevisionID)
	}
	require.NotNil(t, sess.Header().ClientRevisionID)
	assert.Equal(t, 2.0, *sess.Header().ClientRevisionID)
}
