package budget

import (
	"strings"
	"testing"

	"mylg-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestWriteCSV(t *testing.T) {
	t.Run("baslik satiri ciplak degerler tirnakli", func(t *testing.T) {
		items := []models.BudgetLineItem{
			{ElementKey: "loft-0001", Title: "Sofa", Category: "FURNITURE", Quantity: 2, ItemBudgetedCost: 100, ItemFinalCost: 220, Vendor: "Acme", Notes: "rush"},
		}
		out := WriteCSV(items)
		lines := strings.Split(out, "\n")
		assert.Len(t, lines, 2)
		assert.Equal(t, "elementKey,title,category,quantity,itemBudgetedCost,itemFinalCost,vendor,notes", lines[0])
		assert.Equal(t, `"loft-0001","Sofa","FURNITURE","2","100","220","Acme","rush"`, lines[1])
	})

	t.Run("icteki tirnaklar ikilenir", func(t *testing.T) {
		items := []models.BudgetLineItem{{Title: `He said "hi"`}}
		out := WriteCSV(items)
		assert.Contains(t, out, `"He said ""hi"""`)
	})

	t.Run("bos liste sadece baslik", func(t *testing.T) {
		out := WriteCSV(nil)
		assert.NotContains(t, out, "\n")
	})

	t.Run("ondalikli sayilar kisaltilir", func(t *testing.T) {
		items := []models.BudgetLineItem{{Quantity: 2.5, ItemFinalCost: 220.75}}
		out := WriteCSV(items)
		assert.Contains(t, out, `"2.5"`)
		assert.Contains(t, out, `"220.75"`)
	})
}

func TestCSVFileName(t *testing.T) {
	assert.Equal(t, "revision-3.csv", CSVFileName(3))
	assert.Equal(t, "revision-3.1.csv", CSVFileName(3.1))
}
