package budget

import (
	"testing"

	"mylg-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildInvoicePreview(t *testing.T) {
	header := &models.BudgetHeader{ProjectID: "p1", Revision: 2, Clients: `["Acme"]`}
	items := []models.BudgetLineItem{
		{Title: "Sofa", InvoiceGroup: "PHASE 1", ItemFinalCost: 220},
		{Title: "Chair", InvoiceGroup: "PHASE 1", ItemFinalCost: 80},
		{Title: "Lamp", InvoiceGroup: "PHASE 2", ItemFinalCost: 50},
		{Title: "Misc", ItemFinalCost: 10},
	}

	resp := BuildInvoicePreview(header, items)

	assert.Equal(t, "p1", resp.ProjectID)
	assert.Equal(t, 2.0, resp.Revision)
	assert.Equal(t, []string{"Acme"}, resp.Clients)
	assert.InDelta(t, 360.0, resp.GrandTotal, 1e-9)

	// Gruplar alfabetik, grupsuz satir UNGROUPED altinda
	require.Len(t, resp.Groups, 3)
	assert.Equal(t, "PHASE 1", resp.Groups[0].Group)
	assert.InDelta(t, 300.0, resp.Groups[0].Total, 1e-9)
	assert.Equal(t, "PHASE 2", resp.Groups[1].Group)
	assert.Equal(t, "UNGROUPED", resp.Groups[2].Group)
	assert.InDelta(t, 10.0, resp.Groups[2].Total, 1e-9)
}

func TestBuildInvoicePreviewEmpty(t *testing.T) {
	resp := BuildInvoicePreview(nil, nil)
	assert.Empty(t, resp.Groups)
	assert.Equal(t, 0.0, resp.GrandTotal)
}
