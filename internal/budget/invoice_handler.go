package budget

import (
	"sort"
	"strconv"

	"mylg-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type InvoiceGroupBlock struct {
	Group string                  `json:"group"`
	Items []models.BudgetLineItem `json:"items"`
	Total float64                 `json:"total"`
}

type InvoicePreviewResponse struct {
	ProjectID  string              `json:"projectId"`
	Revision   float64             `json:"revision"`
	Clients    []string            `json:"clients"`
	Groups     []InvoiceGroupBlock `json:"groups"`
	GrandTotal float64             `json:"grandTotal"`
}

// BuildInvoicePreview - satırları fatura grubuna göre toplar. Grupsuz satırlar
// "UNGROUPED" altında birleşir. Satır tutarı itemFinalCost'tur.
func BuildInvoicePreview(header *models.BudgetHeader, items []models.BudgetLineItem) InvoicePreviewResponse {
	resp := InvoicePreviewResponse{
		Groups: []InvoiceGroupBlock{},
	}
	if header != nil {
		resp.ProjectID = header.ProjectID
		resp.Revision = header.Revision
		resp.Clients = DecodeClients(header.Clients)
	}

	byGroup := make(map[string][]models.BudgetLineItem)
	for _, it := range items {
		g := it.InvoiceGroup
		if g == "" {
			g = "UNGROUPED"
		}
		byGroup[g] = append(byGroup[g], it)
	}

	names := make([]string, 0, len(byGroup))
	for g := range byGroup {
		names = append(names, g)
	}
	sort.Strings(names)

	for _, g := range names {
		block := InvoiceGroupBlock{Group: g, Items: byGroup[g]}
		for _, it := range block.Items {
			block.Total += num(it.ItemFinalCost)
		}
		resp.Groups = append(resp.Groups, block)
		resp.GrandTotal += block.Total
	}

	return resp
}

// GET /api/projects/:id/budget/revisions/:rev/invoice
func InvoicePreviewHandler(store Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID := c.Params("id")
		rev, err := strconv.ParseFloat(c.Params("rev"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Revizyon numarası geçersiz")
		}

		headers, err := store.FetchHeaders(projectID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Revizyonlar alınamadı")
		}

		var target *models.BudgetHeader
		for i := range headers {
			if headers[i].Revision == rev {
				target = &headers[i]
				break
			}
		}
		if target == nil {
			return fiber.NewError(fiber.StatusNotFound, "Revizyon bulunamadı")
		}

		items, err := store.FetchItems(target.BudgetID, rev)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bütçe kalemleri alınamadı")
		}

		return c.JSON(BuildInvoicePreview(target, items))
	}
}
