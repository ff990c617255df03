package budget

import (
	"log"
	"strconv"
	"strings"

	"mylg-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// Beklenen kolon sırası: title, category, quantity, itemBudgetedCost,
// itemMarkUp (yüzde veya oran), vendor, notes

func parseImportFloat(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseImportMarkup - "%25", "25%" ve "0.25" hepsi 0.25'e çözülür
func parseImportMarkup(s string) float64 {
	s = strings.TrimSpace(s)
	hasPercent := strings.Contains(s, "%")
	s = strings.ReplaceAll(s, "%", "")
	v := parseImportFloat(s)
	if hasPercent || v > 1 {
		return v / 100
	}
	return v
}

// ParseBudgetSpreadsheet - yüklenen xlsx'in ilk sheet'inden satır taslakları
// çıkarır. Kaydetmez; taslaklar gözden geçirilip tek tek create edilir.
func ParseBudgetSpreadsheet(rows [][]string) []models.BudgetLineItem {
	drafts := []models.BudgetLineItem{}

	startIndex := 0
	if len(rows) > 0 && len(rows[0]) > 0 {
		firstCell := strings.ToUpper(strings.TrimSpace(rows[0][0]))
		if strings.Contains(firstCell, "TITLE") || strings.Contains(firstCell, "ITEM") ||
			strings.Contains(firstCell, "DESCRIPTION") {
			startIndex = 1
		}
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	for i := startIndex; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || cell(row, 0) == "" {
			continue
		}

		draft := models.BudgetLineItem{
			Title:            cell(row, 0),
			Category:         cell(row, 1),
			Quantity:         parseImportFloat(cell(row, 2)),
			ItemBudgetedCost: parseImportFloat(cell(row, 3)),
			ItemMarkUp:       parseImportMarkup(cell(row, 4)),
			Vendor:           cell(row, 5),
			Notes:            cell(row, 6),
		}
		draft.ItemFinalCost = ComputeFinalCost(&draft)
		drafts = append(drafts, draft)
	}

	return drafts
}

// POST /api/projects/:id/budget/import
// XLSX dosyasını yükler, satır taslaklarına çevirip döner
func ImportSpreadsheetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}

		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Sadece .xlsx dosyaları yüklenebilir")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya açılamadı: "+err.Error())
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası okunamadı: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyasında sheet bulunamadı")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Sheet okunamadı: "+err.Error())
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel dosyası boş")
		}

		drafts := ParseBudgetSpreadsheet(rows)
		log.Printf("Spreadsheet import: %d satır taslağı çıkarıldı (%s)", len(drafts), fileHeader.Filename)

		return c.JSON(fiber.Map{
			"count": len(drafts),
			"items": drafts,
		})
	}
}
