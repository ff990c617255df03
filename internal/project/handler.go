package project

import (
	"strings"

	"mylg-backend/internal/budget"
	"mylg-backend/internal/database"
	"mylg-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Title string `json:"title"`
}

type UpdateProjectRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status"`
}

// POST /api/projects
// Projeyle birlikte ilk bütçe revizyonu (revision 1) da açılır
func CreateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Title = strings.TrimSpace(body.Title)
		if body.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Başlık zorunlu")
		}

		p := models.Project{
			ProjectID:      uuid.NewString(),
			Title:          body.Title,
			Slug:           budget.Slugify(body.Title),
			Status:         "active",
			TimelineEvents: "[]",
		}
		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Proje oluşturulamadı")
		}

		header := models.BudgetHeader{
			ProjectID:    p.ProjectID,
			BudgetID:     budget.NewBudgetID(),
			BudgetItemID: budget.NewHeaderID(),
			Revision:     1,
			Title:        p.Title,
			Clients:      "[]",
		}
		if err := database.DB.Create(&header).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bütçe header oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GET /api/projects
func ListProjectsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var projects []models.Project
		if err := database.DB.Order("created_at DESC").Find(&projects).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Projeler alınamadı")
		}
		return c.JSON(projects)
	}
}

// GET /api/projects/:id
func GetProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Project
		if err := database.DB.Where("project_id = ?", c.Params("id")).First(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}
		return c.JSON(p)
	}
}

// PUT /api/projects/:id
func UpdateProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var p models.Project
		if err := database.DB.Where("project_id = ?", c.Params("id")).First(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}

		var body UpdateProjectRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Title != nil && strings.TrimSpace(*body.Title) != "" {
			p.Title = strings.TrimSpace(*body.Title)
			p.Slug = budget.Slugify(p.Title)
		}
		if body.Status != nil {
			p.Status = *body.Status
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Proje güncellenemedi")
		}
		return c.JSON(p)
	}
}

// DELETE /api/projects/:id
// Projeye bağlı bütçe, mesaj, görev ve dosya kayıtları da temizlenir
func DeleteProjectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID := c.Params("id")

		var p models.Project
		if err := database.DB.Where("project_id = ?", projectID).First(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}

		database.DB.Where("project_id = ?", projectID).Delete(&models.BudgetLineItem{})
		database.DB.Where("project_id = ?", projectID).Delete(&models.BudgetHeader{})
		database.DB.Where("project_id = ?", projectID).Delete(&models.Message{})
		database.DB.Where("project_id = ?", projectID).Delete(&models.Task{})
		database.DB.Where("project_id = ?", projectID).Delete(&models.FileEntry{})

		if err := database.DB.Delete(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Proje silinemedi")
		}
		return c.JSON(fiber.Map{"deleted": projectID})
	}
}
