package task

import (
	"strings"
	"time"

	"mylg-backend/internal/auth"
	"mylg-backend/internal/database"
	"mylg-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"` // "2025-12-09"
	AssignedTo  *uint  `json:"assignedTo"`
}

type UpdateTaskRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *models.TaskStatus `json:"status"`
	DueDate     *string            `json:"dueDate"`
	AssignedTo  *uint              `json:"assignedTo"`
}

func parseDueDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GET /api/projects/:id/tasks
func ListTasksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var tasks []models.Task
		err := database.DB.
			Where("project_id = ?", c.Params("id")).
			Order("created_at ASC").
			Find(&tasks).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görevler alınamadı")
		}
		return c.JSON(tasks)
	}
}

// POST /api/projects/:id/tasks
func CreateTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
		}

		var body CreateTaskRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Title = strings.TrimSpace(body.Title)
		if body.Title == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Başlık zorunlu")
		}

		due, err := parseDueDate(body.DueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz (YYYY-MM-DD olmalı)")
		}

		t := models.Task{
			ProjectID:   c.Params("id"),
			Title:       body.Title,
			Description: body.Description,
			Status:      models.TaskStatusOpen,
			DueDate:     due,
			AssignedTo:  body.AssignedTo,
			CreatedBy:   userID,
		}

		if err := database.DB.Create(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev oluşturulamadı")
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// PUT /api/tasks/:id
func UpdateTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var t models.Task
		if err := database.DB.First(&t, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Görev bulunamadı")
		}

		var body UpdateTaskRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Title != nil && strings.TrimSpace(*body.Title) != "" {
			t.Title = strings.TrimSpace(*body.Title)
		}
		if body.Description != nil {
			t.Description = *body.Description
		}
		if body.Status != nil {
			switch *body.Status {
			case models.TaskStatusOpen, models.TaskStatusInProgress, models.TaskStatusDone:
				t.Status = *body.Status
			default:
				return fiber.NewError(fiber.StatusBadRequest, "Durum geçersiz")
			}
		}
		if body.DueDate != nil {
			due, err := parseDueDate(*body.DueDate)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz (YYYY-MM-DD olmalı)")
			}
			t.DueDate = due
		}
		if body.AssignedTo != nil {
			t.AssignedTo = body.AssignedTo
		}

		if err := database.DB.Save(&t).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev güncellenemedi")
		}
		return c.JSON(t)
	}
}

// DELETE /api/tasks/:id
func DeleteTaskHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		res := database.DB.Delete(&models.Task{}, "id = ?", c.Params("id"))
		if res.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Görev silinemedi")
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Görev bulunamadı")
		}
		return c.JSON(fiber.Map{"deleted": c.Params("id")})
	}
}
