package timeline

import (
	"encoding/json"
	"strconv"

	"mylg-backend/internal/auth"
	"mylg-backend/internal/database"
	"mylg-backend/internal/models"
	"mylg-backend/internal/realtime"

	"github.com/gofiber/fiber/v2"
)

type SaveEventsRequest struct {
	Events []models.TimelineEvent `json:"events"`
}

// GET /api/projects/:id/timeline
func ListEventsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var project models.Project
		if err := database.DB.Where("project_id = ?", c.Params("id")).First(&project).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}
		return c.JSON(DecodeEvents(project.TimelineEvents))
	}
}

// PUT /api/projects/:id/timeline/:itemId
// Bir bütçe satırının event listesini komple değiştirir, diğer istemcilere
// timelineUpdated yayınlar
func SaveEventsHandler(hub *realtime.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(auth.CtxUserIDKey).(uint)
		username, _ := c.Locals(auth.CtxUserNameKey).(string)

		var project models.Project
		if err := database.DB.Where("project_id = ?", c.Params("id")).First(&project).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Proje bulunamadı")
		}

		var body SaveEventsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		updated, err := ReplaceEventsForItem(DecodeEvents(project.TimelineEvents), c.Params("itemId"), body.Events)
		if err != nil {
			// Doğrulama hatası ağ yazımından önce yakalanır, hiçbir şey kaydedilmez
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		project.TimelineEvents = EncodeEvents(updated)
		if err := database.DB.Model(&models.Project{}).
			Where("project_id = ?", project.ProjectID).
			Update("timeline_events", project.TimelineEvents).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Timeline kaydedilemedi")
		}

		eventsJSON, _ := json.Marshal(updated)
		hub.Broadcast(realtime.Message{
			Action:         realtime.ActionTimelineUpdated,
			ProjectID:      project.ProjectID,
			Title:          project.Title,
			Events:         eventsJSON,
			ConversationID: realtime.ConversationID(project.ProjectID),
			Username:       username,
			SenderID:       strconv.FormatUint(uint64(userID), 10),
		})

		return c.JSON(updated)
	}
}
