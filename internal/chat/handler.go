package chat

import (
	"strings"

	"mylg-backend/internal/auth"
	"mylg-backend/internal/database"
	"mylg-backend/internal/models"
	"mylg-backend/internal/realtime"

	"github.com/gofiber/fiber/v2"
)

type PostMessageRequest struct {
	Body string `json:"body"`
}

type EditMessageRequest struct {
	Body string `json:"body"`
}

// GET /api/projects/:id/messages
func ListMessagesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var messages []models.Message
		err := database.DB.
			Where("conversation_id = ?", realtime.ConversationID(c.Params("id"))).
			Order("created_at ASC").
			Find(&messages).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesajlar alınamadı")
		}
		return c.JSON(messages)
	}
}

// POST /api/projects/:id/messages
func PostMessageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
		}
		username, _ := c.Locals(auth.CtxUserNameKey).(string)

		var body PostMessageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Body = strings.TrimSpace(body.Body)
		if body.Body == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Mesaj boş olamaz")
		}

		projectID := c.Params("id")
		msg := models.Message{
			ProjectID:      projectID,
			ConversationID: realtime.ConversationID(projectID),
			UserID:         userID,
			Username:       username,
			Body:           body.Body,
		}

		if err := database.DB.Create(&msg).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesaj kaydedilemedi")
		}
		return c.Status(fiber.StatusCreated).JSON(msg)
	}
}

// PUT /api/projects/:id/messages/:msgId
// Sadece mesajın sahibi düzenleyebilir
func EditMessageHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
		}

		var msg models.Message
		err := database.DB.
			Where("id = ? AND project_id = ?", c.Params("msgId"), c.Params("id")).
			First(&msg).Error
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Mesaj bulunamadı")
		}

		if msg.UserID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Sadece kendi mesajını düzenleyebilirsin")
		}

		var body EditMessageRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Body = strings.TrimSpace(body.Body)
		if body.Body == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Mesaj boş olamaz")
		}

		msg.Body = body.Body
		msg.Edited = true
		if err := database.DB.Save(&msg).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Mesaj güncellenemedi")
		}
		return c.JSON(msg)
	}
}
