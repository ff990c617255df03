package files

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"mylg-backend/internal/auth"
	"mylg-backend/internal/config"
	"mylg-backend/internal/database"
	"mylg-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// POST /api/projects/:id/files
// Dosya içeriği UPLOAD_PATH altına, meta veritabanına yazılır.
// Yükleme hataları kullanıcıya açıkça döner (sessiz yutma yok).
func UploadFileHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Dosya yüklenemedi: "+err.Error())
		}

		projectID := c.Params("id")
		dir := filepath.Join(cfg.UploadPath, projectID)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("Upload klasörü oluşturulamadı: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya kaydedilemedi")
		}

		// Aynı isimli dosyalar birbirini ezmesin
		storedName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileHeader.Filename))
		storedPath := filepath.Join(dir, storedName)

		if err := c.SaveFile(fileHeader, storedPath); err != nil {
			log.Printf("Dosya diske yazılamadı: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya kaydedilemedi")
		}

		entry := models.FileEntry{
			ProjectID:   projectID,
			FileName:    fileHeader.Filename,
			StoredPath:  storedPath,
			Size:        fileHeader.Size,
			ContentType: fileHeader.Header.Get("Content-Type"),
			UploadedBy:  userID,
		}

		if err := database.DB.Create(&entry).Error; err != nil {
			// Meta yazılamadıysa diskteki kopya da temizlenir
			os.Remove(storedPath)
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya kaydı oluşturulamadı")
		}

		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

// GET /api/projects/:id/files
func ListFilesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var entries []models.FileEntry
		err := database.DB.
			Where("project_id = ?", c.Params("id")).
			Order("created_at DESC").
			Find(&entries).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosyalar alınamadı")
		}
		return c.JSON(entries)
	}
}

// GET /api/files/:id/download
func DownloadFileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var entry models.FileEntry
		if err := database.DB.First(&entry, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Dosya bulunamadı")
		}
		return c.Download(entry.StoredPath, entry.FileName)
	}
}

// DELETE /api/files/:id
func DeleteFileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var entry models.FileEntry
		if err := database.DB.First(&entry, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Dosya bulunamadı")
		}

		if err := database.DB.Delete(&entry).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Dosya silinemedi")
		}

		if err := os.Remove(entry.StoredPath); err != nil {
			// Diskte kalan kopya kritik değil, loglayıp devam
			log.Printf("Disk dosyası silinemedi: %v", err)
		}

		return c.JSON(fiber.Map{"deleted": entry.ID})
	}
}
