package main

import (
	"log"
	"strings"

	"mylg-backend/internal/auth"
	"mylg-backend/internal/budget"
	"mylg-backend/internal/chat"
	"mylg-backend/internal/config"
	"mylg-backend/internal/database"
	"mylg-backend/internal/files"
	"mylg-backend/internal/models"
	"mylg-backend/internal/project"
	"mylg-backend/internal/realtime"
	"mylg-backend/internal/task"
	"mylg-backend/internal/timeline"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	store := budget.NewGormStore(database.DB)
	sessions := budget.NewSessionManager(store)
	hub := realtime.NewHub()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))
	adminRoutes.Post("/users", auth.CreateUserHandler())

	// Projeler
	protected.Post("/projects", project.CreateProjectHandler())
	protected.Get("/projects", project.ListProjectsHandler())
	protected.Get("/projects/:id", project.GetProjectHandler())
	protected.Put("/projects/:id", project.UpdateProjectHandler())
	protected.Delete("/projects/:id", project.DeleteProjectHandler())

	// Bütçe
	protected.Get("/projects/:id/budget", budget.GetBudgetHandler(sessions))
	protected.Put("/projects/:id/budget/header", budget.UpdateHeaderHandler(sessions, hub))
	protected.Delete("/projects/:id/budget/session", budget.CloseSessionHandler(sessions))
	protected.Post("/projects/:id/budget/items", budget.CreateItemHandler(sessions, hub))
	protected.Put("/projects/:id/budget/items/:itemId", budget.UpdateItemHandler(sessions, hub))
	protected.Delete("/projects/:id/budget/items", budget.DeleteItemsHandler(sessions, hub))
	protected.Post("/projects/:id/budget/items/duplicate", budget.DuplicateItemsHandler(sessions, hub))
	protected.Post("/projects/:id/budget/undo", budget.UndoHandler(sessions, hub))
	protected.Post("/projects/:id/budget/redo", budget.RedoHandler(sessions, hub))
	protected.Post("/projects/:id/budget/import", budget.ImportSpreadsheetHandler())

	// Revizyonlar
	protected.Get("/projects/:id/budget/revisions", budget.ListRevisionsHandler(sessions))
	protected.Post("/projects/:id/budget/revisions", budget.NewRevisionHandler(sessions, hub))
	protected.Post("/projects/:id/budget/revisions/switch", budget.SwitchRevisionHandler(sessions))
	protected.Post("/projects/:id/budget/revisions/client", budget.SetClientRevisionHandler(sessions, hub))
	protected.Delete("/projects/:id/budget/revisions/:rev", budget.DeleteRevisionHandler(sessions, hub))
	protected.Get("/projects/:id/budget/revisions/:rev/export.csv", budget.ExportCSVHandler(store))
	protected.Get("/projects/:id/budget/revisions/:rev/invoice", budget.InvoicePreviewHandler(store))

	// Zaman çizelgesi
	protected.Get("/projects/:id/timeline", timeline.ListEventsHandler())
	protected.Put("/projects/:id/timeline/:itemId", timeline.SaveEventsHandler(hub))

	// Mesajlar
	protected.Get("/projects/:id/messages", chat.ListMessagesHandler())
	protected.Post("/projects/:id/messages", chat.PostMessageHandler())
	protected.Put("/projects/:id/messages/:msgId", chat.EditMessageHandler())

	// Görevler
	protected.Get("/projects/:id/tasks", task.ListTasksHandler())
	protected.Post("/projects/:id/tasks", task.CreateTaskHandler())
	protected.Put("/tasks/:id", task.UpdateTaskHandler())
	protected.Delete("/tasks/:id", task.DeleteTaskHandler())

	// Dosya yöneticisi
	protected.Post("/projects/:id/files", files.UploadFileHandler(cfg))
	protected.Get("/projects/:id/files", files.ListFilesHandler())
	protected.Get("/files/:id/download", files.DownloadFileHandler())
	protected.Delete("/files/:id", files.DeleteFileHandler())

	// Websocket: kilit ve canlı güncelleme trafiği
	protected.Use("/ws", realtime.UpgradeMiddleware())
	protected.Get("/ws", realtime.WebSocketHandler(hub))

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
