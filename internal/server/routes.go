package server

import (
	"time"

	"github.com/Kyz7/dashboard/internal/about"
	"github.com/Kyz7/dashboard/internal/auth"
	"github.com/Kyz7/dashboard/internal/media"
	"github.com/Kyz7/dashboard/internal/middleware"
	"github.com/Kyz7/dashboard/internal/podcast"
	"github.com/Kyz7/dashboard/internal/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func SetupRoutes(app *fiber.App, deps Deps) {
	db := deps.DB
	perm := func(module, action string) fiber.Handler {
		return middleware.PermissionProtected(db, module, action)
	}

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS, PATCH",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Dashboard API is running",
		})
	})

	// ==========================================
	// AUTH ROUTES
	// ==========================================
	authHandler := auth.NewHandler(db, deps.Tokens, deps.Log)
	authGroup := app.Group("/auth")
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), authHandler.Login)
	authGroup.Get("/me", auth.JWTProtected(deps.Tokens), authHandler.Me)

	// ==========================================
	// USER MANAGEMENT (Admin only)
	// ==========================================
	userHandler := user.NewHandler(db, deps.Log)
	userGroup := app.Group("/users", auth.JWTProtected(deps.Tokens))
	userGroup.Post("/", perm("User", "create"), userHandler.Create)
	userGroup.Get("/", perm("User", "read"), userHandler.List)

	// ==========================================
	// MEDIA LIBRARY
	// ==========================================
	mediaHandler := media.NewHandler(deps.Media, deps.Log, deps.StorageMode)
	mediaGroup := app.Group("/media", auth.JWTProtected(deps.Tokens))

	mediaGroup.Get("/", perm("Media", "read"), mediaHandler.List)
	mediaGroup.Get("/folders", perm("Media", "read"), mediaHandler.Folders)
	mediaGroup.Get("/picker", perm("Media", "read"), mediaHandler.Picker)
	mediaGroup.Get("/stats", perm("Media", "read"), mediaHandler.Stats)
	mediaGroup.Post("/upload", perm("Media", "create"), mediaHandler.Upload)
	mediaGroup.Post("/bulk-upload", perm("Media", "create"), mediaHandler.BulkUpload)
	mediaGroup.Post("/bulk-delete", perm("Media", "delete"), mediaHandler.BulkDelete)
	mediaGroup.Get("/:id", perm("Media", "read"), mediaHandler.Get)
	mediaGroup.Patch("/:id", perm("Media", "update"), mediaHandler.Update)
	mediaGroup.Patch("/:id/move", perm("Media", "update"), mediaHandler.Move)
	mediaGroup.Delete("/:id", perm("Media", "delete"), mediaHandler.Delete)

	// ==========================================
	// ABOUT PAGE
	// ==========================================
	aboutHandler := about.NewHandler(deps.About, deps.Log)
	aboutGroup := app.Group("/about", auth.JWTProtected(deps.Tokens))

	aboutGroup.Get("/", perm("About", "read"), aboutHandler.Get)
	aboutGroup.Put("/", perm("About", "update"), aboutHandler.Update)
	aboutGroup.Post("/image", perm("About", "update"), aboutHandler.UploadMainImage)
	aboutGroup.Post("/team", perm("About", "update"), aboutHandler.AddMember)
	aboutGroup.Delete("/team/:index", perm("About", "update"), aboutHandler.RemoveMember)
	aboutGroup.Post("/team/:index/photo", perm("About", "update"), aboutHandler.UploadMemberPhoto)
	aboutGroup.Put("/team/:index/photo", perm("About", "update"), aboutHandler.AttachMemberPhoto)

	// ==========================================
	// PODCASTS
	// ==========================================
	podcastHandler := podcast.NewHandler(deps.Podcasts, deps.Log)
	podcastGroup := app.Group("/podcasts", auth.JWTProtected(deps.Tokens))

	podcastGroup.Post("/", perm("Podcast", "create"), podcastHandler.Create)
	podcastGroup.Get("/", perm("Podcast", "read"), podcastHandler.List)
	podcastGroup.Get("/:id", perm("Podcast", "read"), podcastHandler.Get)
	podcastGroup.Put("/:id", perm("Podcast", "update"), podcastHandler.Update)
	podcastGroup.Delete("/:id", perm("Podcast", "delete"), podcastHandler.Delete)
	podcastGroup.Post("/:id/audio", perm("Podcast", "update"), podcastHandler.UploadAudio)
	podcastGroup.Put("/:id/audio", perm("Podcast", "update"), podcastHandler.AttachAudio)
}
