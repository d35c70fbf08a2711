package server

import (
	"errors"

	"github.com/Kyz7/dashboard/internal/about"
	"github.com/Kyz7/dashboard/internal/auth"
	"github.com/Kyz7/dashboard/internal/media"
	"github.com/Kyz7/dashboard/internal/podcast"
	"github.com/Kyz7/dashboard/internal/response"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the services the HTTP layer is built on.
type Deps struct {
	DB       *gorm.DB
	Log      *zap.Logger
	Tokens   *auth.TokenManager
	Media    *media.Service
	About    *about.Service
	Podcasts *podcast.Service

	StorageMode string
	// UploadDir is served at /uploads when blobs are stored on local disk.
	UploadDir string
}

func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    100 * 1024 * 1024,
		ErrorHandler: errorHandler(deps.Log),
	})

	if deps.StorageMode == "local" && deps.UploadDir != "" {
		app.Static("/uploads", deps.UploadDir, fiber.Static{
			Compress:  true,
			ByteRange: true,
			Browse:    false,
			MaxAge:    3600,
		})
	}

	SetupRoutes(app, deps)

	return app
}

// errorHandler keeps errors that escape a handler in the JSON error envelope.
func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		switch code {
		case fiber.StatusNotFound:
			return response.Error(c, code, "NOT_FOUND", "Route not found", nil)
		case fiber.StatusRequestEntityTooLarge:
			return response.Error(c, code, media.CodeTooLarge, "Request body too large", nil)
		case fiber.StatusInternalServerError:
			log.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			return response.InternalError(c, "Internal server error")
		default:
			return response.Error(c, code, "REQUEST_ERROR", err.Error(), nil)
		}
	}
}
