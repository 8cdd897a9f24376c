package api

import (
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/quietlotus/hadane/internal/db"
)

var prefCodeRegex = regexp.MustCompile(`^[0-9]{2}$`)

type Handler struct {
	repos     *db.Repositories
	secretKey []byte
	location  *time.Location
	log       *zap.Logger
}

func NewHandler(database *gorm.DB, secretKey string, location *time.Location, logger *zap.Logger) *Handler {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		repos:     db.NewRepositories(database),
		secretKey: []byte(secretKey),
		location:  location,
		log:       logger,
	}
}

func (handler *Handler) today() time.Time {
	return time.Now().In(handler.location)
}

// apiError mirrors the service error contract: every failure body is
// {"detail": "..."}.
func apiError(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(fiber.Map{"detail": detail})
}
