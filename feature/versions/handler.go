package versions

import (
	"errors"

	"facet/core/logger"
	"facet/feature/versions/publish"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the versions feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the versions routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/versions")
	group.Post("/webhook", h.HandleWebhook)
	group.Get("/", h.HandleLatest)
	group.Get("/checksum", h.HandleChecksum)
}

// HandleWebhook acknowledges the trigger and starts a filter run in the
// background. The response never waits for the run.
func (h *Handler) HandleWebhook(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Webhook trigger received")

	h.service.TriggerAsync()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
}

// HandleLatest serves the most recently published filtered index.
func (h *Handler) HandleLatest(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	body, size, err := h.service.Latest(c.Context())
	if err != nil {
		if errors.Is(err, publish.ErrNoArtifact) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no filtered index published yet; trigger /versions/webhook first",
			})
		}
		l.Error("Failed to read latest artifact", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("Serving latest artifact", zap.Int64("bytes", size))
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.SendStream(body, int(size))
}

// HandleChecksum serves the checksum of the latest artifact.
func (h *Handler) HandleChecksum(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	sum, err := h.service.LatestChecksum(c.Context())
	if err != nil {
		if errors.Is(err, publish.ErrNoArtifact) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no filtered index published yet; trigger /versions/webhook first",
			})
		}
		l.Error("Failed to read latest checksum", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.SendString(sum)
}
