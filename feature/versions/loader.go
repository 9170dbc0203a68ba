package versions

import (
	"time"

	"facet/core/storage"
	"facet/feature/versions/publish"
	"facet/feature/versions/source"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the versions feature with its default collaborators.
func NewFeature(client storage.Client, bucket string, cfg Config, logger *zap.Logger) *Feature {
	fetcher := source.NewFetcher(cfg.SourceURL, time.Duration(cfg.FetchTimeoutSeconds)*time.Second)
	store := publish.New(client, bucket, cfg.ArtifactPrefix, cfg.KeepArtifacts, logger)
	svc := NewService(client, bucket, fetcher, store, cfg, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "versions"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Shutdown waits for in-flight background runs to finish.
func (f *Feature) Shutdown() {
	f.service.Wait()
}
