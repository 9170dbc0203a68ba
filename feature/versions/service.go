package versions

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"facet/core/storage"
	"facet/feature/versions/engine"
	"facet/feature/versions/gemset"
	"facet/feature/versions/publish"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher produces a readable stream over the raw upstream index.
type Fetcher interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

// ArtifactStore publishes run results and serves the latest one.
type ArtifactStore interface {
	Publish(ctx context.Context, data []byte, checksum string, now time.Time) (*publish.Artifact, error)
	Latest(ctx context.Context) (io.ReadCloser, int64, error)
	LatestChecksum(ctx context.Context) (string, error)
}

// RunResult summarizes one completed filter run.
type RunResult struct {
	Artifact *publish.Artifact
	Stats    *engine.Stats
}

// Service orchestrates filter runs and access to published artifacts.
type Service struct {
	client  storage.Client
	bucket  string
	fetcher Fetcher
	store   ArtifactStore
	cfg     Config
	logger  *zap.Logger

	// Overlapping webhook triggers share one in-flight run.
	group singleflight.Group
	wg    sync.WaitGroup
}

// NewService creates a new versions service.
func NewService(client storage.Client, bucket string, fetcher Fetcher, store ArtifactStore, cfg Config, logger *zap.Logger) *Service {
	return &Service{
		client:  client,
		bucket:  bucket,
		fetcher: fetcher,
		store:   store,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run performs one synchronous filter run: load filter lists, fetch the
// index, stream it through the engine, publish artifact plus checksum.
// Nothing is published when any step fails.
func (s *Service) Run(ctx context.Context) (*RunResult, error) {
	started := time.Now()

	policy, err := s.loadPolicy(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Filter policy resolved",
		zap.Stringer("mode", policy.Mode()),
		zap.Int("gems", policy.Size()),
	)

	body, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	// The filtered output is buffered so the artifact and its checksum are
	// published from the exact same bytes; the input side stays streaming.
	var buf bytes.Buffer
	hash := sha256.New()
	stats, err := engine.Run(body, io.MultiWriter(&buf, hash), policy, engine.Options{
		Mode:          s.cfg.Mode(),
		StripVersions: s.cfg.StripVersions,
	})
	if err != nil {
		return nil, err
	}
	checksum := hex.EncodeToString(hash.Sum(nil))

	art, err := s.store.Publish(ctx, buf.Bytes(), checksum, time.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("Filter run published",
		zap.String("artifact", art.DataKey),
		zap.String("checksum", checksum),
		zap.Int64("bytes", art.Size),
		zap.Int("admitted", stats.Admitted),
		zap.Int("unique", stats.Unique),
		zap.Int("emitted", stats.Emitted),
		zap.Duration("elapsed", time.Since(started)),
	)
	return &RunResult{Artifact: art, Stats: stats}, nil
}

// TriggerAsync starts a background run and returns immediately. Concurrent
// triggers join the run already in flight instead of starting another.
func (s *Service) TriggerAsync() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, err, shared := s.group.Do("filter-run", func() (any, error) {
			return s.Run(context.Background())
		})
		if err != nil {
			// The previous artifact keeps serving; nothing was replaced.
			s.logger.Error("Filter run failed", zap.Error(err))
			return
		}
		if shared {
			s.logger.Debug("Trigger joined in-flight run")
		}
	}()
}

// Wait blocks until all background runs finish. Used on shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Latest streams the most recently published artifact.
func (s *Service) Latest(ctx context.Context) (io.ReadCloser, int64, error) {
	return s.store.Latest(ctx)
}

// LatestChecksum returns the checksum of the latest artifact.
func (s *Service) LatestChecksum(ctx context.Context) (string, error) {
	return s.store.LatestChecksum(ctx)
}

// loadPolicy reads the configured filter lists from the bucket and resolves
// them once for the run. A configured list that cannot be read fails the run.
func (s *Service) loadPolicy(ctx context.Context) (gemset.Policy, error) {
	allow, err := s.loadSet(ctx, s.cfg.AllowlistKey)
	if err != nil {
		return gemset.Policy{}, err
	}
	block, err := s.loadSet(ctx, s.cfg.BlocklistKey)
	if err != nil {
		return gemset.Policy{}, err
	}
	return gemset.Resolve(allow, block), nil
}

func (s *Service) loadSet(ctx context.Context, key string) (gemset.Set, error) {
	if key == "" {
		return nil, nil
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, &engine.RunError{Kind: engine.ErrListUnreadable, Content: key, Err: err}
	}
	defer obj.Close()

	set, err := gemset.Load(obj)
	if err != nil {
		return nil, &engine.RunError{Kind: engine.ErrListUnreadable, Content: key, Err: err}
	}
	return set, nil
}
