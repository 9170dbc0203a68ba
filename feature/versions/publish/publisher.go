package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"facet/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrNoArtifact is returned when no run has published anything yet.
var ErrNoArtifact = errors.New("no published artifact")

const (
	artifactStem = "filtered-"
	dataSuffix   = ".bin"
	sumSuffix    = ".sha256"
	latestStem   = "filtered-latest"
	timeLayout   = "20060102-150405"
)

// Artifact describes one published run result.
type Artifact struct {
	DataKey     string
	ChecksumKey string
	Checksum    string
	Size        int64
	PublishedAt time.Time
}

// Publisher writes artifacts to a bucket and maintains the latest aliases.
type Publisher struct {
	client storage.Client
	bucket string
	prefix string
	keep   int
	logger *zap.Logger
}

// New creates a publisher. prefix namespaces all object keys (for example
// "versions/"); keep bounds retained timestamped artifacts, 0 keeps all.
func New(client storage.Client, bucket, prefix string, keep int, logger *zap.Logger) *Publisher {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Publisher{
		client: client,
		bucket: bucket,
		prefix: prefix,
		keep:   keep,
		logger: logger,
	}
}

// Publish uploads the filtered output and its checksum, then repoints the
// latest aliases. The aliases move only after both timestamped uploads
// succeed; retention pruning runs best-effort afterwards.
func (p *Publisher) Publish(ctx context.Context, data []byte, checksum string, now time.Time) (*Artifact, error) {
	ts := now.UTC().Format(timeLayout)
	art := &Artifact{
		DataKey:     p.prefix + artifactStem + ts + dataSuffix,
		ChecksumKey: p.prefix + artifactStem + ts + sumSuffix,
		Checksum:    checksum,
		Size:        int64(len(data)),
		PublishedAt: now.UTC(),
	}

	_, err := p.client.PutObject(ctx, p.bucket, art.DataKey, bytes.NewReader(data), art.Size,
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return nil, fmt.Errorf("upload artifact %s: %w", art.DataKey, err)
	}

	_, err = p.client.PutObject(ctx, p.bucket, art.ChecksumKey, strings.NewReader(checksum), int64(len(checksum)),
		minio.PutObjectOptions{ContentType: "text/plain"})
	if err != nil {
		return nil, fmt.Errorf("upload checksum %s: %w", art.ChecksumKey, err)
	}

	if err := p.repointLatest(ctx, art); err != nil {
		return nil, err
	}

	if err := p.prune(ctx); err != nil {
		// The new artifact is live; stale siblings only cost space.
		p.logger.Warn("Artifact pruning failed", zap.Error(err))
	}
	return art, nil
}

// Latest streams the current latest artifact.
func (p *Publisher) Latest(ctx context.Context) (io.ReadCloser, int64, error) {
	key := p.prefix + latestStem + dataSuffix
	info, err := p.client.StatObject(ctx, p.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, 0, ErrNoArtifact
		}
		return nil, 0, fmt.Errorf("stat latest artifact: %w", err)
	}

	obj, err := p.client.GetObject(ctx, p.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, fmt.Errorf("read latest artifact: %w", err)
	}
	return obj, info.Size, nil
}

// LatestChecksum returns the checksum published alongside the latest artifact.
func (p *Publisher) LatestChecksum(ctx context.Context) (string, error) {
	key := p.prefix + latestStem + sumSuffix
	obj, err := p.client.GetObject(ctx, p.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("read latest checksum: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", ErrNoArtifact
		}
		return "", fmt.Errorf("read latest checksum: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (p *Publisher) repointLatest(ctx context.Context, art *Artifact) error {
	copies := []struct{ src, dst string }{
		{art.DataKey, p.prefix + latestStem + dataSuffix},
		{art.ChecksumKey, p.prefix + latestStem + sumSuffix},
	}
	for _, c := range copies {
		_, err := p.client.CopyObject(ctx,
			minio.CopyDestOptions{Bucket: p.bucket, Object: c.dst},
			minio.CopySrcOptions{Bucket: p.bucket, Object: c.src})
		if err != nil {
			return fmt.Errorf("update latest alias %s: %w", c.dst, err)
		}
	}
	return nil
}

// prune removes timestamped artifacts beyond the keep-count, newest first.
// Latest aliases are never candidates.
func (p *Publisher) prune(ctx context.Context) error {
	if p.keep <= 0 {
		return nil
	}

	var stamps []string
	for info := range p.client.ListObjects(ctx, p.bucket, minio.ListObjectsOptions{Prefix: p.prefix + artifactStem}) {
		if info.Err != nil {
			return info.Err
		}
		name := strings.TrimPrefix(info.Key, p.prefix+artifactStem)
		if !strings.HasSuffix(name, dataSuffix) || strings.HasPrefix(info.Key, p.prefix+latestStem) {
			continue
		}
		stamps = append(stamps, strings.TrimSuffix(name, dataSuffix))
	}
	if len(stamps) <= p.keep {
		return nil
	}

	// Timestamps sort lexically; oldest first after reversing.
	sort.Sort(sort.Reverse(sort.StringSlice(stamps)))
	for _, ts := range stamps[p.keep:] {
		for _, suffix := range []string{dataSuffix, sumSuffix} {
			key := p.prefix + artifactStem + ts + suffix
			if err := p.client.RemoveObject(ctx, p.bucket, key, minio.RemoveObjectOptions{}); err != nil {
				return fmt.Errorf("remove %s: %w", key, err)
			}
			p.logger.Debug("Pruned artifact object", zap.String("key", key))
		}
	}
	return nil
}
