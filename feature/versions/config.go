package versions

import "facet/feature/versions/engine"

// Config holds configuration for the versions feature.
type Config struct {
	// SourceURL is the upstream versions index to fetch on each run.
	SourceURL string `mapstructure:"source_url" default:"https://rubygems.org/versions"`
	// FetchTimeoutSeconds bounds the whole index download.
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds" default:"120"`
	// AllowlistKey is the bucket object holding allowed gem names.
	// Empty disables the allowlist.
	AllowlistKey string `mapstructure:"allowlist_key" default:"allowlist.txt"`
	// BlocklistKey is the bucket object holding blocked gem names.
	// Empty disables the blocklist.
	BlocklistKey string `mapstructure:"blocklist_key" default:""`
	// StripVersions replaces version lists with "0" to shrink the artifact.
	StripVersions bool `mapstructure:"strip_versions" default:"true"`
	// Dedup collapses repeated gems to one record (first position, last
	// content). When false every admitted occurrence is kept.
	Dedup bool `mapstructure:"dedup" default:"true"`
	// ArtifactPrefix namespaces published objects in the bucket.
	ArtifactPrefix string `mapstructure:"artifact_prefix" default:"versions"`
	// KeepArtifacts bounds retained timestamped artifacts; 0 keeps all.
	KeepArtifacts int `mapstructure:"keep_artifacts" default:"10"`
}

// Mode maps the dedup switch onto the engine mode.
func (c Config) Mode() engine.Mode {
	if c.Dedup {
		return engine.ModeDedup
	}
	return engine.ModeStream
}
