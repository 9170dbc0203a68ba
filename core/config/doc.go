// Package config provides configuration management for facet.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file loaded through godotenv.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//   - Versions: filtered index feature (source URL, filter list keys, modes, retention)
//
// Defaults are declared as `default` struct tags and registered through
// reflection, so every key is visible to AutomaticEnv (e.g. VERSIONS_SOURCE_URL).
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
