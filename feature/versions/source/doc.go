// Package source fetches the raw versions index from the upstream registry.
//
// The index is requested with gzip transfer encoding and decoded while
// streaming, so the engine reads decompressed lines without the full
// download ever being held in memory.
package source
