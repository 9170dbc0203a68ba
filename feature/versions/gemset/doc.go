// Package gemset builds the gem name sets used to filter the versions index
// and resolves them into a single inclusion policy.
//
// A list source is plain text with one gem name per line. Blank lines and
// lines starting with '#' are ignored; every other line is trimmed and used
// as an exact, case-sensitive key.
//
// # Policy Resolution
//
// The policy is resolved once at startup from the configured allowlist and
// blocklist. When both are present the blocklist is subtracted from the
// allowlist eagerly, so the per-record hot path is always a single set
// membership test:
//
//	policy := gemset.Resolve(allow, block)
//	if policy.Admits("rails") { ... }
package gemset
