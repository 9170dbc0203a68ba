package index

import (
	"errors"
	"strings"
)

// Separator is the literal line dividing header metadata from record lines.
const Separator = "---"

// StripSentinel replaces the version-list field when version stripping is on.
const StripSentinel = "0"

// ErrFieldCount marks a record line without a name and at least one payload field.
var ErrFieldCount = errors.New("record needs a gem name and at least one payload field")

// Record is one parsed index line.
type Record struct {
	// Name is the gem name, the record's identity.
	Name string
	// Payload is everything after the name, verbatim. Field 0 is the
	// version list, field 1 the content hash, any remainder is kept as-is.
	Payload string
}

// ParseLine splits a raw record line (line ending already stripped).
// The name is the text before the first whitespace run; the payload is the
// remainder, preserved byte-for-byte.
func ParseLine(line string) (Record, error) {
	trimmed := strings.TrimSpace(line)
	cut := strings.IndexAny(trimmed, " \t")
	if cut < 0 {
		return Record{}, ErrFieldCount
	}
	payload := strings.TrimLeft(trimmed[cut+1:], " \t")
	if payload == "" {
		return Record{}, ErrFieldCount
	}
	return Record{Name: trimmed[:cut], Payload: payload}, nil
}

// StripVersions replaces the version-list field of a payload with the
// sentinel, leaving the hash and any trailing fields untouched. Applying it
// to an already-stripped payload is a no-op.
func StripVersions(payload string) string {
	cut := strings.IndexAny(payload, " \t")
	if cut < 0 {
		// Version list only; nothing after it to preserve.
		return StripSentinel
	}
	return StripSentinel + payload[cut:]
}

// Line renders the record back into index format.
func (r Record) Line() string {
	return r.Name + " " + r.Payload
}
