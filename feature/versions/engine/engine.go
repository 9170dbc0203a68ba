package engine

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"facet/feature/versions/gemset"
	"facet/feature/versions/index"
)

// Mode selects how repeated gems are handled.
type Mode int

const (
	// ModeDedup emits at most one record per gem: position from the first
	// sighting, content from the last. Output is buffered in memory until
	// end of input.
	ModeDedup Mode = iota
	// ModeStream emits every admitted record immediately, in input order,
	// with no per-gem state.
	ModeStream
)

// String returns the mode name used in logs and CLI flags.
func (m Mode) String() string {
	if m == ModeStream {
		return "stream"
	}
	return "dedup"
}

// Options configure a single filter run.
type Options struct {
	Mode Mode
	// StripVersions replaces each emitted record's version list with "0".
	StripVersions bool
}

// Stats summarize a completed run.
type Stats struct {
	// HeaderLines counts metadata lines copied through, separator included.
	HeaderLines int
	// BodyLines counts non-blank record lines read.
	BodyLines int
	// Admitted counts record lines that passed the inclusion policy.
	Admitted int
	// Unique counts distinct admitted gems. Zero in stream mode, which
	// deliberately keeps no per-gem state.
	Unique int
	// Emitted counts record lines written to the sink.
	Emitted int
}

// initial scanner buffer and hard cap for one index line. Version lists for
// long-lived gems run to hundreds of kilobytes.
const (
	scanBufSize = 64 * 1024
	maxLineSize = 8 * 1024 * 1024
)

// Run streams the versions index from r to w, admitting records by policy.
// The header region is copied through verbatim before any record handling.
// On error no dedup flush happens and the sink content must be discarded.
func Run(r io.Reader, w io.Writer, policy gemset.Policy, opts Options) (*Stats, error) {
	out := bufio.NewWriter(w)
	stats := &Stats{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scanBufSize), maxLineSize)

	line := 0

	// Header: copy every line through until the separator, inclusive.
	sawSeparator := false
	for scanner.Scan() {
		line++
		stats.HeaderLines++
		text := scanner.Text()
		if err := writeLine(out, text, line); err != nil {
			return nil, err
		}
		if strings.TrimSpace(text) == index.Separator {
			sawSeparator = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, newRunError(ErrInputUnreadable, line, "", err)
	}
	if !sawSeparator {
		return nil, newRunError(ErrMalformedRecord, line, "", errors.New("no separator before end of input"))
	}

	// Body: one decision per physical line.
	var order []string
	var latest map[string]string
	if opts.Mode == ModeDedup {
		latest = make(map[string]string)
	}

	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		stats.BodyLines++

		rec, err := index.ParseLine(text)
		if err != nil {
			return nil, newRunError(ErrMalformedRecord, line, text, err)
		}
		if !policy.Admits(rec.Name) {
			continue
		}
		stats.Admitted++

		if opts.Mode == ModeStream {
			if err := emit(out, rec, opts.StripVersions, line); err != nil {
				return nil, err
			}
			stats.Emitted++
			continue
		}

		if _, seen := latest[rec.Name]; !seen {
			order = append(order, rec.Name)
		}
		latest[rec.Name] = rec.Payload
	}
	if err := scanner.Err(); err != nil {
		return nil, newRunError(ErrInputUnreadable, line, "", err)
	}

	// Flush: dedup output in first-seen order, content from last sighting.
	if opts.Mode == ModeDedup {
		stats.Unique = len(order)
		for _, name := range order {
			rec := index.Record{Name: name, Payload: latest[name]}
			if err := emit(out, rec, opts.StripVersions, 0); err != nil {
				return nil, err
			}
			stats.Emitted++
		}
	}

	if err := out.Flush(); err != nil {
		return nil, newRunError(ErrOutputUnwritable, 0, "", err)
	}
	return stats, nil
}

func emit(out *bufio.Writer, rec index.Record, strip bool, line int) error {
	if strip {
		rec.Payload = index.StripVersions(rec.Payload)
	}
	return writeLine(out, rec.Line(), line)
}

func writeLine(out *bufio.Writer, text string, line int) error {
	if _, err := out.WriteString(text); err != nil {
		return newRunError(ErrOutputUnwritable, line, "", err)
	}
	if err := out.WriteByte('\n'); err != nil {
		return newRunError(ErrOutputUnwritable, line, "", err)
	}
	return nil
}
