package gemset

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Set is an immutable membership set of gem names.
type Set map[string]struct{}

// Load reads a gem list source into a Set.
// Blank lines and '#' comments are skipped; other lines are trimmed and
// inserted exactly as written. An empty source yields a valid empty set.
func Load(r io.Reader) (Set, error) {
	set := make(Set)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		set[name] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gem list: %w", err)
	}
	return set, nil
}

// Contains reports whether name is in the set.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Difference returns a new set with every key of s absent from other.
func (s Set) Difference(other Set) Set {
	out := make(Set, len(s))
	for name := range s {
		if !other.Contains(name) {
			out[name] = struct{}{}
		}
	}
	return out
}
