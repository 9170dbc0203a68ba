package gemset

// Mode identifies the resolved policy strategy.
type Mode int

const (
	// Passthrough admits every gem.
	Passthrough Mode = iota
	// Allow admits gems present in the set.
	Allow
	// Block admits gems absent from the set.
	Block
)

// String returns the mode name used in logs.
func (m Mode) String() string {
	switch m {
	case Allow:
		return "allow"
	case Block:
		return "block"
	default:
		return "passthrough"
	}
}

// Policy is the resolved admit/reject decision for gem names.
// It is immutable after Resolve and safe for concurrent use.
type Policy struct {
	mode Mode
	set  Set
}

// Resolve computes the policy from the configured sets. Either set may be
// nil (absent). When both are given, the blocklist is subtracted from the
// allowlist up front so Admits is always one membership test.
func Resolve(allow, block Set) Policy {
	switch {
	case allow != nil && block != nil:
		return Policy{mode: Allow, set: allow.Difference(block)}
	case allow != nil:
		return Policy{mode: Allow, set: allow}
	case block != nil:
		return Policy{mode: Block, set: block}
	default:
		return Policy{mode: Passthrough}
	}
}

// Admits reports whether a record with the given gem name survives the filter.
func (p Policy) Admits(name string) bool {
	switch p.mode {
	case Allow:
		return p.set.Contains(name)
	case Block:
		return !p.set.Contains(name)
	default:
		return true
	}
}

// Mode returns the resolved strategy.
func (p Policy) Mode() Mode {
	return p.mode
}

// Size returns the number of names in the resolved set (0 for passthrough).
func (p Policy) Size() int {
	return len(p.set)
}
