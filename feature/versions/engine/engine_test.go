package engine_test

import (
	"errors"
	"strings"
	"testing"

	"facet/feature/versions/engine"
	"facet/feature/versions/gemset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInput = `created_at: 2024-04-01T00:00:05Z
---
rails 1.0 h1
sinatra 1.0 h2
rails 1.1 h3
`

func allowSet(names ...string) gemset.Set {
	set := make(gemset.Set, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func run(t *testing.T, input string, policy gemset.Policy, opts engine.Options) (string, *engine.Stats) {
	t.Helper()
	var out strings.Builder
	stats, err := engine.Run(strings.NewReader(input), &out, policy, opts)
	require.NoError(t, err)
	return out.String(), stats
}

func TestRun_HeaderFidelity(t *testing.T) {
	input := "created_at: 2024-04-01T00:00:05Z\nnext_page: none\n---\nrails 1.0 h1\n"
	policy := gemset.Resolve(nil, nil)

	out, stats := run(t, input, policy, engine.Options{Mode: engine.ModeStream})

	assert.True(t, strings.HasPrefix(out, "created_at: 2024-04-01T00:00:05Z\nnext_page: none\n---\n"))
	assert.Equal(t, 3, stats.HeaderLines)
}

func TestRun_DedupAllowlist(t *testing.T) {
	policy := gemset.Resolve(allowSet("rails", "puma"), nil)

	out, stats := run(t, sampleInput, policy, engine.Options{Mode: engine.ModeDedup})

	assert.Equal(t, "created_at: 2024-04-01T00:00:05Z\n---\nrails 1.1 h3\n", out)
	assert.Equal(t, 2, stats.Admitted)
	assert.Equal(t, 1, stats.Unique)
	assert.Equal(t, 1, stats.Emitted)
}

func TestRun_StreamAllowlist(t *testing.T) {
	policy := gemset.Resolve(allowSet("rails", "puma"), nil)

	out, _ := run(t, sampleInput, policy, engine.Options{Mode: engine.ModeStream})

	assert.Equal(t, "created_at: 2024-04-01T00:00:05Z\n---\nrails 1.0 h1\nrails 1.1 h3\n", out)
}

func TestRun_StreamBlocklist(t *testing.T) {
	policy := gemset.Resolve(nil, allowSet("sinatra"))

	out, _ := run(t, sampleInput, policy, engine.Options{Mode: engine.ModeStream})

	assert.Equal(t, "created_at: 2024-04-01T00:00:05Z\n---\nrails 1.0 h1\nrails 1.1 h3\n", out)
}

func TestRun_Passthrough(t *testing.T) {
	policy := gemset.Resolve(nil, nil)

	out, _ := run(t, sampleInput, policy, engine.Options{Mode: engine.ModeStream})

	assert.Equal(t, sampleInput, out)
}

func TestRun_DedupOrderStability(t *testing.T) {
	input := "created_at: x\n---\n" +
		"zebra 1.0 a1\n" +
		"apple 1.0 b1\n" +
		"mango 1.0 c1\n" +
		"apple 1.1 b2\n" +
		"zebra 1.1 a2\n" +
		"apple 1.2 b3\n"
	policy := gemset.Resolve(nil, nil)

	out, stats := run(t, input, policy, engine.Options{Mode: engine.ModeDedup})

	body := strings.Split(strings.TrimSuffix(out, "\n"), "\n")[2:]
	require.Len(t, body, 3)
	// Order from first sighting, content from last.
	assert.Equal(t, "zebra 1.1 a2", body[0])
	assert.Equal(t, "apple 1.2 b3", body[1])
	assert.Equal(t, "mango 1.0 c1", body[2])
	assert.Equal(t, 3, stats.Unique)
}

func TestRun_StripVersions(t *testing.T) {
	input := "created_at: x\n---\nrails 1.0,1.1 h3 extra\n"
	policy := gemset.Resolve(nil, nil)

	t.Run("Stream", func(t *testing.T) {
		out, _ := run(t, input, policy, engine.Options{Mode: engine.ModeStream, StripVersions: true})
		assert.Equal(t, "created_at: x\n---\nrails 0 h3 extra\n", out)
	})

	t.Run("Dedup", func(t *testing.T) {
		out, _ := run(t, input, policy, engine.Options{Mode: engine.ModeDedup, StripVersions: true})
		assert.Equal(t, "created_at: x\n---\nrails 0 h3 extra\n", out)
	})

	t.Run("DedupStripsLastContent", func(t *testing.T) {
		repeated := "created_at: x\n---\nrails 1.0 h1\nrails 1.0,1.1 h2\n"
		out, _ := run(t, repeated, policy, engine.Options{Mode: engine.ModeDedup, StripVersions: true})
		assert.Equal(t, "created_at: x\n---\nrails 0 h2\n", out)
	})
}

func TestRun_BlankBodyLinesSkipped(t *testing.T) {
	input := "created_at: x\n---\nrails 1.0 h1\n\n   \nsinatra 1.0 h2\n"
	policy := gemset.Resolve(nil, nil)

	out, stats := run(t, input, policy, engine.Options{Mode: engine.ModeStream})

	assert.Equal(t, "created_at: x\n---\nrails 1.0 h1\nsinatra 1.0 h2\n", out)
	assert.Equal(t, 2, stats.BodyLines)
}

func TestRun_YankedMarkerPreserved(t *testing.T) {
	input := "created_at: x\n---\nrails -7.0.0,7.0.1 abc123\n"
	policy := gemset.Resolve(nil, nil)

	out, _ := run(t, input, policy, engine.Options{Mode: engine.ModeDedup})

	assert.Contains(t, out, "rails -7.0.0,7.0.1 abc123")
}

func TestRun_MalformedRecordFatal(t *testing.T) {
	input := "created_at: x\n---\nrails 1.0 h1\nbroken\nsinatra 1.0 h2\n"
	policy := gemset.Resolve(nil, nil)

	var out strings.Builder
	stats, err := engine.Run(strings.NewReader(input), &out, policy, engine.Options{Mode: engine.ModeDedup})

	require.Error(t, err)
	assert.Nil(t, stats)
	assert.ErrorIs(t, err, engine.ErrMalformedRecord)

	var runErr *engine.RunError
	require.True(t, errors.As(err, &runErr))
	assert.Equal(t, 4, runErr.Line)
	assert.Equal(t, "broken", runErr.Content)

	// Dedup mode must not have flushed any record before failing.
	assert.NotContains(t, out.String(), "rails")
}

func TestRun_MissingSeparatorFatal(t *testing.T) {
	input := "created_at: x\nno records here\n"
	policy := gemset.Resolve(nil, nil)

	var out strings.Builder
	_, err := engine.Run(strings.NewReader(input), &out, policy, engine.Options{})

	assert.ErrorIs(t, err, engine.ErrMalformedRecord)
}

func TestRun_UnwritableSink(t *testing.T) {
	policy := gemset.Resolve(nil, nil)

	_, err := engine.Run(strings.NewReader(sampleInput), failWriter{}, policy, engine.Options{Mode: engine.ModeStream})

	assert.ErrorIs(t, err, engine.ErrOutputUnwritable)
}

func TestRun_RealisticIndex(t *testing.T) {
	input := `created_at: 2024-04-01T00:00:05Z
---
-A 0.0.0 8b1527991f0022e46140907a7fc4cfd4
.cat 0.0.1 631fd60a806eaf5026c86fff3155c289
0mq 0.1.0,0.1.1,0.1.2 6146193f8f7e944156b0b42ec37bad3e
rails 7.0.0,7.0.1,7.0.2 abc123def456
activerecord 7.0.0,7.0.1 fed456cba321
sinatra 3.0.0,3.0.1 123456789abc
active_model_serializers -0.9.10 7ad37af4aec8cc089e409e1fdec86f3d
active_model_serializers 0.9.11 a6d40e97b289ee6c806e5e9f7031623b
rails 7.0.3,7.0.4 updated999888
`
	policy := gemset.Resolve(allowSet("rails", "sinatra", "active_model_serializers"), nil)

	out, stats := run(t, input, policy, engine.Options{Mode: engine.ModeDedup})

	assert.True(t, strings.HasPrefix(out, "created_at: 2024-04-01T00:00:05Z\n---\n"))
	assert.Contains(t, out, "rails 7.0.3,7.0.4 updated999888")
	assert.NotContains(t, out, "abc123def456")
	assert.Contains(t, out, "active_model_serializers 0.9.11")
	assert.NotContains(t, out, "activerecord 7")
	assert.NotContains(t, out, "0mq")
	assert.Equal(t, 4, stats.Admitted)
	assert.Equal(t, 3, stats.Unique)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("sink closed")
}
