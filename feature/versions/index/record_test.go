package index_test

import (
	"testing"

	"facet/feature/versions/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    index.Record
		wantErr error
	}{
		{
			name: "Simple",
			line: "rails 7.0.0,7.0.1 abc123",
			want: index.Record{Name: "rails", Payload: "7.0.0,7.0.1 abc123"},
		},
		{
			name: "YankedMarkerKept",
			line: "rails -7.0.0,7.0.1 abc123",
			want: index.Record{Name: "rails", Payload: "-7.0.0,7.0.1 abc123"},
		},
		{
			name: "ExtraFieldsVerbatim",
			line: "rails 7.0.0 abc123 sig=deadbeef repro",
			want: index.Record{Name: "rails", Payload: "7.0.0 abc123 sig=deadbeef repro"},
		},
		{
			name: "SurroundingWhitespaceTrimmed",
			line: "  rails 7.0.0 abc123\t",
			want: index.Record{Name: "rails", Payload: "7.0.0 abc123"},
		},
		{
			name:    "NameOnly",
			line:    "rails",
			wantErr: index.ErrFieldCount,
		},
		{
			name:    "TrailingWhitespaceOnly",
			line:    "rails   ",
			wantErr: index.ErrFieldCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := index.ParseLine(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec)
		})
	}
}

func TestStripVersions(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"VersionsAndHash", "7.0.0,7.0.1 abc123", "0 abc123"},
		{"ExtraFieldsKept", "1.0,1.1 h3 extra", "0 h3 extra"},
		{"YankedList", "-0.9.10 7ad37af4", "0 7ad37af4"},
		{"VersionsOnly", "7.0.0,7.0.1", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, index.StripVersions(tt.payload))
		})
	}
}

func TestStripVersions_Idempotent(t *testing.T) {
	once := index.StripVersions("7.0.0,7.0.1 abc123 extra")
	assert.Equal(t, once, index.StripVersions(once))
}

func TestRecord_Line(t *testing.T) {
	rec := index.Record{Name: "rails", Payload: "7.0.0 abc123"}
	assert.Equal(t, "rails 7.0.0 abc123", rec.Line())
}
