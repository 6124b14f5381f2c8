package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/modopt/pkg/modopt/config"
	"github.com/jamesainslie/modopt/pkg/modopt/logging"
	"github.com/jamesainslie/modopt/pkg/modopt/manifest"
)

func TestParseRotation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input config.RotationConfig
		want  logging.RotationConfig
	}{
		{
			name:  "empty uses defaults",
			input: config.RotationConfig{},
			want:  logging.DefaultRotationConfig(),
		},
		{
			name:  "explicit values",
			input: config.RotationConfig{MaxSize: "1MiB", MaxAge: 7, MaxBackups: 2},
			want:  logging.RotationConfig{MaxSize: 1 << 20, MaxAge: 7, MaxBackups: 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseRotation(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseRotation(config.RotationConfig{MaxSize: "lots"})
	assert.Error(t, err)
}

func TestResolveEntry(t *testing.T) {
	t.Parallel()

	m := &manifest.Manifest{Entries: []manifest.Entry{
		{Title: "Red Skin"},
		{Title: "Blue Skin"},
		{Title: "Twin"},
		{Title: "Twin"},
	}}

	i, err := ResolveEntry(m, "1")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	i, err = ResolveEntry(m, "Red Skin")
	require.NoError(t, err)
	assert.Equal(t, 0, i)

	_, err = ResolveEntry(m, "9")
	assert.ErrorIs(t, err, manifest.ErrIndexOutOfRange)

	_, err = ResolveEntry(m, "-1")
	assert.ErrorIs(t, err, manifest.ErrIndexOutOfRange)

	_, err = ResolveEntry(m, "Green Skin")
	assert.ErrorIs(t, err, ErrNoMatch)

	_, err = ResolveEntry(m, "Twin")
	assert.ErrorIs(t, err, ErrAmbiguous)
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got := Confirm(strings.NewReader(tt.input), &out, "Proceed?", false)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Proceed? [y/N]")
	}

	var out bytes.Buffer
	assert.True(t, Confirm(strings.NewReader(""), &out, "Proceed?", true))
	assert.Empty(t, out.String())
}
