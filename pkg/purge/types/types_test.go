package types

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain bytes", input: "1024", want: 1024},
		{name: "zero bytes", input: "0", want: 0},
		{name: "bytes with B suffix", input: "512B", want: 512},
		{name: "kilobytes", input: "100K", want: 100 * KiB},
		{name: "kilobytes with iB", input: "100KiB", want: 100 * KiB},
		{name: "megabytes with B", input: "10MB", want: 10 * MiB},
		{name: "gigabytes lowercase", input: "2g", want: 2 * GiB},
		{name: "terabytes", input: "1T", want: TiB},
		{name: "surrounding whitespace", input: "  100M  ", want: 100 * MiB},
		{name: "decimal values truncated", input: "1.5G", want: 1610612736},

		{name: "empty string", input: "", wantErr: true},
		{name: "invalid suffix", input: "100X", wantErr: true},
		{name: "negative value", input: "-100M", wantErr: true},
		{name: "suffix only", input: "M", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSize_ErrorKinds(t *testing.T) {
	_, err := ParseSize("-1K")
	assert.ErrorIs(t, err, ErrNegativeSize)

	_, err = ParseSize("lots")
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1024, "1.0 KiB"},
		{1536 * 1024, "1.5 MiB"},
		{GiB, "1.0 GiB"},
		{-2048, "-2.0 KiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes))
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "initializing", StateInitializing.String())
	assert.Equal(t, "emitting-header", StateEmittingHeader.String())
	assert.Equal(t, "traversing", StateTraversing.String())
	assert.Equal(t, "reclaiming", StateReclaiming.String())
	assert.Equal(t, "completed", StateCompleted.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestCollisionErrorIs(t *testing.T) {
	var err error = &MoveError{
		Source:      "/a/x.pdf",
		Destination: "/q/ROOT/a/x__deadbeef.pdf",
		Err:         &CollisionError{Source: "/a/x.pdf", Destination: "/q/ROOT/a/x__deadbeef.pdf"},
	}

	assert.ErrorIs(t, err, ErrCollision)

	var ce *CollisionError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, "/a/x.pdf", ce.Source)
}

func TestErrorUnwrap(t *testing.T) {
	assert.ErrorIs(t, &StatError{Path: "/x", Err: fs.ErrNotExist}, fs.ErrNotExist)
	assert.ErrorIs(t, &ReclaimItemError{Path: "/x", Err: fs.ErrPermission}, fs.ErrPermission)
	assert.ErrorIs(t, &ReclaimError{Dir: "/q", Err: fs.ErrNotExist}, fs.ErrNotExist)
	assert.ErrorIs(t, &ResourceSetupError{Resource: "quarantine directory", Path: "/q", Err: fs.ErrPermission}, fs.ErrPermission)
	assert.Contains(t, (&PathError{Path: "rel/x.pdf", Reason: "path is not absolute"}).Error(), "rel/x.pdf")
}
