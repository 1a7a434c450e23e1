package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriveLetters(t *testing.T) {
	tests := []struct {
		name string
		mask uint32
		want []string
	}{
		{"none", 0, nil},
		{"A only", 0b1, []string{`A:\`}},
		{"C and D", 0b1100, []string{`C:\`, `D:\`}},
		{"Z", 1 << 25, []string{`Z:\`}},
		{"bits past Z ignored", 1<<26 | 1<<2, []string{`C:\`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, driveLetters(tt.mask))
		})
	}
}

func TestFixedDrives(t *testing.T) {
	drives, err := FixedDrives()
	require.NoError(t, err)
	assert.NotEmpty(t, drives)
}
