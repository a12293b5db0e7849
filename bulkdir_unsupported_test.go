//go:build !darwin

package bulkdir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadDirNotSupported(t *testing.T) {
	_, err := ReadDir(t.TempDir(), RequestedAttributes{Name: true})
	assert.ErrorIs(t, err, ErrNotSupported)
}

func TestReaderNotSupported(t *testing.T) {
	_, err := NewReader(t.TempDir()).AllAttributes().Read()
	assert.ErrorIs(t, err, ErrNotSupported)
}
