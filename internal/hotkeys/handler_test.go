package hotkeys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIgnoreMasks(t *testing.T) {
	assert.Equal(t, []uint16{0, 2}, ignoreMasks(2, 0, 0))
	assert.Equal(t, []uint16{0, 2}, ignoreMasks(2, 2, 0))
	assert.ElementsMatch(t, []uint16{0, 2, 16, 18, 128, 130, 144, 146}, ignoreMasks(2, 16, 128))
}

func TestNewHandlerRequiresX11(t *testing.T) {
	_, err := NewHandler(struct{}{}, nil)
	assert.Error(t, err)
}
