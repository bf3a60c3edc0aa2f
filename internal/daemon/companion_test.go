package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/traycast/internal/platform"
)

func TestCompanionWindowHandle_SamePlacementMovesOnce(t *testing.T) {
	s := &fakeSurface{id: 1}
	h := NewCompanionWindowHandle(s)

	p := platform.Point{X: 1584, Y: 1040}
	require.NoError(t, h.MoveTo(p, 1))
	require.NoError(t, h.MoveTo(p, 1))
	assert.Len(t, s.snapshot().moves, 1)

	require.NoError(t, h.MoveTo(platform.Point{X: 1500, Y: 1040}, 1))
	assert.Len(t, s.snapshot().moves, 2)
}

func TestCompanionWindowHandle_ConvertsToDevicePixels(t *testing.T) {
	s := &fakeSurface{id: 1}
	h := NewCompanionWindowHandle(s)

	require.NoError(t, h.MoveTo(platform.Point{X: 1584, Y: 1040}, 1.5))
	assert.Equal(t, []platform.Point{{X: 2376, Y: 1560}}, s.snapshot().moves)

	// Same logical point at a new scale is a real move.
	require.NoError(t, h.MoveTo(platform.Point{X: 1584, Y: 1040}, 2))
	assert.Len(t, s.snapshot().moves, 2)

	b, ok := h.Bounds()
	require.True(t, ok)
	assert.Equal(t, 1584, b.X)
	assert.Equal(t, 1040, b.Y)
}

func TestCompanionWindowHandle_VisibilityAndOpacityAreCached(t *testing.T) {
	s := &fakeSurface{id: 1}
	h := NewCompanionWindowHandle(s)

	require.NoError(t, h.SetVisible(true))
	require.NoError(t, h.SetVisible(true))
	require.NoError(t, h.SetOpacity(1))
	require.NoError(t, h.SetOpacity(1))
	require.NoError(t, h.SetVisible(false))

	log := s.snapshot()
	assert.Equal(t, 1, log.shows)
	assert.Equal(t, 1, log.hides)
	assert.Equal(t, []float64{1}, log.opacities)
	assert.False(t, h.Visible())
}

func TestCompanionWindowHandle_RaiseAlwaysForwarded(t *testing.T) {
	s := &fakeSurface{id: 1}
	h := NewCompanionWindowHandle(s)
	for i := 0; i < 3; i++ {
		require.NoError(t, h.Raise())
	}
	assert.Equal(t, 3, s.snapshot().raises)
}

func TestCompanionWindowHandle_RenderResizesOnlyOnSizeChange(t *testing.T) {
	s := &fakeSurface{id: 1}
	h := NewCompanionWindowHandle(s)

	content := platform.Content{Lines: []string{"72° Clear"}, Foreground: 0xffffff, Background: 0}
	size, err := h.Render(content, 1)
	require.NoError(t, err)
	assert.Equal(t, platform.Size{Width: 9*platform.TextCharWidth + 2*platform.TextPaddingX, Height: 28}, size)

	_, err = h.Render(content, 1)
	require.NoError(t, err)

	recolored := content
	recolored.Foreground = 0x000000
	_, err = h.Render(recolored, 1)
	require.NoError(t, err)

	log := s.snapshot()
	assert.Len(t, log.resizes, 1)
	assert.Len(t, log.renders, 2)
}

func TestCompanionWindowHandle_ForgetReapplies(t *testing.T) {
	s := &fakeSurface{id: 1}
	h := NewCompanionWindowHandle(s)

	require.NoError(t, h.SetVisible(true))
	require.NoError(t, h.MoveTo(platform.Point{X: 10, Y: 10}, 1))
	h.Forget()
	require.NoError(t, h.SetVisible(true))
	require.NoError(t, h.MoveTo(platform.Point{X: 10, Y: 10}, 1))

	log := s.snapshot()
	assert.Equal(t, 2, log.shows)
	assert.Len(t, log.moves, 2)
}
