package platform

// Text metrics shared by size computation and rendering, in logical pixels.
const (
	TextPaddingX   = 10
	TextPaddingY   = 6
	TextLineHeight = 16
	TextCharWidth  = 7
)

// MeasureText returns the logical size needed to draw lines, never narrower
// than minWidth.
func MeasureText(lines []string, minWidth int) Size {
	maxChars := 0
	for _, line := range lines {
		if n := len([]rune(line)); n > maxChars {
			maxChars = n
		}
	}
	width := maxChars*TextCharWidth + 2*TextPaddingX
	if width < minWidth {
		width = minWidth
	}
	height := len(lines)*TextLineHeight + 2*TextPaddingY
	return Size{Width: width, Height: height}
}
