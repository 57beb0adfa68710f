package cli

import (
	"fmt"
	"strings"
)

const bannerWidth = 60

// PrintBanner renders a title inside a box-drawing frame.
func PrintBanner(title string) {
	PrintBannerWidth(title, bannerWidth)
}

// PrintBannerWidth renders the banner at the given total width. Titles wider
// than the frame stretch it instead of being clipped.
func PrintBannerWidth(title string, width int) {
	if width < 10 {
		width = bannerWidth
	}

	inner := width - 2
	if len(title)+2 > inner {
		inner = len(title) + 2
	}

	edge := strings.Repeat("═", inner)
	fmt.Printf("╔%s╗\n", edge)
	fmt.Printf("║%s║\n", centerText(title, inner))
	fmt.Printf("╚%s╝\n", edge)
}

func centerText(text string, width int) string {
	if len(text) >= width {
		return text[:width]
	}
	left := (width - len(text)) / 2
	right := width - len(text) - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}
