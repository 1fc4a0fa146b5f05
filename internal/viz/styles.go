package viz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/chargesim/internal/physics"
)

var (
	// Subtle muted text
	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	// Status indicators
	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusDragging = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff88ff"))

	StatusRecording = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444")).
			Blink(true)

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(12)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	// Sparkline bar colors
	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// GradientText colours each rune of text along a line from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	from, to := parseHex(string(start)), parseHex(string(end))
	span := float64(max(len(runes)-1, 1))

	var out strings.Builder
	for i, r := range runes {
		t := float64(i) / span
		var c [3]int
		for k := range c {
			c[k] = from[k] + int(t*float64(to[k]-from[k]))
		}
		out.WriteString(lipgloss.NewStyle().Foreground(hexColor(c)).Render(string(r)))
	}
	return out.String()
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func AnimatedSpinner(frame int) string {
	return spinnerFrames[frame%len(spinnerFrames)]
}

// ProgressBar renders fraction of width as a filled bar, clamped to [0, 1].
// The bar turns amber past 0.4 and red past 0.8.
func ProgressBar(fraction float64, width int) string {
	filled := min(max(int(fraction*float64(width)), 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	switch {
	case fraction > 0.8:
		return SparkLow.Render(bar)
	case fraction > 0.4:
		return SparkMid.Render(bar)
	}
	return SparkHigh.Render(bar)
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// SparklineChart draws values scaled between their own min and max,
// subsampled to width columns.
func SparklineChart(values []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	stride := max(len(values)/width, 1)
	top := len(sparkLevels) - 1

	var out strings.Builder
	for col := 0; col < width && col*stride < len(values); col++ {
		norm := (values[col*stride] - lo) / span
		level := sparkLevels[min(max(int(norm*float64(top)), 0), top)]

		style := SparkLow
		if norm > 0.7 {
			style = SparkHigh
		} else if norm > 0.3 {
			style = SparkMid
		}
		out.WriteString(style.Render(string(level)))
	}
	return out.String()
}

func Separator(width int) string {
	half := width / 2
	return Subtle.Render(strings.Repeat("─", max(half-3, 0)) + " ◆ " + strings.Repeat("─", max(width-half-3, 0)))
}

// colorOf converts a particle colour to a terminal colour.
func colorOf(c physics.Color) lipgloss.Color {
	return hexColor([3]int{int(c.R * 255), int(c.G * 255), int(c.B * 255)})
}

// parseHex reads "#rrggbb"; anything else is white.
func parseHex(hex string) [3]int {
	white := [3]int{255, 255, 255}
	if len(hex) != 7 || hex[0] != '#' {
		return white
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return white
	}
	return [3]int{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}
}

func hexColor(c [3]int) lipgloss.Color {
	for k := range c {
		c[k] = min(max(c[k], 0), 255)
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
