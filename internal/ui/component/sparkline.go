package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/tokenfolio/internal/ui/style"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a mini graph of a price series
type Sparkline struct {
	data  []float64
	width int
	color lipgloss.Color
}

// NewSparkline creates a new sparkline component
func NewSparkline(width int) *Sparkline {
	return &Sparkline{
		width: width,
		color: style.DefaultPalette().Primary,
	}
}

// SetData sets the series, resampled to the sparkline width
func (s *Sparkline) SetData(data []float64) *Sparkline {
	s.data = Resample(data, s.width)
	return s
}

// SetColor sets the color for the sparkline
func (s *Sparkline) SetColor(color lipgloss.Color) *Sparkline {
	s.color = color
	return s
}

// View renders the sparkline
func (s *Sparkline) View() string {
	if s.width <= 0 {
		return ""
	}
	if len(s.data) == 0 {
		return lipgloss.NewStyle().Foreground(style.DefaultPalette().TextMuted).Render(strings.Repeat("·", s.width))
	}
	return lipgloss.NewStyle().Foreground(s.color).Render(s.blocks())
}

// Plain renders the sparkline without styling
func (s *Sparkline) Plain() string {
	if len(s.data) == 0 {
		return strings.Repeat("·", s.width)
	}
	return s.blocks()
}

// blocks maps every point to a spark character
func (s *Sparkline) blocks() string {
	lo, hi := minMax(s.data)

	// If all values are the same, show a flat line
	if lo == hi {
		return strings.Repeat("▄", len(s.data))
	}

	var result strings.Builder
	for _, value := range s.data {
		normalized := (value - lo) / (hi - lo)
		index := int(normalized * float64(len(sparkChars)-1))
		if index < 0 {
			index = 0
		} else if index >= len(sparkChars) {
			index = len(sparkChars) - 1
		}
		result.WriteRune(sparkChars[index])
	}
	return result.String()
}

// Resample reduces data to at most width points by averaging consecutive
// buckets. Shorter series are returned unchanged.
func Resample(data []float64, width int) []float64 {
	if width <= 0 || len(data) == 0 {
		return nil
	}
	if len(data) <= width {
		out := make([]float64, len(data))
		copy(out, data)
		return out
	}

	out := make([]float64, width)
	for i := range out {
		start := i * len(data) / width
		end := (i + 1) * len(data) / width
		var sum float64
		for _, v := range data[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

func minMax(data []float64) (float64, float64) {
	lo, hi := data[0], data[0]
	for _, v := range data {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
