package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"

	"FinAnalyst/internal/model"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	upColor      = lipgloss.Color("#10B981")
	downColor    = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	warnColor    = lipgloss.Color("#F59E0B")
)

type styles struct {
	prompt   lipgloss.Style
	title    lipgloss.Style
	muted    lipgloss.Style
	warning  lipgloss.Style
	positive lipgloss.Style
	negative lipgloss.Style
	report   lipgloss.Style
}

// newStyles binds the palette to w so that non-terminal writers get plain text.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		prompt:   r.NewStyle().Bold(true).Foreground(primaryColor),
		title:    r.NewStyle().Bold(true).Foreground(primaryColor),
		muted:    r.NewStyle().Foreground(mutedColor),
		warning:  r.NewStyle().Foreground(warnColor),
		positive: r.NewStyle().Foreground(upColor),
		negative: r.NewStyle().Foreground(downColor),
		report: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1),
	}
}

func (s styles) sentiment(l model.Label) lipgloss.Style {
	switch l {
	case model.Positive:
		return s.positive
	case model.Negative:
		return s.negative
	default:
		return s.muted
	}
}
