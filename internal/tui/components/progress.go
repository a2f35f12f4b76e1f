package components

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

const defaultBarWidth = 30

// Progress renders overall stage completion.
type Progress struct {
	bar   progress.Model
	total int
}

// NewProgress creates a progress component for the given total.
func NewProgress(total int) Progress {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = defaultBarWidth
	return Progress{bar: bar, total: total}
}

// Ratio returns completed/total clamped to [0, 1].
func (p Progress) Ratio(completed int) float64 {
	if p.total <= 0 || completed <= 0 {
		return 0
	}
	return math.Min(1.0, float64(completed)/float64(p.total))
}

// View renders the progress bar for the provided completion count.
func (p Progress) View(completed int) string {
	ratio := p.Ratio(completed)
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", completed, p.total))
	pct := fmt.Sprintf("%3.0f%%", ratio*100)
	return lipgloss.JoinHorizontal(lipgloss.Left, label, " ", p.bar.ViewAs(ratio), " ", pct)
}
