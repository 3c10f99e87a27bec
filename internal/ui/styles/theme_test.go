package styles

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/tgienger/todo/internal/models"
)

func TestContentWidth(t *testing.T) {
	assert.Equal(t, 60, ContentWidth(60))
	assert.Equal(t, MaxWidth, ContentWidth(MaxWidth+40))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Buy mi…", Truncate("Buy milk and eggs", 7))
	assert.Empty(t, Truncate("anything", 0))

	styled := NewStyles().Title.Render("Buy milk and eggs")
	assert.Equal(t, "Buy mi…", ansi.Strip(Truncate(styled, 7)))
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
		{2, "████"},
		{-1, "░░░░"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ansi.Strip(ProgressBar(tt.ratio, 4)), "ratio %v", tt.ratio)
	}
	assert.Empty(t, ProgressBar(0.5, 0))
}

func TestPriorityColor(t *testing.T) {
	assert.Equal(t, Current.Overdue, PriorityColor(models.PriorityHigh))
	assert.Equal(t, Current.Soon, PriorityColor(models.PriorityMedium))
	assert.Equal(t, Current.Done, PriorityColor(models.PriorityLow))
}
