package ui

import (
	"charm.land/lipgloss/v2"
)

const (
	statusBarHeight = 1
	inputRows       = 3
	minTranscript   = 3
)

// LayoutManager splits the chat screen into transcript, input and status bar.
type LayoutManager struct {
	width  int
	height int
}

// NewLayoutManager creates a new layout manager
func NewLayoutManager() *LayoutManager {
	return &LayoutManager{
		width:  80,
		height: 24,
	}
}

// SetSize updates the layout dimensions
func (lm *LayoutManager) SetSize(width, height int) {
	lm.width = width
	lm.height = height
}

// StatusBarHeight returns the height for status bar
func (lm *LayoutManager) StatusBarHeight() int {
	return statusBarHeight
}

// InputRows returns the number of text rows in the message input.
func (lm *LayoutManager) InputRows() int {
	return inputRows
}

// InputHeight returns the input height including its border.
func (lm *LayoutManager) InputHeight() int {
	return inputRows + 2
}

// TranscriptHeight returns the height left for the conversation pane.
func (lm *LayoutManager) TranscriptHeight() int {
	h := lm.height - lm.StatusBarHeight() - lm.InputHeight()
	if h < minTranscript {
		return minTranscript
	}
	return h
}

// BodyHeight returns the height above the status bar.
func (lm *LayoutManager) BodyHeight() int {
	h := lm.height - lm.StatusBarHeight()
	if h < 1 {
		return 1
	}
	return h
}

// RenderLayout stacks the chat screen parts.
func (lm *LayoutManager) RenderLayout(transcript, input, statusBar string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		transcript,
		input,
		statusBar,
	)
}

// Center places content in the middle of the body area.
func (lm *LayoutManager) Center(content string) string {
	return lipgloss.Place(lm.width, lm.BodyHeight(), lipgloss.Center, lipgloss.Center, content)
}

// GetDimensions returns current width and height
func (lm *LayoutManager) GetDimensions() (width, height int) {
	return lm.width, lm.height
}
