package ui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// markdownWidth is the wrap column of rendered reports.
const markdownWidth = 100

// RenderMarkdown renders a report for the terminal. Headless or colourless
// output is the markdown source unchanged.
func RenderMarkdown(theme *Theme, hm *HeadlessManager, md string) (string, error) {
	if theme.NoColor || hm.IsHeadless() {
		return md, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.Mode),
		glamour.WithWordWrap(markdownWidth),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
