package service

import (
	"fmt"
	"strings"
)

// BuildBody composes the record body from the embed block and the two
// enrichment sections. Each section substitutes a fixed placeholder when
// its input is empty, so the body shape is deterministic regardless of
// which enrichment calls succeeded.
func BuildBody(embed, description string, transcript []string) string {
	var b strings.Builder

	b.WriteString(embed)

	b.WriteString("\n\n<h3>Description</h3>\n")
	if description != "" {
		b.WriteString("<p>")
		b.WriteString(description)
		b.WriteString("</p>")
	} else {
		b.WriteString("<p>Description not available.</p>")
	}

	b.WriteString("\n\n<h3>Transcript</h3>\n")
	if len(transcript) > 0 {
		for i, line := range transcript {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("<p>")
			b.WriteString(line)
			b.WriteString("</p>")
		}
	} else {
		b.WriteString("<p>Transcript not available.</p>")
	}

	return b.String()
}

// VideoEmbed returns the embed block for a video id.
func VideoEmbed(videoID string) string {
	return fmt.Sprintf(
		`<iframe width="560" height="315" src="https://www.youtube.com/embed/%s" frameborder="0" allowfullscreen></iframe>`,
		videoID,
	)
}
