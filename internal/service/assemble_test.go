package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildBody_AllSectionsPresent(t *testing.T) {
	body := BuildBody(
		VideoEmbed("abc123"),
		"A long description",
		[]string{"line one", "line two"},
	)

	assert.Contains(t, body, "youtube.com/embed/abc123")
	assert.Contains(t, body, "<h3>Description</h3>")
	assert.Contains(t, body, "A long description")
	assert.Contains(t, body, "<h3>Transcript</h3>")
	assert.Contains(t, body, "<p>line one</p>")
	assert.Contains(t, body, "<p>line two</p>")
	assert.NotContains(t, body, "not available")
}

func TestBuildBody_Placeholders(t *testing.T) {
	body := BuildBody(VideoEmbed("abc123"), "", nil)

	assert.Contains(t, body, "youtube.com/embed/abc123")
	assert.Contains(t, body, "<p>Description not available.</p>")
	assert.Contains(t, body, "<p>Transcript not available.</p>")
}

func TestBuildBody_Deterministic(t *testing.T) {
	a := BuildBody(VideoEmbed("x"), "desc", []string{"l1"})
	b := BuildBody(VideoEmbed("x"), "desc", []string{"l1"})
	assert.Equal(t, a, b)
}
