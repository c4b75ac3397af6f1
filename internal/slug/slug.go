// Package slug turns raw video titles into clean display titles and
// URL-safe identifiers. Both transforms are deterministic and side-effect
// free apart from the dated fallbacks for empty input.
package slug

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	// DefaultWordCap bounds the normalized title length in words.
	DefaultWordCap = 5
	// DefaultTokenCap bounds the slug length in hyphen tokens.
	DefaultTokenCap = 5
	// DefaultCharCap bounds the full slug length in characters.
	DefaultCharCap = 60
)

var (
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	hashtagRe = regexp.MustCompile(`#\S+`)
	tokenRe   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Separators that split a title into a headline and channel/branding noise.
// Only the segment left of the first one survives.
var titleSeparators = []string{"|", "–", "—", "-", ":", "•"}

// trailing characters stripped from the cleaned title.
const trailingJunk = " \t.,:;!?-–—|•"

// CleanTitle normalizes a raw title into a short display title. A zero or
// negative wordCap falls back to DefaultWordCap. If nothing survives the
// pipeline, the result is "Video " plus the current date so the record
// still gets a usable title.
func CleanTitle(raw string, wordCap int) string {
	if wordCap <= 0 {
		wordCap = DefaultWordCap
	}

	s := tagRe.ReplaceAllString(raw, " ")
	s = html.UnescapeString(s)
	s = stripPictographs(s)
	s = hashtagRe.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")

	if idx := firstSeparator(s); idx >= 0 {
		s = s[:idx]
	}

	s = firstSentence(s)

	words := strings.Fields(s)
	if len(words) > wordCap {
		words = words[:wordCap]
	}
	s = strings.Join(words, " ")

	s = strings.TrimRight(s, trailingJunk)

	if s == "" {
		return "Video " + time.Now().Format("2006-01-02")
	}
	return s
}

// Build sanitizes title into a lowercase hyphen-token slug, truncated to
// tokenCap tokens and charCap characters, with sanitize(prefix) + "-"
// prepended when prefix is non-empty. An empty result falls back to
// "video-" plus a unix timestamp. The slug is derived solely from the
// normalized title and prefix, never from the raw title or external id.
func Build(title, prefix string, tokenCap, charCap int) string {
	if tokenCap <= 0 {
		tokenCap = DefaultTokenCap
	}
	if charCap <= 0 {
		charCap = DefaultCharCap
	}

	s := sanitize(title)

	tokens := strings.Split(s, "-")
	if s == "" {
		tokens = nil
	}
	if len(tokens) > tokenCap {
		tokens = tokens[:tokenCap]
	}
	s = strings.Join(tokens, "-")

	if p := sanitize(prefix); p != "" {
		if s != "" {
			s = p + "-" + s
		} else {
			s = p
		}
	}

	if len(s) > charCap {
		s = s[:charCap]
	}
	s = strings.Trim(s, "-")

	if s == "" {
		return "video-" + strconv.FormatInt(time.Now().Unix(), 10)
	}
	return s
}

func sanitize(s string) string {
	s = strings.ToLower(s)
	s = tokenRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func firstSeparator(s string) int {
	first := -1
	for _, sep := range titleSeparators {
		if idx := strings.Index(s, sep); idx >= 0 && (first < 0 || idx < first) {
			first = idx
		}
	}
	return first
}

// firstSentence keeps the first non-empty segment when the title spans
// several sentences or lines.
func firstSentence(s string) string {
	segments := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '.', '!', '?', '\n', '\r':
			return true
		}
		return false
	})
	for _, seg := range segments {
		if strings.TrimSpace(seg) != "" {
			return strings.TrimSpace(seg)
		}
	}
	return ""
}

// stripPictographs drops runes in the common emoji and symbol blocks.
func stripPictographs(s string) string {
	return strings.Map(func(r rune) rune {
		if isPictograph(r) {
			return -1
		}
		return r
	}, s)
}

func isPictograph(r rune) bool {
	switch {
	case r >= 0x1F300 && r <= 0x1FAFF: // misc pictographs through symbols-extended
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2190 && r <= 0x21FF: // arrows
		return true
	case r >= 0x2B00 && r <= 0x2BFF: // arrows, stars
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r == 0x200D: // zero-width joiner
		return true
	case unicode.Is(unicode.So, r):
		return true
	}
	return false
}
