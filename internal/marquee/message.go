package marquee

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/nerrad567/marquee/internal/display"
)

// ErrInvalidUTF8 is returned when a message payload is not valid UTF-8.
// The previous message buffer is kept; a corrupt payload must never blank
// the panel.
var ErrInvalidUTF8 = errors.New("marquee: message payload is not valid UTF-8")

// Tone selects the background color for a message. It is derived from
// leading keywords in the payload so upstream feeds can color-code
// themselves without a separate topic.
type Tone int

const (
	ToneDefault Tone = iota
	ToneTime
	ToneNews
	ToneWeather
	ToneAir
)

// String implements fmt.Stringer for logging and event payloads.
func (t Tone) String() string {
	switch t {
	case ToneTime:
		return "time"
	case ToneNews:
		return "news"
	case ToneWeather:
		return "weather"
	case ToneAir:
		return "air"
	default:
		return "default"
	}
}

// Message is one display buffer: the validated payload split into
// renderable lines plus the tone chosen for its background. Messages are
// immutable once built; replacing the buffer means building a new one.
type Message struct {
	// Raw is the original payload text, kept for the status API and
	// event broadcasts.
	Raw string

	// Lines holds the display lines after splitting on newlines and
	// wrapping to the panel width.
	Lines []string

	// Tone is the background classification for this message.
	Tone Tone
}

// Empty reports whether the message renders nothing.
func (m Message) Empty() bool {
	return len(m.Lines) == 0
}

// BuildMessage validates and lays out a payload for display.
//
// The payload must be valid UTF-8. Line breaks are preserved: a payload
// with k breaks yields at least k+1 lines, more when wrapping splits long
// lines. wrapWidth is the usable pixel width; zero or negative disables
// wrapping.
func BuildMessage(text string, wrapWidth int) (Message, error) {
	if !utf8.ValidString(text) {
		return Message{}, ErrInvalidUTF8
	}

	var lines []string
	for _, src := range strings.Split(text, "\n") {
		lines = append(lines, wrapLine(src, wrapWidth)...)
	}

	return Message{
		Raw:   text,
		Lines: lines,
		Tone:  classifyTone(text),
	}, nil
}

// classifyTone picks a background tone from category keywords in the
// payload. Feeds label their categories with a capitalized keyword
// ("Time", "News", "Weather", "Air"), so matching is a case-sensitive
// substring search and lowercase mentions in body text do not recolor
// the banner. When several keywords appear, the first in this order
// wins.
func classifyTone(text string) Tone {
	switch {
	case strings.Contains(text, "Time"):
		return ToneTime
	case strings.Contains(text, "News"):
		return ToneNews
	case strings.Contains(text, "Weather"):
		return ToneWeather
	case strings.Contains(text, "Air"):
		return ToneAir
	default:
		return ToneDefault
	}
}

// wrapLine word-wraps a single source line to wrapWidth pixels. Words
// wider than the panel are broken mid-word rather than dropped. An empty
// source line stays an empty display line so vertical spacing survives.
func wrapLine(src string, wrapWidth int) []string {
	if wrapWidth <= 0 || src == "" || display.MeasureString(src) <= wrapWidth {
		return []string{src}
	}

	var (
		out     []string
		current string
	)
	flush := func() {
		if current != "" {
			out = append(out, current)
			current = ""
		}
	}

	for _, word := range strings.Fields(src) {
		for display.MeasureString(word) > wrapWidth {
			// Oversized word: emit what fits and keep going with the rest.
			flush()
			head, tail := splitRunes(word, wrapWidth)
			if head == "" {
				// Panel narrower than one glyph. Keep the word whole and
				// let the renderer clip it.
				break
			}
			out = append(out, head)
			word = tail
		}

		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if display.MeasureString(candidate) <= wrapWidth {
			current = candidate
			continue
		}
		flush()
		current = word
	}
	flush()

	if len(out) == 0 {
		return []string{src}
	}
	return out
}

// splitRunes splits a word at the last rune boundary that still fits in
// wrapWidth pixels.
func splitRunes(word string, wrapWidth int) (head, tail string) {
	runes := []rune(word)
	for i := len(runes) - 1; i > 0; i-- {
		h := string(runes[:i])
		if display.MeasureString(h) <= wrapWidth {
			return h, string(runes[i:])
		}
	}
	return "", word
}
