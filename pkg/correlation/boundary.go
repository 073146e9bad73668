package correlation

import "strings"

// Sentinels used when no boundary text could be captured.
const (
	NoLeftBoundary  = "NoLeftBoundary"
	NoRightBoundary = "NoRightBoundary"
)

// boundaryWidth is the number of characters captured on each side of a token.
const boundaryWidth = 10

// Boundary is the literal text immediately around a token.
type Boundary struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Complete reports whether neither side is a sentinel.
func (b Boundary) Complete() bool {
	return b.Left != NoLeftBoundary && b.Right != NoRightBoundary
}

func (b Boundary) String() string {
	return "Left: " + b.Left + ", Right: " + b.Right
}

// CaptureBoundary returns the context around the first occurrence of kv in
// text: up to ten characters on each side, trimmed of whitespace. When the
// right window is blank, the text up to the next space is used instead.
// Missing context is reported with the sentinels.
func CaptureBoundary(text, kv string) Boundary {
	start := strings.Index(text, kv)
	if start == -1 || kv == "" {
		return Boundary{Left: NoLeftBoundary, Right: NoRightBoundary}
	}
	end := start + len(kv)

	left := strings.TrimSpace(lastRunes(text[:start], boundaryWidth))
	if left == "" {
		left = NoLeftBoundary
	}

	remainder := text[end:]
	right := strings.TrimSpace(firstRunes(remainder, boundaryWidth))
	if right == "" {
		if i := strings.IndexByte(remainder, ' '); i != -1 {
			right = strings.TrimSpace(remainder[:i])
		} else {
			right = strings.TrimSpace(remainder)
		}
	}
	if right == "" {
		right = NoRightBoundary
	}

	if text[start:end] != kv {
		return Boundary{Left: left, Right: NoRightBoundary}
	}
	return Boundary{Left: left, Right: right}
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
