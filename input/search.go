package input

import (
	"strings"
	"time"

	"github.com/redsalamander/folderview/models"
)

const (
	pillFadeDuration  = 220 * time.Millisecond
	pillPulseDuration = 260 * time.Millisecond
)

// searchState is the incremental-search mode: a query string matched as
// an ordinal case-insensitive substring of item names, with cyclic
// next/previous iteration and the floating pill's animation clocks.
type searchState struct {
	active bool
	query  string

	// visibilityEdge is when the pill last started fading in or out;
	// lastKeystroke drives the typing pulse.
	visibilityEdge time.Time
	fadingIn       bool
	lastKeystroke  time.Time

	now func() time.Time
}

func newSearchState() *searchState {
	return &searchState{now: time.Now}
}

// start begins a search with the first typed character.
func (s *searchState) start(r rune) {
	s.active = true
	s.query = string(r)
	s.fadingIn = true
	s.visibilityEdge = s.now()
	s.lastKeystroke = s.visibilityEdge
}

// extend appends a typed character to the query.
func (s *searchState) extend(r rune) {
	s.query += string(r)
	s.lastKeystroke = s.now()
}

// backspace removes the last query character; the mode stays active even
// on an empty query (a further Backspace exits via the caller).
func (s *searchState) backspace() bool {
	if len(s.query) == 0 {
		return false
	}
	_, size := lastRune(s.query)
	s.query = s.query[:len(s.query)-size]
	s.lastKeystroke = s.now()
	return true
}

func lastRune(s string) (rune, int) {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i]&0xC0 != 0x80 {
			r := []rune(s[i:])
			return r[0], len(s) - i
		}
	}
	return 0, len(s)
}

// exit leaves search mode, starting the pill's fade-out.
func (s *searchState) exit() {
	if !s.active {
		return
	}
	s.active = false
	s.query = ""
	s.fadingIn = false
	s.visibilityEdge = s.now()
}

// matches reports whether name contains the query, ordinal
// case-insensitive.
func (s *searchState) matches(name string) bool {
	return s.query != "" && strings.Contains(strings.ToLower(name), strings.ToLower(s.query))
}

// matchOffset returns the byte offset and length of the query inside
// name, or (-1, 0).
func (s *searchState) matchOffset(name string) (int, int) {
	if s.query == "" {
		return -1, 0
	}
	idx := strings.Index(strings.ToLower(name), strings.ToLower(s.query))
	if idx < 0 {
		return -1, 0
	}
	return idx, len(s.query)
}

// findFrom searches cyclically: forward from start+1 (or backward from
// start-1) through every item once, returning the first match.
func (s *searchState) findFrom(items []*models.Item, start int, forward bool) (int, bool) {
	n := len(items)
	if n == 0 || s.query == "" {
		return 0, false
	}

	step := 1
	if !forward {
		step = -1
	}
	idx := start
	for i := 0; i < n; i++ {
		idx += step
		if idx >= n {
			idx = 0
		}
		if idx < 0 {
			idx = n - 1
		}
		if s.matches(items[idx].DisplayName) {
			return idx, true
		}
	}
	return 0, false
}

// pillAlpha returns the pill's current visibility in [0, 1].
func (s *searchState) pillAlpha() float64 {
	elapsed := s.now().Sub(s.visibilityEdge)
	progress := float64(elapsed) / float64(pillFadeDuration)
	if progress > 1 {
		progress = 1
	}
	if progress < 0 {
		progress = 0
	}
	if s.fadingIn {
		return progress
	}
	return 1 - progress
}

// pulse returns the typing pulse in [0, 1], decaying to zero within
// pillPulseDuration of the last keystroke.
func (s *searchState) pulse() float64 {
	if !s.active {
		return 0
	}
	elapsed := s.now().Sub(s.lastKeystroke)
	if elapsed >= pillPulseDuration {
		return 0
	}
	return 1 - float64(elapsed)/float64(pillPulseDuration)
}

// animating reports whether the pill still needs animation ticks.
func (s *searchState) animating() bool {
	if s.active {
		return true
	}
	return s.now().Sub(s.visibilityEdge) < pillFadeDuration
}

// isSearchChar reports whether r extends a query: letters, digits, and
// punctuation all do; control characters do not.
func isSearchChar(r rune) bool {
	return r >= 0x20 && r != 0x7F
}
