// Package view delivers a collection page by page, the way the annotation
// page shows a long word list: a page at a time as the user scrolls, or
// starting from a position the user typed in.
package view

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kjk/wordtag/wordstore"
)

const DefaultPageSize = 20

var ErrInvalidPosition = errors.New("invalid position")

// PositionError is returned by SearchByPosition for input that isn't
// a position in [1, Total]
type PositionError struct {
	Input string
	Total int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("invalid position '%s', must be a number between 1 and %d", e.Input, e.Total)
}

func (e *PositionError) Is(target error) bool {
	return target == ErrInvalidPosition
}

// Page is a consecutive run of records
type Page struct {
	// index of the first item in the collection
	Start int                  `json:"start"`
	Items wordstore.Collection `json:"items"`
	// index to ask for to get the page after this one
	Next    int  `json:"next"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// FetchRange returns c[start:start+pageSize] clipped to the collection.
// Never fails: a start past the end gives an empty slice.
func FetchRange(c wordstore.Collection, start, pageSize int) wordstore.Collection {
	n := len(c)
	if start < 0 {
		start = 0
	}
	if pageSize <= 0 || start >= n {
		return wordstore.Collection{}
	}
	end := min(start+pageSize, n)
	return c[start:end]
}

// MakePage is FetchRange with paging information
func MakePage(c wordstore.Collection, start, pageSize int) Page {
	if start < 0 {
		start = 0
	}
	items := FetchRange(c, start, pageSize)
	next := start + len(items)
	if start > len(c) {
		next = len(c)
	}
	return Page{
		Start:   start,
		Items:   items,
		Next:    next,
		Total:   len(c),
		// an empty page can't advance, don't invite another fetch
		HasMore: len(items) > 0 && next < len(c),
	}
}

// ParsePosition converts a 1-based position typed by a human
// into a 0-based index into a collection of n items
func ParsePosition(input string, n int) (int, error) {
	s := strings.TrimSpace(input)
	pos, err := strconv.Atoi(s)
	if err != nil || pos < 1 || pos > n {
		return 0, &PositionError{Input: input, Total: n}
	}
	return pos - 1, nil
}

// Session is the state of one viewer: how far into the collection
// it has delivered items. Not safe for concurrent use; each viewer
// gets its own.
type Session struct {
	PageSize int
	cursor   int
}

func NewSession(pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Session{PageSize: pageSize}
}

// Cursor is the number of items delivered so far (index of the next one)
func (s *Session) Cursor() int {
	return s.cursor
}

// Done returns true if everything up to the end of c was delivered
func (s *Session) Done(c wordstore.Collection) bool {
	return s.cursor >= len(c)
}

// Next returns the page at the cursor and moves the cursor past it
func (s *Session) Next(c wordstore.Collection) Page {
	p := MakePage(c, s.cursor, s.PageSize)
	s.cursor = p.Next
	return p
}

// SearchByPosition restarts delivery at a 1-based position.
// On invalid input the cursor is unchanged.
func (s *Session) SearchByPosition(c wordstore.Collection, input string) (Page, error) {
	idx, err := ParsePosition(input, len(c))
	if err != nil {
		return Page{}, err
	}
	s.cursor = idx
	return s.Next(c), nil
}

// NearBottom tells if a viewport whose bottom edge is at scrollBottom
// is within threshold of the end of a document of docHeight,
// at which point the next page should be loaded
func NearBottom(scrollBottom, docHeight, threshold float64) bool {
	return scrollBottom >= docHeight-threshold
}
