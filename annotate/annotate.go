// Package annotate applies one operator edit to one record of a collection.
//
// There are two kinds of edits:
//   - ScalarUpdate replaces a single-valued field (the word type)
//   - SetToggleUpdate adds or removes one tag of a record's category set
//
// Apply mutates the collection in place and doesn't persist anything.
// Use it inside wordstore.Store.Update to get a load, mutate, save cycle.
package annotate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kjk/wordtag/vocab"
	"github.com/kjk/wordtag/wordstore"
)

const (
	FieldWordType            = "wordType"
	FieldGrammaticalCategory = "grammaticalCategory"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidValue    = errors.New("invalid value")
	ErrBadRequest      = errors.New("bad request")
)

// IndexError is returned for an index outside of the collection.
// errors.Is(err, ErrIndexOutOfRange) is true for it.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// Update is either ScalarUpdate or SetToggleUpdate
type Update interface {
	field() string
}

// ScalarUpdate sets Field to Value
type ScalarUpdate struct {
	Field string
	Value string
}

func (u ScalarUpdate) field() string { return u.Field }

func (u ScalarUpdate) String() string {
	return fmt.Sprintf("%s=%q", u.Field, u.Value)
}

// SetToggleUpdate adds Category to the Field set if IsChecked
// or removes it if not
type SetToggleUpdate struct {
	Field     string
	Category  string
	IsChecked bool
}

func (u SetToggleUpdate) field() string { return u.Field }

func (u SetToggleUpdate) String() string {
	op := "-"
	if u.IsChecked {
		op = "+"
	}
	return fmt.Sprintf("%s%s%s", u.Field, op, u.Category)
}

// Updater applies updates. If Vocab is set, values outside of
// the vocabulary are rejected. With nil Vocab any value is accepted.
type Updater struct {
	Vocab *vocab.Vocabulary
}

func (up *Updater) validate(upd Update) error {
	switch v := upd.(type) {
	case ScalarUpdate:
		if v.Field != FieldWordType {
			return fmt.Errorf("%w: '%s' is not a scalar field", ErrUnknownField, v.Field)
		}
		if up.Vocab != nil && !up.Vocab.IsWordType(v.Value) {
			return fmt.Errorf("%w: '%s' is not a word type", ErrInvalidValue, v.Value)
		}
	case SetToggleUpdate:
		if v.Field != FieldGrammaticalCategory {
			return fmt.Errorf("%w: '%s' is not a set field", ErrUnknownField, v.Field)
		}
		if up.Vocab != nil && !up.Vocab.IsCategory(v.Category) {
			return fmt.Errorf("%w: '%s' is not a grammatical category", ErrInvalidValue, v.Category)
		}
	case nil:
		return fmt.Errorf("%w: no update", ErrBadRequest)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownField, upd)
	}
	return nil
}

// Apply changes exactly one field of c[index].
// On error c is not modified.
func (up *Updater) Apply(c wordstore.Collection, index int, upd Update) error {
	if index < 0 || index >= len(c) {
		return &IndexError{Index: index, Len: len(c)}
	}
	if err := up.validate(upd); err != nil {
		return err
	}
	rec := c[index]
	switch v := upd.(type) {
	case ScalarUpdate:
		rec.WordType = v.Value
	case SetToggleUpdate:
		rec.GrammaticalCategory = toggle(rec.GrammaticalCategory, v.Category, v.IsChecked)
	}
	return nil
}

// Apply is Updater.Apply without vocabulary checks
func Apply(c wordstore.Collection, index int, upd Update) error {
	var up Updater
	return up.Apply(c, index, upd)
}

func toggle(set []string, category string, isChecked bool) []string {
	if set == nil {
		set = []string{}
	}
	has := slices.Contains(set, category)
	if isChecked {
		if !has {
			set = append(set, category)
		}
		return set
	}
	if has {
		set = slices.DeleteFunc(set, func(s string) bool {
			return s == category
		})
	}
	return set
}
