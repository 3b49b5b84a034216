package annotate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kjk/wordtag/require"
	"github.com/kjk/wordtag/vocab"
	"github.com/kjk/wordtag/wordstore"
)

func newCollection() wordstore.Collection {
	return wordstore.Collection{
		{Word: "the", Count: 120, WordType: "article"},
		{Word: "cats", Count: 7, GrammaticalCategory: []string{"plural"}},
		{Word: "ran", Count: 3},
	}
}

func clone(c wordstore.Collection) wordstore.Collection {
	var res wordstore.Collection
	for _, r := range c {
		r2 := *r
		if r.GrammaticalCategory != nil {
			r2.GrammaticalCategory = append([]string{}, r.GrammaticalCategory...)
		}
		res = append(res, &r2)
	}
	return res
}

func TestScalarUpdate(t *testing.T) {
	c := newCollection()
	orig := clone(c)
	err := Apply(c, 1, ScalarUpdate{Field: FieldWordType, Value: "verb"})
	require.NoError(t, err)
	require.Equal(t, "verb", c[1].WordType)
	require.Equal(t, orig[0], c[0])
	require.Equal(t, orig[2], c[2])
	require.Equal(t, orig[1].GrammaticalCategory, c[1].GrammaticalCategory)
}

func TestSetToggle(t *testing.T) {
	c := newCollection()
	add := SetToggleUpdate{Field: FieldGrammaticalCategory, Category: "past_tense", IsChecked: true}
	require.NoError(t, Apply(c, 1, add))
	require.Equal(t, []string{"plural", "past_tense"}, c[1].GrammaticalCategory)

	// checking twice doesn't duplicate
	require.NoError(t, Apply(c, 1, add))
	require.Equal(t, []string{"plural", "past_tense"}, c[1].GrammaticalCategory)

	remove := SetToggleUpdate{Field: FieldGrammaticalCategory, Category: "plural", IsChecked: false}
	require.NoError(t, Apply(c, 1, remove))
	require.Equal(t, []string{"past_tense"}, c[1].GrammaticalCategory)
	// removing an absent tag is a no-op
	require.NoError(t, Apply(c, 1, remove))
	require.Equal(t, []string{"past_tense"}, c[1].GrammaticalCategory)

	// missing set is created
	require.Nil(t, c[2].GrammaticalCategory)
	require.NoError(t, Apply(c, 2, remove))
	require.Equal(t, []string{}, c[2].GrammaticalCategory)
	add.Category = "transitive"
	require.NoError(t, Apply(c, 2, add))
	require.Equal(t, []string{"transitive"}, c[2].GrammaticalCategory)
}

func TestIndexOutOfRange(t *testing.T) {
	c := newCollection()
	orig := clone(c)
	upd := ScalarUpdate{Field: FieldWordType, Value: "verb"}
	for _, idx := range []int{-1, 3, 5} {
		err := Apply(c, idx, upd)
		require.True(t, errors.Is(err, ErrIndexOutOfRange))
		var ie *IndexError
		require.True(t, errors.As(err, &ie))
		require.Equal(t, idx, ie.Index)
		require.Equal(t, 3, ie.Len)
	}
	require.Equal(t, orig, c)

	err := Apply(nil, 0, upd)
	require.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestValidation(t *testing.T) {
	up := &Updater{Vocab: vocab.Default()}
	c := newCollection()
	orig := clone(c)

	err := up.Apply(c, 0, ScalarUpdate{Field: FieldWordType, Value: "banana"})
	require.True(t, errors.Is(err, ErrInvalidValue))
	err = up.Apply(c, 0, SetToggleUpdate{Field: FieldGrammaticalCategory, Category: "banana", IsChecked: true})
	require.True(t, errors.Is(err, ErrInvalidValue))
	err = up.Apply(c, 0, ScalarUpdate{Field: "count", Value: "3"})
	require.True(t, errors.Is(err, ErrUnknownField))
	err = up.Apply(c, 0, SetToggleUpdate{Field: FieldWordType, Category: "plural", IsChecked: true})
	require.True(t, errors.Is(err, ErrUnknownField))
	err = up.Apply(c, 0, nil)
	require.True(t, errors.Is(err, ErrBadRequest))
	require.Equal(t, orig, c)

	require.NoError(t, up.Apply(c, 0, ScalarUpdate{Field: FieldWordType, Value: vocab.Unselected}))
	require.Equal(t, vocab.Unselected, c[0].WordType)

	// without a vocabulary any value goes
	require.NoError(t, Apply(c, 0, ScalarUpdate{Field: FieldWordType, Value: "banana"}))
	require.Equal(t, "banana", c[0].WordType)
}

func TestApplyWithStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.json")
	st, err := wordstore.New(path)
	require.NoError(t, err)
	require.NoError(t, st.Save(newCollection()))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	up := &Updater{Vocab: vocab.Default()}
	err = st.Update(func(c wordstore.Collection) error {
		return up.Apply(c, 5, ScalarUpdate{Field: FieldWordType, Value: "verb"})
	})
	require.True(t, errors.Is(err, ErrIndexOutOfRange))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))

	err = st.Update(func(c wordstore.Collection) error {
		return up.Apply(c, 1, ScalarUpdate{Field: FieldWordType, Value: "verb"})
	})
	require.NoError(t, err)
	c, err := st.Load()
	require.NoError(t, err)
	exp := newCollection()
	exp[1].WordType = "verb"
	require.Equal(t, exp, c)
}

func TestParseRequest(t *testing.T) {
	idx, upd, err := ParseRequest([]byte(`{"index": 1, "field": "wordType", "value": "verb"}`))
	require.NoError(t, err)
	require.Equal(t, 1, idx)
	require.Equal(t, ScalarUpdate{Field: FieldWordType, Value: "verb"}, upd)

	body := `{"index": 0, "field": "grammaticalCategory", "category": "past_tense", "isChecked": true}`
	idx, upd, err = ParseRequest([]byte(body))
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, SetToggleUpdate{Field: FieldGrammaticalCategory, Category: "past_tense", IsChecked: true}, upd)

	bad := []string{
		``,
		`[]`,
		`{"field": "wordType", "value": "verb"}`,
		`{"index": 1, "value": "verb"}`,
		`{"index": 1, "field": "wordType"}`,
		`{"index": 1, "field": "grammaticalCategory", "isChecked": true}`,
		`{"index": "1", "field": "wordType", "value": "verb"}`,
	}
	for _, s := range bad {
		_, _, err = ParseRequest([]byte(s))
		require.True(t, errors.Is(err, ErrBadRequest), "body: %s", s)
	}
}

func TestNewRequest(t *testing.T) {
	updates := []Update{
		ScalarUpdate{Field: FieldWordType, Value: "noun"},
		SetToggleUpdate{Field: FieldGrammaticalCategory, Category: "plural", IsChecked: true},
		SetToggleUpdate{Field: FieldGrammaticalCategory, Category: "plural"},
	}
	for i, upd := range updates {
		req, err := NewRequest(i, upd)
		require.NoError(t, err)
		idx, got, err := req.Update()
		require.NoError(t, err)
		require.Equal(t, i, idx)
		require.Equal(t, upd, got)
	}
	_, err := NewRequest(0, nil)
	require.Error(t, err)
}
