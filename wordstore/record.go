package wordstore

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"

	"github.com/kjk/wordtag/vocab"
)

// WordRecord is one entry of the frequency list.
// Absent wordType / grammaticalCategory stay absent when saved back
// and keys other than the four below are kept in Extra.
type WordRecord struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
	// empty means Unselected
	WordType string `json:"wordType,omitzero"`
	// nil means absent, empty non-nil is written as []
	GrammaticalCategory []string `json:"grammaticalCategory,omitzero"`

	// keys we don't know about, written back unchanged
	Extra map[string]json.RawMessage `json:"-"`
}

const (
	keyWord                = "word"
	keyCount               = "count"
	keyWordType            = "wordType"
	keyGrammaticalCategory = "grammaticalCategory"
)

func isKnownKey(k string) bool {
	switch k {
	case keyWord, keyCount, keyWordType, keyGrammaticalCategory:
		return true
	}
	return false
}

func (r *WordRecord) UnmarshalJSON(d []byte) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(d, &all); err != nil {
		return err
	}
	// keys are matched exactly, "Word" is an unknown key and not "word"
	var res WordRecord
	fields := []struct {
		key string
		v   any
	}{
		{keyWord, &res.Word},
		{keyCount, &res.Count},
		{keyWordType, &res.WordType},
		{keyGrammaticalCategory, &res.GrammaticalCategory},
	}
	for _, f := range fields {
		v, ok := all[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.v); err != nil {
			return err
		}
	}
	for k, v := range all {
		if isKnownKey(k) {
			continue
		}
		if res.Extra == nil {
			res.Extra = map[string]json.RawMessage{}
		}
		res.Extra[k] = v
	}
	*r = res
	return nil
}

func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// MarshalJSON writes known keys first, then Extra keys sorted by name
func (r WordRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(k string, v []byte) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		kd, _ := marshalValue(k)
		buf.Write(kd)
		buf.WriteByte(':')
		buf.Write(v)
	}
	writeValue := func(k string, v any) error {
		d, err := marshalValue(v)
		if err != nil {
			return err
		}
		write(k, d)
		return nil
	}
	if err := writeValue(keyWord, r.Word); err != nil {
		return nil, err
	}
	if err := writeValue(keyCount, r.Count); err != nil {
		return nil, err
	}
	if r.WordType != "" {
		if err := writeValue(keyWordType, r.WordType); err != nil {
			return nil, err
		}
	}
	if r.GrammaticalCategory != nil {
		if err := writeValue(keyGrammaticalCategory, r.GrammaticalCategory); err != nil {
			return nil, err
		}
	}
	for _, k := range slices.Sorted(maps.Keys(r.Extra)) {
		if isKnownKey(k) {
			continue
		}
		v := r.Extra[k]
		if len(v) == 0 {
			v = json.RawMessage("null")
		}
		write(k, v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Type returns the word type, Unselected if not set
func (r *WordRecord) Type() string {
	if r.WordType == "" {
		return vocab.Unselected
	}
	return r.WordType
}

func (r *WordRecord) HasCategory(category string) bool {
	return slices.Contains(r.GrammaticalCategory, category)
}

// Collection is the ordered list of records. Position is identity.
type Collection []*WordRecord

// Stats summarizes how much of the list was annotated
type Stats struct {
	Total         int `json:"total"`
	WithType      int `json:"withType"`
	WithCategory  int `json:"withCategory"`
	TotalCategory int `json:"totalCategory"`
}

func (c Collection) Stats() Stats {
	res := Stats{Total: len(c)}
	for _, r := range c {
		if r.Type() != vocab.Unselected {
			res.WithType++
		}
		if n := len(r.GrammaticalCategory); n > 0 {
			res.WithCategory++
			res.TotalCategory += n
		}
	}
	return res
}
