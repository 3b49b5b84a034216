// Package vocab holds the closed sets of word types and grammatical
// categories an operator can pick from.
package vocab

import (
	"fmt"
	"strings"
)

// Unselected is the word type of a record that wasn't tagged yet
const Unselected = "Unselected"

// DefaultWordTypes is the part-of-speech list, Unselected first
var DefaultWordTypes = []string{
	Unselected,
	"noun",
	"adjective",
	"adverb",
	"verb",
	"number",
	"pronoun",
	"preposition",
	"interjection",
	"conjunction",
	"article",
}

// DefaultCategories is the list of grammatical category tags
var DefaultCategories = []string{
	"countable",
	"uncountable",
	"singular",
	"plural",
	"positive_degree",
	"comparative_degree",
	"superlative_degree",
	"present_tense",
	"past_tense",
	"future_tense",
	"future_in_the_past_tense",
	"possessive_pronoun",
	"personal_pronoun",
	"relative_pronoun",
	"reflexive_pronoun",
	"indefinite_pronoun",
	"demonstrative_pronoun",
	"interrogative_pronoun",
	"intensive_pronoun",
	"reciprocal_pronoun",
	"coordinating_conjunction",
	"subordinate_conjunction",
	"correlating_conjunction",
	"definite_article",
	"indefinite_article",
	"common_noun",
	"proper_noun",
	"transitive",
	"intransitive",
	"participle_i",
	"gerund",
	"infinitive",
	"mood",
	"conditional",
	"active_voice",
	"passive_voice",
}

// Vocabulary is an ordered, closed set of word types and categories.
// Order is the display order.
type Vocabulary struct {
	WordTypes  []string `json:"wordTypes"`
	Categories []string `json:"categories"`

	wordTypes  map[string]bool
	categories map[string]bool
}

// New builds a Vocabulary. Values must be non-empty and unique.
func New(wordTypes []string, categories []string) (*Vocabulary, error) {
	v := &Vocabulary{
		wordTypes:  map[string]bool{},
		categories: map[string]bool{},
	}
	for _, s := range wordTypes {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("empty word type")
		}
		if v.wordTypes[s] {
			return nil, fmt.Errorf("duplicate word type '%s'", s)
		}
		v.wordTypes[s] = true
		v.WordTypes = append(v.WordTypes, s)
	}
	for _, s := range categories {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("empty category")
		}
		if v.categories[s] {
			return nil, fmt.Errorf("duplicate category '%s'", s)
		}
		v.categories[s] = true
		v.Categories = append(v.Categories, s)
	}
	if len(v.WordTypes) == 0 {
		return nil, fmt.Errorf("need at least one word type")
	}
	return v, nil
}

// Default returns the built-in vocabulary
func Default() *Vocabulary {
	v, err := New(DefaultWordTypes, DefaultCategories)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Vocabulary) IsWordType(s string) bool {
	return v.wordTypes[s]
}

func (v *Vocabulary) IsCategory(s string) bool {
	return v.categories[s]
}
