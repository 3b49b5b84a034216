package annotate

import (
	"encoding/json"
	"fmt"
)

// Request is the JSON body of an update sent by the page:
//
//	{"index": 3, "field": "wordType", "value": "verb"}
//	{"index": 3, "field": "grammaticalCategory", "category": "plural", "isChecked": true}
type Request struct {
	Index     *int    `json:"index"`
	Field     string  `json:"field"`
	Value     *string `json:"value,omitempty"`
	Category  string  `json:"category,omitempty"`
	IsChecked bool    `json:"isChecked,omitempty"`
}

// NewRequest is the inverse of ParseRequest
func NewRequest(index int, upd Update) (*Request, error) {
	req := &Request{Index: &index}
	switch v := upd.(type) {
	case ScalarUpdate:
		req.Field = v.Field
		req.Value = &v.Value
	case SetToggleUpdate:
		req.Field = v.Field
		req.Category = v.Category
		req.IsChecked = v.IsChecked
	default:
		return nil, fmt.Errorf("%w: %T", ErrBadRequest, upd)
	}
	return req, nil
}

// Update converts the wire shape into a typed update
func (r *Request) Update() (int, Update, error) {
	if r.Index == nil {
		return 0, nil, fmt.Errorf("%w: missing 'index'", ErrBadRequest)
	}
	switch r.Field {
	case "":
		return 0, nil, fmt.Errorf("%w: missing 'field'", ErrBadRequest)
	case FieldGrammaticalCategory:
		if r.Category == "" {
			return 0, nil, fmt.Errorf("%w: missing 'category'", ErrBadRequest)
		}
		upd := SetToggleUpdate{
			Field:     r.Field,
			Category:  r.Category,
			IsChecked: r.IsChecked,
		}
		return *r.Index, upd, nil
	}
	if r.Value == nil {
		return 0, nil, fmt.Errorf("%w: missing 'value'", ErrBadRequest)
	}
	upd := ScalarUpdate{
		Field: r.Field,
		Value: *r.Value,
	}
	return *r.Index, upd, nil
}

// ParseRequest decodes a JSON update request
func ParseRequest(d []byte) (int, Update, error) {
	var r Request
	if err := json.Unmarshal(d, &r); err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return r.Update()
}
