// Package client talks to a running wordtag server
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/carlmjohnson/requests"
	"github.com/kjk/wordtag/annotate"
	"github.com/kjk/wordtag/view"
	"github.com/kjk/wordtag/vocab"
)

// ErrUpdateFailed is matched by errors from a server that
// answered {"success": false}
var ErrUpdateFailed = errors.New("update failed")

type Client struct {
	BaseURL string
	// if nil, http.DefaultClient is used
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL}
}

func (c *Client) builder(path string) *requests.Builder {
	rb := requests.URL(c.BaseURL).Path(path)
	if c.HTTPClient != nil {
		rb = rb.Client(c.HTTPClient)
	}
	return rb
}

// Update sends an update of record at index
func (c *Client) Update(ctx context.Context, index int, upd annotate.Update) error {
	req, err := annotate.NewRequest(index, upd)
	if err != nil {
		return err
	}
	var rsp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	err = c.builder("/").
		Post().
		BodyJSON(req).
		CheckStatus(http.StatusOK, http.StatusBadRequest, http.StatusInternalServerError).
		ToJSON(&rsp).
		Fetch(ctx)
	if err != nil {
		return err
	}
	if !rsp.Success {
		return fmt.Errorf("%w: %s", ErrUpdateFailed, rsp.Error)
	}
	return nil
}

func (c *Client) SetWordType(ctx context.Context, index int, wordType string) error {
	upd := annotate.ScalarUpdate{
		Field: annotate.FieldWordType,
		Value: wordType,
	}
	return c.Update(ctx, index, upd)
}

func (c *Client) SetCategory(ctx context.Context, index int, category string, isChecked bool) error {
	upd := annotate.SetToggleUpdate{
		Field:     annotate.FieldGrammaticalCategory,
		Category:  category,
		IsChecked: isChecked,
	}
	return c.Update(ctx, index, upd)
}

// Words returns count records starting at 0-based start
func (c *Client) Words(ctx context.Context, start, count int) (*view.Page, error) {
	var page view.Page
	err := c.builder("/api/words").
		Param("start", strconv.Itoa(start)).
		Param("count", strconv.Itoa(count)).
		ToJSON(&page).
		Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Position returns a page starting at a 1-based position
func (c *Client) Position(ctx context.Context, pos string) (*view.Page, error) {
	var page view.Page
	var errRsp struct {
		Error string `json:"error"`
	}
	err := c.builder("/api/position").
		Param("pos", pos).
		AddValidator(requests.ValidatorHandler(
			requests.DefaultValidator,
			requests.ToJSON(&errRsp),
		)).
		ToJSON(&page).
		Fetch(ctx)
	if err != nil {
		if errRsp.Error != "" {
			return nil, fmt.Errorf("%w: %s", view.ErrInvalidPosition, errRsp.Error)
		}
		return nil, err
	}
	return &page, nil
}

func (c *Client) Vocab(ctx context.Context) (*vocab.Vocabulary, error) {
	var v vocab.Vocabulary
	err := c.builder("/api/vocab").ToJSON(&v).Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return vocab.New(v.WordTypes, v.Categories)
}
