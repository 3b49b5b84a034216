// Package web serves the annotation page and its JSON API:
//
//	GET  /                       the page
//	POST /                       apply one update to the store
//	GET  /api/words?start=&count= a page of records
//	GET  /api/position?pos=      a page starting at 1-based position
//	GET  /api/vocab              word types and categories
package web

import (
	"bytes"
	_ "embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kjk/wordtag/annotate"
	"github.com/kjk/wordtag/httputil"
	"github.com/kjk/wordtag/log"
	"github.com/kjk/wordtag/view"
	"github.com/kjk/wordtag/vocab"
	"github.com/kjk/wordtag/wordstore"
)

//go:embed page.html
var pageHTML string

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

// updates are tiny, anything bigger is not from our page
const maxUpdateSize = 64 * 1024

type Server struct {
	Store   *wordstore.Store
	Updater *annotate.Updater
	Vocab   *vocab.Vocabulary
	Title   string

	PageSize        int
	BottomThreshold int
	LoadDelay       time.Duration
}

// UpdateResponse is the response to POST /
type UpdateResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// the part of configuration the page's JavaScript needs
type pageConfig struct {
	WordTypes       []string `json:"wordTypes"`
	Categories      []string `json:"categories"`
	PageSize        int      `json:"pageSize"`
	BottomThreshold int      `json:"bottomThreshold"`
	LoadDelayMs     int64    `json:"loadDelayMs"`
}

func (s *Server) vocabulary() *vocab.Vocabulary {
	if s.Vocab == nil {
		return vocab.Default()
	}
	return s.Vocab
}

func (s *Server) pageSize() int {
	if s.PageSize <= 0 {
		return view.DefaultPageSize
	}
	return s.PageSize
}

// Handler returns all routes, with request logging and compression
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleUpdate)
	mux.HandleFunc("GET /api/words", s.handleWords)
	mux.HandleFunc("GET /api/position", s.handlePosition)
	mux.HandleFunc("GET /api/vocab", s.handleVocab)
	return httputil.LogRequests(httputil.Compress(mux))
}

func serveServerError(w http.ResponseWriter) {
	http.Error(w, "server error", http.StatusInternalServerError)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	c, err := s.Store.Load()
	if err != nil {
		log.Errorf("handleIndex: s.Store.Load() failed with '%s'\n", err)
		serveServerError(w)
		return
	}
	title := s.Title
	if title == "" {
		title = "Words"
	}
	v := map[string]any{
		"Title": title,
		"Stats": c.Stats(),
		"Config": pageConfig{
			WordTypes:       s.vocabulary().WordTypes,
			Categories:      s.vocabulary().Categories,
			PageSize:        s.pageSize(),
			BottomThreshold: s.BottomThreshold,
			LoadDelayMs:     s.LoadDelay.Milliseconds(),
		},
	}
	var buf bytes.Buffer
	if err = pageTmpl.Execute(&buf, v); err != nil {
		log.Errorf("handleIndex: pageTmpl.Execute() failed with '%s'\n", err)
		serveServerError(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// status code for a failed update. The body is the same for all.
func updateErrorStatus(err error) int {
	switch {
	case errors.Is(err, annotate.ErrBadRequest),
		errors.Is(err, annotate.ErrIndexOutOfRange),
		errors.Is(err, annotate.ErrUnknownField),
		errors.Is(err, annotate.ErrInvalidValue):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	timeStart := time.Now()
	d, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateSize))
	if err == nil {
		err = s.update(d)
	}
	if err != nil {
		log.Errorf("handleUpdate: '%s' failed with '%s'\n", d, err)
		log.Event("update_failed", "error", err.Error())
		rsp := UpdateResponse{Success: false, Error: err.Error()}
		httputil.WriteJSON(w, rsp, updateErrorStatus(err))
		return
	}
	log.EventWithDuration("update", time.Since(timeStart), "body", string(d))
	httputil.WriteJSON(w, UpdateResponse{Success: true}, http.StatusOK)
}

func (s *Server) update(body []byte) error {
	idx, upd, err := annotate.ParseRequest(body)
	if err != nil {
		return err
	}
	up := s.Updater
	if up == nil {
		up = &annotate.Updater{}
	}
	return s.Store.Update(func(c wordstore.Collection) error {
		return up.Apply(c, idx, upd)
	})
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	start, err := queryInt(r, "start", 0)
	if err != nil || start < 0 {
		httputil.WriteJSON(w, errorResponse{Error: "invalid start"}, http.StatusBadRequest)
		return
	}
	count, err := queryInt(r, "count", s.pageSize())
	if err != nil || count <= 0 {
		httputil.WriteJSON(w, errorResponse{Error: "invalid count"}, http.StatusBadRequest)
		return
	}
	c, err := s.Store.Load()
	if err != nil {
		log.Errorf("handleWords: s.Store.Load() failed with '%s'\n", err)
		serveServerError(w)
		return
	}
	httputil.WriteJSON(w, view.MakePage(c, start, count), http.StatusOK)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	c, err := s.Store.Load()
	if err != nil {
		log.Errorf("handlePosition: s.Store.Load() failed with '%s'\n", err)
		serveServerError(w)
		return
	}
	// each request is a new viewer, the page keeps its own cursor
	sess := view.NewSession(s.pageSize())
	page, err := sess.SearchByPosition(c, r.URL.Query().Get("pos"))
	if err != nil {
		httputil.WriteJSON(w, errorResponse{Error: err.Error()}, http.StatusBadRequest)
		return
	}
	httputil.WriteJSON(w, page, http.StatusOK)
}

func (s *Server) handleVocab(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, s.vocabulary(), http.StatusOK)
}
