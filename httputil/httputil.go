package httputil

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kjk/wordtag/log"
	"github.com/klauspost/compress/gzhttp"
)

// GetBestRemoteAddress returns IP address of the request even for proxied requests
func GetBestRemoteAddress(r *http.Request) string {
	h := r.Header
	potentials := []string{h.Get("CF-Connecting-IP"), h.Get("X-Real-Ip"), h.Get("X-Forwarded-For"), r.RemoteAddr}
	for _, v := range potentials {
		// sometimes they are stored as "ip1, ip2, ip3" with ip1 being the best
		parts := strings.Split(v, ",")
		res := strings.TrimSpace(parts[0])
		if res != "" {
			return res
		}
	}
	return ""
}

// WriteJSON sends v as JSON with a given status code
func WriteJSON(w http.ResponseWriter, v any, code int) {
	d, err := json.Marshal(v)
	if err != nil {
		log.Errorf("WriteJSON: json.Marshal() failed with '%s'\n", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(d)
}

// Compress gzips responses for clients that accept it
func Compress(h http.Handler) http.Handler {
	return gzhttp.GzipHandler(h)
}

// LogRequests logs every request with log.HTTPRequest
func LogRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timeStart := time.Now()
		cw := &CapturingResponseWriter{ResponseWriter: w}
		h.ServeHTTP(cw, r)
		dur := time.Since(timeStart)
		ip := GetBestRemoteAddress(r)
		err := log.HTTPRequest(r, ip, cw.Code(), cw.Size, dur)
		log.IfErrf(err)
		log.Verbosef("%s %s %d %s\n", r.Method, r.URL.Path, cw.Code(), dur)
	})
}
