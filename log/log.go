package log

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/toon-format/toon-go"
)

var (
	log       *WriteDaily
	httpLog   *WriteDaily
	eventsLog *WriteDaily

	// if true, Verbosef() will log messages
	Verbose bool

	// where Logf() prints, in addition to the log file
	Stdout io.Writer = os.Stdout
)

// WriteDaily appends to <Dir>/YYYY-MM-DD.txt, switching files at midnight UTC
type WriteDaily struct {
	Dir         string
	currentDate int // YYYYMMDD format
	file        *os.File
	mu          sync.Mutex
}

func NewWriteDaily(dir string) *WriteDaily {
	return &WriteDaily{
		Dir: dir,
	}
}

func dayFromTime(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// Write appends d to today's file, creating it if needed.
// It's safe to call on nil receiver.
func (w *WriteDaily) Write(d []byte) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now().UTC()
	today := dayFromTime(now)
	if w.file != nil && w.currentDate != today {
		if err := w.close(); err != nil {
			return err
		}
	}
	if w.file == nil {
		if err := os.MkdirAll(w.Dir, 0755); err != nil {
			return err
		}
		path := filepath.Join(w.Dir, now.Format("2006-01-02")+".txt")
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		w.file = f
		w.currentDate = today
	}
	_, err := w.file.Write(d)
	return err
}

func (w *WriteDaily) WriteString(s string) error {
	return w.Write([]byte(s))
}

func (w *WriteDaily) close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	w.currentDate = 0
	return err
}

// Close is safe to call on nil receiver
func (w *WriteDaily) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file != nil {
		_ = w.file.Sync()
	}
	return w.close()
}

type Config struct {
	// each log kind (regular, events, http) goes to its own sub-directory
	Dir     string
	Verbose bool
}

// Init enables logging to files in config.Dir.
// Without Init, Logf() only prints to Stdout.
func Init(config *Config) {
	dir := config.Dir
	Verbose = config.Verbose
	log = NewWriteDaily(filepath.Join(dir, "log"))
	// files are created on first write so if the app doesn't
	// log events or http requests, no files are created
	eventsLog = NewWriteDaily(filepath.Join(dir, "events"))
	httpLog = NewWriteDaily(filepath.Join(dir, "http"))
}

func closeWriteDaily(wd **WriteDaily) {
	if *wd == nil {
		return
	}
	(*wd).Close()
	*wd = nil
}

func Close() {
	closeWriteDaily(&log)
	closeWriteDaily(&eventsLog)
	closeWriteDaily(&httpLog)
}

func Logf(s string, args ...any) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	fmt.Fprint(Stdout, s)
	log.WriteString(s)
}

func Verbosef(format string, args ...any) {
	if !Verbose {
		return
	}
	Logf(format, args...)
}

func GetCallstack(skip int) string {
	var callers [32]uintptr
	n := runtime.Callers(skip+2, callers[:])
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(callers[:n])
	var cs []string
	for {
		frame, more := frames.Next()
		cs = append(cs, frame.File+":"+strconv.Itoa(frame.Line))
		if !more {
			break
		}
	}
	return strings.Join(cs, "\n")
}

// Errorf logs an error message along with the callstack
func Errorf(s string, args ...any) {
	if len(args) > 0 {
		s = fmt.Sprintf(s, args...)
	}
	cs := GetCallstack(1)
	Logf("%s\n%s\n", s, cs)
}

// if err != nil, log and return true
// IfErrf(err) => logs err.Error()
// IfErrf(err, "saving failed: %v", err) => logs formatted message
func IfErrf(err error, a ...any) bool {
	if err == nil {
		return false
	}
	if len(a) == 0 {
		Errorf("%s", err.Error())
		return true
	}
	s, ok := a[0].(string)
	if !ok {
		s = fmt.Sprintf("%v", a[0])
	}
	if len(a) > 1 {
		s = fmt.Sprintf(s, a[1:]...)
	}
	Errorf("%s", s)
	return true
}

// FormatEvent serializes an event as a header line followed by
// toon-encoded key/value pairs:
//
//	:event <name> <unix ms> <len>
//	<toon>
func FormatEvent(name string, t time.Time, vals ...any) ([]byte, error) {
	n := len(vals)
	if n%2 != 0 {
		return nil, fmt.Errorf("odd number of values (%d) for event '%s'", n, name)
	}
	var d []byte
	if n > 0 {
		m := map[string]any{}
		for i := 0; i < n; i += 2 {
			k, ok := vals[i].(string)
			if !ok {
				return nil, fmt.Errorf("key %v of event '%s' is not a string", vals[i], name)
			}
			m[k] = vals[i+1]
		}
		var err error
		d, err = toon.Marshal(m)
		if err != nil {
			return nil, err
		}
	}
	hdr := fmt.Sprintf(":event %s %d %d\n", name, t.UnixMilli(), len(d))
	res := append([]byte(hdr), d...)
	if len(d) > 0 && d[len(d)-1] != '\n' {
		res = append(res, '\n')
	}
	return res, nil
}

// Event records a named event with key/value pairs
// e.g. Event("update", "index", 3, "field", "wordType")
func Event(name string, vals ...any) {
	d, err := FormatEvent(name, time.Now().UTC(), vals...)
	if err != nil {
		Errorf("log.Event: %s", err)
		return
	}
	Verbosef("%s", d)
	eventsLog.Write(d)
}

func EventWithDuration(name string, dur time.Duration, vals ...any) {
	vals = append(vals, "durmicro", dur.Microseconds())
	Event(name, vals...)
}

// HTTPRequestJSON returns one line of JSON describing a served request
func HTTPRequestJSON(r *http.Request, ip string, code int, nWritten int64, dur time.Duration) ([]byte, error) {
	rawQuery := r.URL.RawQuery
	if len(rawQuery) > 128 {
		rawQuery = rawQuery[:128]
	}
	entry := map[string]any{
		"ts":     time.Now().UTC().Unix(),
		"method": r.Method,
		"url":    r.URL.Path,
		"query":  rawQuery,
		"ip":     ip,
		"code":   code,
		"size":   nWritten,
		// milliseconds with decimal precision
		"dur": float64(dur.Microseconds()) / 1000.0,
	}
	if ua := r.Header.Get("User-Agent"); ua != "" {
		entry["ua"] = ua
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		entry["content_type"] = ct
	}

	buf := &strings.Builder{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// Encode adds a newline
	if err := enc.Encode(entry); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}

func HTTPRequest(r *http.Request, ip string, code int, nWritten int64, dur time.Duration) error {
	d, err := HTTPRequestJSON(r, ip, code, nWritten, dur)
	if err != nil {
		return err
	}
	return httpLog.Write(d)
}
