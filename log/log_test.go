package log

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kjk/wordtag/require"
)

func TestFormatEvent(t *testing.T) {
	ts := time.UnixMilli(1700000000123)
	d, err := FormatEvent("update", ts, "index", 3, "field", "wordType")
	require.NoError(t, err)
	s := string(d)
	lines := strings.SplitN(s, "\n", 2)
	require.True(t, strings.HasPrefix(lines[0], ":event update 1700000000123 "))
	require.True(t, strings.Contains(lines[1], "index"))
	require.True(t, strings.Contains(lines[1], "wordType"))
	require.True(t, strings.HasSuffix(s, "\n"))

	d, err = FormatEvent("start", ts)
	require.NoError(t, err)
	require.Equal(t, ":event start 1700000000123 0\n", string(d))

	_, err = FormatEvent("bad", ts, "index")
	require.Error(t, err)
	_, err = FormatEvent("bad", ts, 3, "index")
	require.Error(t, err)
}

func TestWriteDaily(t *testing.T) {
	dir := t.TempDir()
	w := NewWriteDaily(dir)
	require.NoError(t, w.WriteString("one\n"))
	require.NoError(t, w.WriteString("two\n"))
	require.NoError(t, w.Close())

	name := time.Now().UTC().Format("2006-01-02") + ".txt"
	d, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	require.Equal(t, "one\ntwo\n", string(d))

	var nilW *WriteDaily
	require.NoError(t, nilW.WriteString("ignored"))
	require.NoError(t, nilW.Close())
}

func TestLogfAndInit(t *testing.T) {
	var buf bytes.Buffer
	Stdout = &buf
	defer func() {
		Close()
		Stdout = os.Stdout
		Verbose = false
	}()

	dir := t.TempDir()
	Init(&Config{Dir: dir})
	Logf("hello %d\n", 5)
	Verbosef("hidden\n")
	Event("saved", "records", 3)
	require.True(t, IfErrf(os.ErrNotExist))
	require.False(t, IfErrf(nil))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "hello 5\n"))
	require.False(t, strings.Contains(out, "hidden"))
	require.True(t, strings.Contains(out, "log_test.go"))

	Close()
	name := time.Now().UTC().Format("2006-01-02") + ".txt"
	d, err := os.ReadFile(filepath.Join(dir, "log", name))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(d), "hello 5\n"))
	d, err = os.ReadFile(filepath.Join(dir, "events", name))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(d), ":event saved "))
}

func TestHTTPRequestJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/words?start=20", nil)
	r.Header.Set("User-Agent", "test")
	d, err := HTTPRequestJSON(r, "1.2.3.4", 200, 512, 1500*time.Microsecond)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(d, &m))
	require.Equal(t, "POST", m["method"])
	require.Equal(t, "/api/words", m["url"])
	require.Equal(t, "start=20", m["query"])
	require.Equal(t, "1.2.3.4", m["ip"])
	require.Equal(t, float64(200), m["code"])
	require.Equal(t, 1.5, m["dur"])
	require.Equal(t, "test", m["ua"])
}
