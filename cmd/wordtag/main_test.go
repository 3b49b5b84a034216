package main

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kjk/wordtag/require"
	"github.com/kjk/wordtag/view"
	"github.com/kjk/wordtag/wordstore"
)

func writeStore(t *testing.T, n int) string {
	path := filepath.Join(t.TempDir(), "words.json")
	st, err := wordstore.New(path)
	require.NoError(t, err)
	var c wordstore.Collection
	for i := range n {
		c = append(c, &wordstore.WordRecord{Word: fmt.Sprintf("word%02d", i), Count: 100 - i})
	}
	c[0].WordType = "article"
	c[0].GrammaticalCategory = []string{"definite_article"}
	require.NoError(t, st.Save(c))
	return path
}

func countLines(s string) int {
	return len(strings.Split(strings.TrimSpace(s), "\n"))
}

func TestListPages(t *testing.T) {
	path := writeStore(t, 45)
	var buf bytes.Buffer
	require.NoError(t, cmdList([]string{"-store", path}, &buf))
	require.Equal(t, 20, countLines(buf.String()))
	require.True(t, strings.Contains(buf.String(), "definite_article"))

	buf.Reset()
	require.NoError(t, cmdList([]string{"-store", path, "-pos", "21", "-pages", "0"}, &buf))
	out := buf.String()
	require.Equal(t, 25, countLines(out))
	require.True(t, strings.HasPrefix(strings.TrimSpace(out), "21  word20"))

	buf.Reset()
	require.NoError(t, cmdList([]string{"-store", path, "-stats"}, &buf))
	require.True(t, strings.HasPrefix(buf.String(), "words: 45, with word type: 1, with categories: 1"))
}

func TestListInvalidPosition(t *testing.T) {
	path := writeStore(t, 5)
	var buf bytes.Buffer
	err := cmdList([]string{"-store", path, "-pos", "6"}, &buf)
	require.True(t, errors.Is(err, view.ErrInvalidPosition))
	require.Equal(t, "", buf.String())

	err = cmdList([]string{"-store", filepath.Join(t.TempDir(), "missing.json")}, &buf)
	require.True(t, errors.Is(err, wordstore.ErrStorageRead))
}

func TestTagNeedsArgs(t *testing.T) {
	require.Error(t, cmdTag([]string{"-type", "verb"}))
	require.Error(t, cmdTag([]string{"-index", "1"}))
}
