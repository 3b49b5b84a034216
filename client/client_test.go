package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/kjk/wordtag/annotate"
	"github.com/kjk/wordtag/require"
	"github.com/kjk/wordtag/view"
	"github.com/kjk/wordtag/vocab"
	"github.com/kjk/wordtag/web"
	"github.com/kjk/wordtag/wordstore"
)

func startServer(t *testing.T) (*Client, *wordstore.Store) {
	st, err := wordstore.New(filepath.Join(t.TempDir(), "words.json"))
	require.NoError(t, err)
	c := wordstore.Collection{
		{Word: "the", Count: 120},
		{Word: "cats", Count: 7, GrammaticalCategory: []string{"plural"}},
		{Word: "ran", Count: 3},
	}
	require.NoError(t, st.Save(c))
	v := vocab.Default()
	srv := &web.Server{
		Store:    st,
		Updater:  &annotate.Updater{Vocab: v},
		Vocab:    v,
		PageSize: 2,
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL), st
}

func TestClientUpdates(t *testing.T) {
	ctx := context.Background()
	cl, st := startServer(t)

	require.NoError(t, cl.SetWordType(ctx, 1, "noun"))
	require.NoError(t, cl.SetCategory(ctx, 1, "countable", true))
	require.NoError(t, cl.SetCategory(ctx, 1, "plural", false))

	c, err := st.Load()
	require.NoError(t, err)
	require.Equal(t, "noun", c[1].WordType)
	require.Equal(t, []string{"countable"}, c[1].GrammaticalCategory)

	err = cl.SetWordType(ctx, 3, "noun")
	require.True(t, errors.Is(err, ErrUpdateFailed))
	err = cl.SetCategory(ctx, 0, "not_a_category", true)
	require.True(t, errors.Is(err, ErrUpdateFailed))
}

func TestClientPaging(t *testing.T) {
	ctx := context.Background()
	cl, _ := startServer(t)

	page, err := cl.Words(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.True(t, page.HasMore)
	page, err = cl.Words(ctx, page.Next, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "ran", page.Items[0].Word)
	require.False(t, page.HasMore)

	page, err = cl.Position(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, 1, page.Start)
	require.Equal(t, "cats", page.Items[0].Word)

	_, err = cl.Position(ctx, "4")
	require.True(t, errors.Is(err, view.ErrInvalidPosition))
}

func TestClientVocab(t *testing.T) {
	cl, _ := startServer(t)
	v, err := cl.Vocab(context.Background())
	require.NoError(t, err)
	require.True(t, v.IsWordType("verb"))
	require.True(t, v.IsCategory("gerund"))
}
