package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kjk/wordtag/annotate"
	"github.com/kjk/wordtag/backup"
	"github.com/kjk/wordtag/client"
	"github.com/kjk/wordtag/config"
	"github.com/kjk/wordtag/httputil"
	"github.com/kjk/wordtag/log"
	"github.com/kjk/wordtag/view"
	"github.com/kjk/wordtag/vocab"
	"github.com/kjk/wordtag/web"
	"github.com/kjk/wordtag/wordstore"
)

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: wordtag <command> [flags]

commands:
  serve   run the annotation web server (default)
  list    print records from the store, a page at a time
  tag     send an update to a running server
`)
}

func main() {
	args := os.Args[1:]
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	var err error
	switch cmd {
	case "serve":
		err = cmdServe(args)
	case "list":
		err = cmdList(args, os.Stdout)
	case "tag":
		err = cmdTag(args)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func loadConfig(fs *flag.FlagSet, args []string) (*config.Config, error) {
	configPath := fs.String("config", "", "path to config file (json, yaml or toml)")
	storePath := fs.String("store", "", "path to the words JSON file, overrides store.path")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *storePath != "" {
		cfg.StorePath = *storePath
	}
	return cfg, nil
}

func newUpdater(cfg *config.Config, v *vocab.Vocabulary) *annotate.Updater {
	up := &annotate.Updater{}
	if cfg.Validate {
		up.Vocab = v
	}
	return up
}

func cmdServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "address to listen on, overrides server.address")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.ServerAddress = *addr
	}

	log.Init(&log.Config{Dir: cfg.LogDir, Verbose: cfg.LogVerbose})
	defer log.Close()

	v, err := cfg.Vocabulary()
	must(err)
	st, err := wordstore.New(cfg.StorePath)
	if err != nil {
		return err
	}
	// fail early if the store is not readable
	c, err := st.Load()
	if err != nil {
		return err
	}
	log.Logf("Loaded %d words from '%s'\n", len(c), st.Path())

	var bk *backup.Backuper
	if cfg.Backup.Enabled() {
		up, err := backup.NewMinio(&backup.Config{
			Access:   cfg.Backup.Access,
			Secret:   cfg.Backup.Secret,
			Bucket:   cfg.Backup.Bucket,
			Endpoint: cfg.Backup.Endpoint,
		})
		if err != nil {
			return fmt.Errorf("backup: %w", err)
		}
		bk = backup.New(up, cfg.Backup.Prefix, cfg.Backup.Delay)
		st.OnSaved = bk.OnSaved
		log.Logf("Backing up to bucket '%s' after %s\n", cfg.Backup.Bucket, cfg.Backup.Delay)
	}

	srv := &web.Server{
		Store:           st,
		Updater:         newUpdater(cfg, v),
		Vocab:           v,
		PageSize:        cfg.PageSize,
		BottomThreshold: cfg.BottomThreshold,
		LoadDelay:       cfg.LoadDelay,
	}
	log.Event("start", "store", st.Path(), "addr", cfg.ServerAddress)
	httpSrv := httputil.NewServer(cfg.ServerAddress, srv.Handler())
	err = httputil.ListenAndServe(httpSrv)
	if bk != nil {
		log.IfErrf(bk.Flush())
	}
	log.Logf("Server stopped\n")
	return err
}

func printPage(w io.Writer, p view.Page) {
	for i, rec := range p.Items {
		cats := strings.Join(rec.GrammaticalCategory, ",")
		fmt.Fprintf(w, "%6d  %-20s %8d  %-12s %s\n", p.Start+i+1, rec.Word, rec.Count, rec.Type(), cats)
	}
}

func cmdList(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	pos := fs.String("pos", "1", "1-based position to start at")
	pages := fs.Int("pages", 1, "number of pages to print, 0 for all")
	stats := fs.Bool("stats", false, "only print annotation statistics")
	cfg, err := loadConfig(fs, args)
	if err != nil {
		return err
	}
	st, err := wordstore.New(cfg.StorePath)
	if err != nil {
		return err
	}
	c, err := st.Load()
	if err != nil {
		return err
	}
	if *stats {
		s := c.Stats()
		fmt.Fprintf(w, "words: %d, with word type: %d, with categories: %d, categories total: %d\n", s.Total, s.WithType, s.WithCategory, s.TotalCategory)
		return nil
	}

	sess := view.NewSession(cfg.PageSize)
	p, err := sess.SearchByPosition(c, *pos)
	if err != nil {
		return err
	}
	printPage(w, p)
	for n := 1; *pages == 0 || n < *pages; n++ {
		if sess.Done(c) {
			break
		}
		printPage(w, sess.Next(c))
	}
	return nil
}

func cmdTag(args []string) error {
	fs := flag.NewFlagSet("tag", flag.ExitOnError)
	server := fs.String("server", "http://localhost:3000", "url of a running server")
	index := fs.Int("index", -1, "0-based index of the record")
	pos := fs.Int("pos", 0, "1-based position of the record, alternative to -index")
	wordType := fs.String("type", "", "set word type")
	add := fs.String("add", "", "comma-separated categories to add")
	remove := fs.String("remove", "", "comma-separated categories to remove")
	timeout := fs.Duration("timeout", 30*time.Second, "timeout for all requests")
	if err := fs.Parse(args); err != nil {
		return err
	}
	idx := *index
	if *pos > 0 {
		idx = *pos - 1
	}
	if idx < 0 {
		return fmt.Errorf("need -index or -pos")
	}

	var updates []annotate.Update
	if *wordType != "" {
		updates = append(updates, annotate.ScalarUpdate{Field: annotate.FieldWordType, Value: *wordType})
	}
	toggles := func(list string, isChecked bool) {
		for _, cat := range strings.Split(list, ",") {
			cat = strings.TrimSpace(cat)
			if cat == "" {
				continue
			}
			upd := annotate.SetToggleUpdate{
				Field:     annotate.FieldGrammaticalCategory,
				Category:  cat,
				IsChecked: isChecked,
			}
			updates = append(updates, upd)
		}
	}
	toggles(*add, true)
	toggles(*remove, false)
	if len(updates) == 0 {
		return fmt.Errorf("nothing to do, need -type, -add or -remove")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	cl := client.New(*server)
	for _, upd := range updates {
		if err := cl.Update(ctx, idx, upd); err != nil {
			return fmt.Errorf("%s: %w", upd, err)
		}
		fmt.Printf("%d: %s\n", idx, upd)
	}
	return nil
}
