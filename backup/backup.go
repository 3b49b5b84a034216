// Package backup uploads snapshots of the word store to S3-compatible
// storage. Uploads happen some time after a save so that a burst of edits
// results in a single upload of the latest state.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/kjk/wordtag/log"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores data under a remote path
type Uploader interface {
	UploadData(remotePath string, d []byte) error
}

type Config struct {
	Access   string
	Secret   string
	Bucket   string
	Endpoint string
	Region   string
	// if true, use http instead of https
	Insecure bool
}

// MinioUploader uploads to a bucket with minio client
type MinioUploader struct {
	Client *minio.Client
	Bucket string
}

func ctx() context.Context {
	return context.Background()
}

func NewMinio(config *Config) (*MinioUploader, error) {
	if config == nil {
		return nil, errors.New("must provide config")
	}
	c := config
	if c.Access == "" || c.Secret == "" || c.Bucket == "" || c.Endpoint == "" {
		return nil, errors.New("must provide all fields in config")
	}
	mc, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.Access, c.Secret, ""),
		Region: c.Region,
		Secure: !c.Insecure,
	})
	if err != nil {
		return nil, err
	}
	found, err := mc.BucketExists(ctx(), c.Bucket)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("bucket '%s' doesn't exist", c.Bucket)
	}
	return &MinioUploader{
		Client: mc,
		Bucket: c.Bucket,
	}, nil
}

func (m *MinioUploader) UploadData(remotePath string, d []byte) error {
	opts := minio.PutObjectOptions{
		ContentType:     "application/json",
		ContentEncoding: "br",
	}
	r := bytes.NewReader(d)
	_, err := m.Client.PutObject(ctx(), m.Bucket, remotePath, r, int64(len(d)), opts)
	return err
}

func Compress(d []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := w.Write(d); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func Decompress(d []byte) ([]byte, error) {
	return io.ReadAll(brotli.NewReader(bytes.NewReader(d)))
}

// RemotePath returns where a snapshot of storePath taken at t is stored:
// <prefix>/2024/10-06/words-2024-10-06_15-04-05.json.br
func RemotePath(prefix string, storePath string, t time.Time) string {
	name := filepath.Base(storePath)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if ext == "" {
		ext = ".json"
	}
	t = t.UTC()
	name = fmt.Sprintf("%s/%s/%s-%s%s.br", t.Format("2006"), t.Format("01-02"), base, t.Format("2006-01-02_15-04-05"), ext)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Backuper uploads the latest saved snapshot, debounced
type Backuper struct {
	Uploader Uploader
	Prefix   string

	debouncer Debouncer
	mu        sync.Mutex
	path      string
	pending   []byte
	now       func() time.Time
}

func New(up Uploader, prefix string, delay time.Duration) *Backuper {
	return &Backuper{
		Uploader:  up,
		Prefix:    prefix,
		debouncer: Debouncer{Timeout: delay},
		now:       time.Now,
	}
}

// OnSaved remembers a snapshot and schedules its upload.
// Meant to be wordstore.Store.OnSaved.
func (b *Backuper) OnSaved(path string, d []byte) {
	b.mu.Lock()
	b.path = path
	b.pending = append([]byte(nil), d...)
	b.mu.Unlock()
	b.debouncer.Debounce(b.uploadLogged)
}

func (b *Backuper) uploadLogged() {
	timeStart := time.Now()
	remotePath, err := b.upload()
	if err != nil {
		log.Errorf("backup upload failed with '%s'\n", err)
		return
	}
	if remotePath != "" {
		log.EventWithDuration("backup", time.Since(timeStart), "path", remotePath)
	}
}

// upload sends the pending snapshot, if any
func (b *Backuper) upload() (string, error) {
	b.mu.Lock()
	d := b.pending
	path := b.path
	b.pending = nil
	b.mu.Unlock()
	if d == nil {
		return "", nil
	}
	dc, err := Compress(d)
	if err != nil {
		return "", err
	}
	remotePath := RemotePath(b.Prefix, path, b.now())
	if err = b.Uploader.UploadData(remotePath, dc); err != nil {
		return "", err
	}
	return remotePath, nil
}

// Flush uploads the pending snapshot without waiting, e.g. on shutdown
func (b *Backuper) Flush() error {
	b.debouncer.Cancel()
	_, err := b.upload()
	return err
}
