package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"taskbuddy-api/internal/config"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrTooLarge = errors.New("file exceeds the upload limit")
	ErrNotImage = errors.New("file is not an image")
	ErrBadKey   = errors.New("invalid blob key")
)

// Object describes a stored attachment.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// BlobStore stores task attachments and hands back durable URLs.
type BlobStore interface {
	Put(ctx context.Context, userID, filename string, r io.Reader) (Object, error)
	Delete(ctx context.Context, key string) error
	// Release deletes the blob behind a URL returned by Put. Other URLs are ignored.
	Release(ctx context.Context, url string) error
}

// LocalStore keeps blobs on the local filesystem under Root.
type LocalStore struct {
	root     string
	baseURL  string
	maxBytes int64
	newID    func() string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(cfg config.StorageConfig) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &LocalStore{
		root:     cfg.Root,
		baseURL:  strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxBytes: cfg.MaxUploadBytes,
		newID:    uuid.NewString,
	}, nil
}

// Root is the directory blobs are written to.
func (s *LocalStore) Root() string { return s.root }

// MaxBytes is the upload size limit.
func (s *LocalStore) MaxBytes() int64 { return s.maxBytes }

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func cleanSegment(s string) string {
	s = unsafeChars.ReplaceAllString(filepath.Base(s), "_")
	s = strings.Trim(s, "._")
	return s
}

// Key returns the namespaced key for a new upload:
// taskImages/{userID}/{id}-{filename}.
func Key(userID, id, filename string) (string, error) {
	u := cleanSegment(userID)
	if u == "" {
		return "", fmt.Errorf("%w: empty user id", ErrBadKey)
	}
	name := cleanSegment(filename)
	if name == "" {
		name = "upload"
	}
	return path.Join("taskImages", u, id+"-"+name), nil
}

// Put reads the whole file, checks it is an image within the size limit and
// writes it under a fresh key.
func (s *LocalStore) Put(ctx context.Context, userID, filename string, r io.Reader) (Object, error) {
	key, err := Key(userID, s.newID(), filename)
	if err != nil {
		return Object{}, err
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Object{}, fmt.Errorf("read upload: %w", err)
	}
	if n > s.maxBytes {
		return Object{}, ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	mt := mimetype.Detect(buf.Bytes())
	if !strings.HasPrefix(mt.String(), "image/") {
		return Object{}, fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
	}

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, fmt.Errorf("create blob dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return Object{}, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return Object{}, fmt.Errorf("store blob: %w", err)
	}

	return Object{
		Key:         key,
		URL:         s.baseURL + "/" + key,
		ContentType: mt.String(),
		Size:        n,
	}, nil
}

// Delete removes a blob. Missing blobs are not an error.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	clean := path.Clean("/" + key)
	if !strings.HasPrefix(clean, "/taskImages/") {
		return ErrBadKey
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// Release implements BlobStore.Release.
func (s *LocalStore) Release(ctx context.Context, url string) error {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return nil
	}
	return s.Delete(ctx, strings.TrimPrefix(url, prefix))
}

var _ BlobStore = (*LocalStore)(nil)
