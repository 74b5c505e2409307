package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"taskbuddy-api/internal/config"

	"github.com/stretchr/testify/require"
)

// smallest valid PNG header plus IHDR chunk, enough for content sniffing
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
	0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x02, 0x00, 0x00, 0x00, 0x90, 0x77, 0x53, 0xde,
}

func newStore(t *testing.T, max int64) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(config.StorageConfig{
		Root:           t.TempDir(),
		PublicBaseURL:  "/files/",
		MaxUploadBytes: max,
	})
	require.NoError(t, err)
	s.newID = func() string { return "id1" }
	return s
}

func TestPut_StoresImageUnderUserNamespace(t *testing.T) {
	s := newStore(t, 1024)
	obj, err := s.Put(context.Background(), "u-1", "cat pic.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	require.Equal(t, "taskImages/u-1/id1-cat_pic.png", obj.Key)
	require.Equal(t, "/files/taskImages/u-1/id1-cat_pic.png", obj.URL)
	require.Equal(t, "image/png", obj.ContentType)

	data, err := os.ReadFile(filepath.Join(s.Root(), "taskImages", "u-1", "id1-cat_pic.png"))
	require.NoError(t, err)
	require.Equal(t, pngBytes, data)
}

func TestPut_RejectsNonImage(t *testing.T) {
	s := newStore(t, 1024)
	_, err := s.Put(context.Background(), "u-1", "notes.txt", strings.NewReader("hello world"))
	require.ErrorIs(t, err, ErrNotImage)
}

func TestPut_RejectsOversize(t *testing.T) {
	s := newStore(t, 8)
	_, err := s.Put(context.Background(), "u-1", "a.png", bytes.NewReader(pngBytes))
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestKey_SanitizesSegments(t *testing.T) {
	k, err := Key("../../etc", "x", "../passwd")
	require.NoError(t, err)
	require.Equal(t, "taskImages/etc/x-passwd", k)

	_, err = Key("", "x", "a.png")
	require.ErrorIs(t, err, ErrBadKey)
}

func TestDelete(t *testing.T) {
	s := newStore(t, 1024)
	obj, err := s.Put(context.Background(), "u-1", "a.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), obj.Key))
	_, err = os.Stat(filepath.Join(s.Root(), filepath.FromSlash(obj.Key)))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, s.Delete(context.Background(), obj.Key))
	require.ErrorIs(t, s.Delete(context.Background(), "../outside"), ErrBadKey)
}

func TestRelease(t *testing.T) {
	s := newStore(t, 1024)
	ctx := context.Background()
	obj, err := s.Put(ctx, "u-1", "a.png", bytes.NewReader(pngBytes))
	require.NoError(t, err)

	// foreign URLs are left alone
	require.NoError(t, s.Release(ctx, "https://example.com/a.png"))
	_, err = os.Stat(filepath.Join(s.Root(), filepath.FromSlash(obj.Key)))
	require.NoError(t, err)

	require.NoError(t, s.Release(ctx, obj.URL))
	_, err = os.Stat(filepath.Join(s.Root(), filepath.FromSlash(obj.Key)))
	require.True(t, os.IsNotExist(err))
}
