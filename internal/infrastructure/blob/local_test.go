package blob

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestUploadResizesWideImages(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "http://cdn/uploads/", 100)
	require.NoError(t, err)

	obj, err := s.Upload(context.Background(), pngOf(t, 400, 200), "wide.png")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/uploads/"+obj.PublicID+".jpg", obj.URL)

	f, err := os.Open(filepath.Join(dir, obj.PublicID+".jpg"))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestUploadKeepsNarrowImages(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "", 0)
	require.NoError(t, err)

	obj, err := s.Upload(context.Background(), pngOf(t, 40, 30), "small.png")
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, obj.PublicID+".jpg"))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 40, cfg.Width)
}

func TestUploadRejectsNonImages(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), "", 0)
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), strings.NewReader("not an image"), "x.txt")
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "", 0)
	require.NoError(t, err)
	ctx := context.Background()

	obj, err := s.Upload(ctx, pngOf(t, 10, 10), "a.png")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, obj.PublicID))
	_, err = os.Stat(filepath.Join(dir, obj.PublicID+".jpg"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, obj.PublicID))
	assert.ErrorIs(t, s.Delete(ctx, "../etc/passwd"), errs.ErrValidation)
}
