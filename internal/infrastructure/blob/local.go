// Package blob stores uploaded images on the local filesystem.
package blob

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	domblob "github.com/Zhima-Mochi/fooddelivery/internal/domain/blob"
	"github.com/Zhima-Mochi/fooddelivery/internal/domain/errs"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

const (
	DefaultMaxWidth = 800
	jpegQuality     = 80
)

var ErrUnsupportedImage = errs.Validation("Unsupported image format. Only PNG, JPG, JPEG are allowed.")

// LocalStore re-encodes every upload as JPEG under dir, shrinking images
// wider than maxWidth. The public id is the file's uuid.
type LocalStore struct {
	dir      string
	baseURL  string
	maxWidth uint
}

func NewLocalStore(dir, baseURL string, maxWidth uint) (*LocalStore, error) {
	if maxWidth == 0 {
		maxWidth = DefaultMaxWidth
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), maxWidth: maxWidth}, nil
}

var _ domblob.Store = (*LocalStore)(nil)

func (s *LocalStore) Upload(ctx context.Context, r io.Reader, _ string) (*domblob.Object, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, ErrUnsupportedImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if uint(img.Bounds().Dx()) > s.maxWidth {
		img = resize.Resize(s.maxWidth, 0, img, resize.Lanczos3)
	}

	id := uuid.NewString()
	filename := id + ".jpg"
	out, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("blob: create file: %w", err)
	}
	defer out.Close()
	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		_ = os.Remove(out.Name())
		return nil, fmt.Errorf("blob: encode: %w", err)
	}
	return &domblob.Object{URL: s.baseURL + "/" + filename, PublicID: id}, nil
}

// Delete is idempotent; unknown ids are ignored.
func (s *LocalStore) Delete(_ context.Context, publicID string) error {
	if _, err := uuid.Parse(publicID); err != nil {
		return errs.Validation("Invalid image id")
	}
	err := os.Remove(filepath.Join(s.dir, publicID+".jpg"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blob: delete: %w", err)
	}
	return nil
}
