package blob

import (
	"context"
	"io"
)

// Object identifies an uploaded blob. PublicID is what Delete takes.
type Object struct {
	URL      string
	PublicID string
}

type Store interface {
	Upload(ctx context.Context, r io.Reader, name string) (*Object, error)
	Delete(ctx context.Context, publicID string) error
}
