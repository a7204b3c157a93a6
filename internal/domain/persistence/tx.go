// Package persistence declares the transaction boundary shared by all repositories.
package persistence

import "context"

// Transactor runs fn so that every repository call made with the ctx passed
// to fn commits or rolls back together. A non-nil error from fn rolls back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
