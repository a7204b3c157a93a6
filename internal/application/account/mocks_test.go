package account

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Zhima-Mochi/fooddelivery/internal/domain/blob"
	domoutbox "github.com/Zhima-Mochi/fooddelivery/internal/domain/outbox"
)

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Verify(plain, hash string) bool  { return hash == "hashed:"+plain }

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NewID() string { return fmt.Sprintf("id-%d", s.n.Add(1)) }

type fakeBlobs struct {
	mu        sync.Mutex
	n         int
	objects   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeBlobs() *fakeBlobs { return &fakeBlobs{objects: map[string][]byte{}} }

func (b *fakeBlobs) Upload(_ context.Context, r io.Reader, name string) (*blob.Object, error) {
	if b.uploadErr != nil {
		return nil, b.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.n++
	pid := fmt.Sprintf("blob-%d", b.n)
	b.objects[pid] = data
	return &blob.Object{URL: "/images/" + pid + "/" + name, PublicID: pid}, nil
}

func (b *fakeBlobs) Delete(_ context.Context, publicID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[publicID]; !ok {
		return errors.New("blob: unknown object")
	}
	delete(b.objects, publicID)
	b.deleted = append(b.deleted, publicID)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return t0 }
