package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
	"github.com/Ananth-NQI/recovery-bot/internal/storage"
)

var errStoreDown = errors.New("store down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentMessage struct {
	To   string
	Text string
}

// fakeSender records messages instead of talking to a gateway.
type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	fail   map[string]bool
	panics map[string]bool
	gate   chan struct{}
}

func newFakeSender() *fakeSender {
	return &fakeSender{fail: map[string]bool{}, panics: map[string]bool{}}
}

func (f *fakeSender) SendText(_ context.Context, to, text string) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics[to] {
		panic("gateway exploded")
	}
	if f.fail[to] {
		return errors.New("gateway unavailable")
	}
	f.sent = append(f.sent, sentMessage{To: to, Text: text})
	return nil
}

func (f *fakeSender) Messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeSender) TextsTo(to string) []string {
	var out []string
	for _, m := range f.Messages() {
		if m.To == to {
			out = append(out, m.Text)
		}
	}
	return out
}

// fakeReceipts hands every printed order to a channel.
type fakeReceipts struct {
	printed chan models.Order
	err     error
}

func newFakeReceipts() *fakeReceipts {
	return &fakeReceipts{printed: make(chan models.Order, 16)}
}

func (f *fakeReceipts) Print(_ context.Context, order models.Order) error {
	f.printed <- order
	return f.err
}

// failingStore breaks selected record sets of a memory store.
type failingStore struct {
	*storage.MemoryStore
	failConsent bool
	failOrders  bool
}

func (s *failingStore) LoadConsent(ctx context.Context) (map[string]models.ConsentStatus, error) {
	if s.failConsent {
		return nil, errStoreDown
	}
	return s.MemoryStore.LoadConsent(ctx)
}

func (s *failingStore) SaveOrders(ctx context.Context, orders []models.Order) error {
	if s.failOrders {
		return errStoreDown
	}
	return s.MemoryStore.SaveOrders(ctx, orders)
}

// fakeShutdown records scheduled shutdowns.
type fakeShutdown struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (f *fakeShutdown) Schedule(after time.Duration, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, after)
}

func (f *fakeShutdown) Calls() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.calls...)
}
