package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
)

// MessageSender delivers one text message to one WhatsApp recipient.
type MessageSender interface {
	SendText(ctx context.Context, to, text string) error
}

// ErrNoRecipient is reported for directory entries without any address.
var ErrNoRecipient = errors.New("contact has no number or chat id")

// BatchOptions paces a broadcast: Size messages go out together, then the
// sender waits Delay before the next chunk.
type BatchOptions struct {
	Size  int
	Delay time.Duration
}

// DefaultBatchOptions matches the gateway's tolerated rate.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{Size: 5, Delay: 10 * time.Second}
}

// BatchResult counts the outcome of one broadcast.
type BatchResult struct {
	Total   int
	Sent    int
	Failed  int
	Batches int
}

// BatchSender sends one text to many contacts in rate-limited chunks.
type BatchSender struct {
	sender MessageSender
	opts   BatchOptions
	logger *slog.Logger
}

// NewBatchSender creates a batch sender. A non-positive size falls back to the default.
func NewBatchSender(sender MessageSender, opts BatchOptions, logger *slog.Logger) *BatchSender {
	if opts.Size < 1 {
		opts.Size = DefaultBatchOptions().Size
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	return &BatchSender{sender: sender, opts: opts, logger: logger.With("component", "batch")}
}

// Options returns the pacing in use.
func (b *BatchSender) Options() BatchOptions {
	return b.opts
}

// Send delivers text to every contact. Messages inside a chunk are sent
// concurrently; a failed recipient is counted and the batch goes on.
// Cancelling ctx stops before the next chunk.
func (b *BatchSender) Send(ctx context.Context, contacts []models.Contact, text string) BatchResult {
	result := BatchResult{Total: len(contacts)}
	var sent, failed atomic.Int64

	b.logger.Info("batch send started",
		"recipients", len(contacts), "batch_size", b.opts.Size, "delay", b.opts.Delay)

	for start := 0; start < len(contacts); start += b.opts.Size {
		end := min(start+b.opts.Size, len(contacts))
		chunk := contacts[start:end]
		result.Batches++

		b.logger.Debug("sending batch", "batch", result.Batches, "messages", len(chunk))

		var g errgroup.Group
		for _, contact := range chunk {
			contact := contact
			g.Go(func() error {
				if err := b.sendOne(ctx, contact, text); err != nil {
					failed.Add(1)
					b.logger.Warn("broadcast message failed", "to", contact.DisplayName(), "error", err)
					return nil
				}
				sent.Add(1)
				b.logger.Debug("broadcast message sent", "to", contact.DisplayName())
				return nil
			})
		}
		_ = g.Wait()

		if end >= len(contacts) {
			break
		}
		select {
		case <-ctx.Done():
			b.logger.Warn("batch send interrupted", "remaining", len(contacts)-end, "error", ctx.Err())
			result.Sent, result.Failed = int(sent.Load()), int(failed.Load())
			return result
		case <-time.After(b.opts.Delay):
		}
	}

	result.Sent, result.Failed = int(sent.Load()), int(failed.Load())
	b.logger.Info("batch send finished",
		"sent", result.Sent, "failed", result.Failed, "batches", result.Batches)
	return result
}

// sendOne delivers to a single contact. A panicking gateway counts as a
// failed send instead of taking the process down.
func (b *BatchSender) sendOne(ctx context.Context, contact models.Contact, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("send panicked: %v", r)
		}
	}()
	recipient := contact.Recipient()
	if recipient == "" {
		return ErrNoRecipient
	}
	return b.sender.SendText(ctx, recipient, text)
}
