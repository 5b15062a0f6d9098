package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Ananth-NQI/recovery-bot/internal/storage"
)

// ErrNoRecipients means a broadcast was skipped because nobody could receive it.
var ErrNoRecipients = errors.New("no eligible recipients")

// noRecipientsShutdownDelay is how long a deactivation with nobody to notify
// waits before stopping the process.
const noRecipientsShutdownDelay = time.Second

// BroadcastKind names the two broadcast variants.
type BroadcastKind string

const (
	BroadcastAlert        BroadcastKind = "alert"
	BroadcastDeactivation BroadcastKind = "deactivation"
)

// EstimateConfig drives the advisory completion estimate.
type EstimateConfig struct {
	PerContact   time.Duration
	SafetyBuffer time.Duration
	MaxWait      time.Duration
}

// DefaultEstimateConfig is 50ms per contact plus 5s, capped at 30 minutes.
func DefaultEstimateConfig() EstimateConfig {
	return EstimateConfig{
		PerContact:   50 * time.Millisecond,
		SafetyBuffer: 5 * time.Second,
		MaxWait:      30 * time.Minute,
	}
}

// EstimateCompletion returns min(count*PerContact + SafetyBuffer, MaxWait).
// It does not pace delivery; it only sizes log messages and the shutdown delay.
func EstimateCompletion(count int, cfg EstimateConfig) time.Duration {
	if count < 0 {
		count = 0
	}
	// compare in a way that cannot overflow for huge directories
	if cfg.PerContact > 0 && time.Duration(count) > (cfg.MaxWait-cfg.SafetyBuffer)/cfg.PerContact {
		return cfg.MaxWait
	}
	return min(time.Duration(count)*cfg.PerContact+cfg.SafetyBuffer, cfg.MaxWait)
}

// BroadcastPlan describes a broadcast that was handed to the background sender.
type BroadcastPlan struct {
	Kind     BroadcastKind
	Contacts int
	Eligible int
	Estimate time.Duration
}

// Shutdowner stops the process after a delay.
type Shutdowner interface {
	Schedule(after time.Duration, reason string)
}

// BroadcastDispatcher selects eligible contacts and sends broadcasts in the
// background. Trigger calls return as soon as the send is started; the
// outcome is only visible in the logs.
type BroadcastDispatcher struct {
	store    storage.Store
	consent  *ConsentLedger
	batch    *BatchSender
	flow     OrderFlow
	shutdown Shutdowner
	estimate EstimateConfig
	logger   *slog.Logger

	wg sync.WaitGroup
}

// NewBroadcastDispatcher wires a dispatcher. flow picks the instructions in
// the alert text; shutdown may be nil when the process must never stop itself.
func NewBroadcastDispatcher(
	store storage.Store,
	consent *ConsentLedger,
	batch *BatchSender,
	flow OrderFlow,
	shutdown Shutdowner,
	estimate EstimateConfig,
	logger *slog.Logger,
) *BroadcastDispatcher {
	return &BroadcastDispatcher{
		store:    store,
		consent:  consent,
		batch:    batch,
		flow:     flow,
		shutdown: shutdown,
		estimate: estimate,
		logger:   logger.With("component", "broadcast"),
	}
}

// TriggerAlert sends the contingency message to every eligible contact.
func (d *BroadcastDispatcher) TriggerAlert(ctx context.Context) (BroadcastPlan, error) {
	return d.dispatch(ctx, BroadcastAlert, ContingencyMessage(d.flow))
}

// TriggerDeactivation sends the all-clear message and schedules process
// shutdown once the estimated delivery time has passed, finished or not.
func (d *BroadcastDispatcher) TriggerDeactivation(ctx context.Context) (BroadcastPlan, error) {
	plan, err := d.dispatch(ctx, BroadcastDeactivation, DeactivationMessage())

	after := plan.Estimate
	if errors.Is(err, ErrNoRecipients) {
		after = noRecipientsShutdownDelay
	}
	if d.shutdown != nil {
		d.shutdown.Schedule(after, "recovery system deactivated")
	}
	return plan, err
}

// Wait blocks until every background send started so far has finished.
func (d *BroadcastDispatcher) Wait() {
	d.wg.Wait()
}

func (d *BroadcastDispatcher) dispatch(ctx context.Context, kind BroadcastKind, text string) (BroadcastPlan, error) {
	plan := BroadcastPlan{Kind: kind}

	contacts, err := d.store.LoadContacts(ctx)
	if err != nil {
		d.logger.Error("load contacts", "error", err)
	}
	plan.Contacts = len(contacts)
	if len(contacts) == 0 {
		d.logger.Warn("no contacts in directory", "kind", kind)
		return plan, fmt.Errorf("%s broadcast: %w", kind, ErrNoRecipients)
	}

	eligible := d.consent.Eligible(ctx, contacts)
	plan.Eligible = len(eligible)
	if len(eligible) == 0 {
		d.logger.Warn("every contact opted out", "kind", kind, "contacts", len(contacts))
		return plan, fmt.Errorf("%s broadcast: %w", kind, ErrNoRecipients)
	}

	plan.Estimate = EstimateCompletion(len(eligible), d.estimate)
	opts := d.batch.Options()
	d.logger.Info("broadcast started",
		"kind", kind,
		"contacts", len(contacts),
		"eligible", len(eligible),
		"excluded", len(contacts)-len(eligible),
		"batch_size", opts.Size,
		"batch_delay", opts.Delay,
		"estimate", plan.Estimate,
	)

	// the send outlives the request that triggered it
	bg := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("broadcast panicked", "kind", kind, "panic", r)
			}
		}()
		result := d.batch.Send(bg, eligible, text)
		d.logger.Info("broadcast finished",
			"kind", kind, "sent", result.Sent, "failed", result.Failed, "batches", result.Batches)
	}()

	return plan, nil
}
