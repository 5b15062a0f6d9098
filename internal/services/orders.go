package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
	"github.com/Ananth-NQI/recovery-bot/internal/storage"
	"github.com/Ananth-NQI/recovery-bot/internal/utils"
)

// ErrEmptyOrder is returned when an order has no item text.
var ErrEmptyOrder = errors.New("order has no item")

// OrderLogger appends finalized orders to the order log and hands them to
// the receipt sink.
type OrderLogger struct {
	store    storage.Store
	receipts ReceiptSink
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrderLogger creates an order logger. receipts may be nil.
func NewOrderLogger(store storage.Store, receipts ReceiptSink, logger *slog.Logger) *OrderLogger {
	return &OrderLogger{
		store:    store,
		receipts: receipts,
		logger:   logger.With("component", "orders"),
		now:      time.Now,
	}
}

// LogOrder persists an order built from draft and starts receipt printing
// in the background. The order is saved before printing starts; printing
// failures are only logged.
func (o *OrderLogger) LogOrder(ctx context.Context, from string, draft models.OrderDraft) (models.Order, error) {
	if draft.Item == "" {
		return models.Order{}, ErrEmptyOrder
	}

	orders, err := o.store.LoadOrders(ctx)
	if err != nil {
		o.logger.Error("load orders", "error", err)
		orders = []models.Order{}
	}

	created := o.now()
	id := created.UnixMilli()
	if n := len(orders); n > 0 && orders[n-1].ID >= id {
		id = orders[n-1].ID + 1
	}

	number := utils.NormalizeNumber(from)
	order := models.Order{
		ID:        id,
		From:      from,
		Number:    number,
		Name:      o.lookupName(ctx, number),
		Item:      draft.Item,
		Address:   optional(draft.Address),
		Payment:   draft.Payment,
		CreatedAt: created.UTC(),
	}
	if draft.Payment == models.PaymentCash {
		order.Change = optional(draft.Change)
	}

	orders = append(orders, order)
	if err := o.store.SaveOrders(ctx, orders); err != nil {
		return models.Order{}, fmt.Errorf("save order: %w", err)
	}

	attrs := []any{"order", order.ID, "item", order.Item, "payment", order.Payment}
	if order.Change != nil {
		attrs = append(attrs, "change", *order.Change)
	}
	o.logger.Info("order logged", attrs...)

	if o.receipts != nil {
		go func(ctx context.Context) {
			if err := o.receipts.Print(ctx, order); err != nil {
				o.logger.Error("print receipt", "order", order.ID, "error", err)
			}
		}(context.WithoutCancel(ctx))
	}

	return order, nil
}

// Orders returns the full order log.
func (o *OrderLogger) Orders(ctx context.Context) ([]models.Order, error) {
	return o.store.LoadOrders(ctx)
}

func (o *OrderLogger) lookupName(ctx context.Context, number string) *string {
	contacts, err := o.store.LoadContacts(ctx)
	if err != nil {
		o.logger.Warn("load contacts for name lookup", "error", err)
		return nil
	}
	for _, c := range contacts {
		if c.Matches(number) && c.Name != "" {
			name := c.Name
			return &name
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
