package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
	"github.com/Ananth-NQI/recovery-bot/internal/storage"
)

func TestOrderLogger_AssignsMonotonicIDs(t *testing.T) {
	ctx := context.Background()
	logger := NewOrderLogger(storage.NewMemoryStore(), nil, discardLogger())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	logger.now = func() time.Time { return now }

	first, err := logger.LogOrder(ctx, customer, models.OrderDraft{Item: "X", Payment: models.PaymentPix})
	require.NoError(t, err)
	second, err := logger.LogOrder(ctx, customer, models.OrderDraft{Item: "Y", Payment: models.PaymentPix})
	require.NoError(t, err)

	assert.Equal(t, now.UnixMilli(), first.ID)
	assert.Equal(t, first.ID+1, second.ID)
	assert.Equal(t, now, first.CreatedAt)

	orders, err := logger.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "X", orders[0].Item)
	assert.Equal(t, "Y", orders[1].Item)
}

func TestOrderLogger_ResolvesNameAndOptionalFields(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.SetContacts([]models.Contact{
		{Number: "5511000000000@s.whatsapp.net", Name: "Outro"},
		{Number: customer, Name: "Maria"},
	})
	logger := NewOrderLogger(store, nil, discardLogger())

	order, err := logger.LogOrder(ctx, customer, models.OrderDraft{
		Item:    "X",
		Payment: models.PaymentPix,
		Change:  "ignored for pix",
	})
	require.NoError(t, err)

	require.NotNil(t, order.Name)
	assert.Equal(t, "Maria", *order.Name)
	assert.Nil(t, order.Address)
	assert.Nil(t, order.Change)
}

func TestOrderLogger_UnknownContactHasNoName(t *testing.T) {
	logger := NewOrderLogger(storage.NewMemoryStore(), nil, discardLogger())

	order, err := logger.LogOrder(context.Background(), customer, models.OrderDraft{Item: "X", Payment: models.PaymentPix})
	require.NoError(t, err)

	assert.Nil(t, order.Name)
	assert.Equal(t, "Cliente", order.CustomerName())
}

func TestOrderLogger_RejectsEmptyItem(t *testing.T) {
	logger := NewOrderLogger(storage.NewMemoryStore(), nil, discardLogger())

	_, err := logger.LogOrder(context.Background(), customer, models.OrderDraft{Payment: models.PaymentPix})
	require.ErrorIs(t, err, ErrEmptyOrder)
}

func TestOrderLogger_UnreadableLogIsNotLost(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	broken := []byte(`[{"id":1,"item":"X"},{"id":2,`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pedidos_refazer.json"), broken, 0o644))
	logger := NewOrderLogger(storage.NewFileStore(dir, storage.FileNames{}), nil, discardLogger())

	_, err := logger.LogOrder(ctx, customer, models.OrderDraft{Item: "Z", Payment: models.PaymentPix})
	require.NoError(t, err)

	orders, err := logger.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Z", orders[0].Item)

	kept, err := filepath.Glob(filepath.Join(dir, "pedidos_refazer.json.*.corrupt"))
	require.NoError(t, err)
	require.Len(t, kept, 1)
	data, err := os.ReadFile(kept[0])
	require.NoError(t, err)
	assert.Equal(t, broken, data)
}

func TestOrderLogger_PrintsAfterSaving(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	receipts := newFakeReceipts()
	receipts.err = errors.New("paper jam")
	logger := NewOrderLogger(store, receipts, discardLogger())

	order, err := logger.LogOrder(ctx, customer, models.OrderDraft{Item: "X", Payment: models.PaymentCash, Change: "sem troco"})
	require.NoError(t, err, "printing failures never fail the order")

	select {
	case printed := <-receipts.printed:
		assert.Equal(t, order.ID, printed.ID)
		require.NotNil(t, printed.Change)
		assert.Equal(t, "sem troco", *printed.Change)
	case <-time.After(time.Second):
		t.Fatal("receipt was not printed")
	}

	orders, err := store.LoadOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
