package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
)

func ptr(s string) *string { return &s }

func newTestPrinter(t *testing.T, simulation bool) *ReceiptPrinter {
	t.Helper()
	p := NewReceiptPrinter(ReceiptOptions{
		Simulation: simulation,
		OutputDir:  t.TempDir(),
		ShopName:   "CASA DO LANCHE",
	}, discardLogger())
	p.now = func() time.Time { return time.Date(2024, 5, 1, 19, 30, 0, 0, time.UTC) }
	return p
}

func TestReceiptPrinter_RenderStructured(t *testing.T) {
	p := newTestPrinter(t, true)

	receipt := p.Render(models.Order{
		ID:      42,
		Number:  "5511987654321",
		Name:    ptr("Maria"),
		Item:    "X-TUDO",
		Payment: models.PaymentCash,
		Change:  ptr("troco pra 50"),
	})

	assert.Contains(t, receipt, "CASA DO LANCHE")
	assert.Contains(t, receipt, "PEDIDO #42")
	assert.Contains(t, receipt, "01/05/2024")
	assert.Contains(t, receipt, "19:30:00")
	assert.Contains(t, receipt, "👤 Maria")
	assert.Contains(t, receipt, "📱 5511987654321")
	assert.Contains(t, receipt, "• X-TUDO")
	assert.Contains(t, receipt, "RETIRADA NA LOJA")
	assert.Contains(t, receipt, "💳 DINHEIRO")
	assert.Contains(t, receipt, "💵 Troco: troco pra 50")
	assert.Contains(t, receipt, "Obrigado pela preferência!")
}

func TestReceiptPrinter_RenderFreeText(t *testing.T) {
	p := newTestPrinter(t, true)

	receipt := p.Render(models.Order{
		ID:      7,
		Item:    "burger, Main St 123, cash",
		Payment: models.PaymentFreeText,
	})

	assert.Contains(t, receipt, "👤 Cliente")
	assert.Contains(t, receipt, "PEDIDO:\nburger, Main St 123, cash\n")
	assert.NotContains(t, receipt, "ENDEREÇO:")
	assert.NotContains(t, receipt, "PAGAMENTO:")
}

func TestReceiptPrinter_WrapsLongItems(t *testing.T) {
	p := newTestPrinter(t, true)
	item := strings.Repeat("a", 38) + strings.Repeat("b", 10)

	receipt := p.Render(models.Order{ID: 1, Item: item, Payment: models.PaymentPix})

	assert.Contains(t, receipt, "• "+strings.Repeat("a", 38)+"\n")
	assert.Contains(t, receipt, "  "+strings.Repeat("b", 10)+"\n")
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"abc", "def", "g"}, wrap("abcdefg", 3))
	assert.Equal(t, []string{"ção", "ção"}, wrap("çãoção", 3))
	assert.Equal(t, []string{"ab", "", "c"}, wrap("ab\n\nc", 5))
}

func TestCenter(t *testing.T) {
	assert.Equal(t, "   abcd", center("abcd", 10))
	assert.Equal(t, "toolong", center("toolong", 4))
}

func TestReceiptPrinter_PrintSimulation(t *testing.T) {
	p := newTestPrinter(t, true)

	require.NoError(t, p.Print(context.Background(), models.Order{ID: 42, Item: "X", Payment: models.PaymentPix}))

	files, err := filepath.Glob(filepath.Join(p.opts.OutputDir, "cupom_42_*.txt"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.NotContains(t, files[0], "_ERRO")

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "PEDIDO #42")
}

func TestReceiptPrinter_PrintWithoutPrinterSavesFallback(t *testing.T) {
	p := newTestPrinter(t, false)

	err := p.Print(context.Background(), models.Order{ID: 9, Item: "X", Payment: models.PaymentPix})
	require.ErrorIs(t, err, ErrPrinterUnavailable)

	files, err := filepath.Glob(filepath.Join(p.opts.OutputDir, "cupom_9_*_ERRO.txt"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}
