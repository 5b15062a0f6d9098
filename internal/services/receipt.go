package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Ananth-NQI/recovery-bot/internal/models"
)

// ReceiptSink produces a receipt for a finalized order.
type ReceiptSink interface {
	Print(ctx context.Context, order models.Order) error
}

// ErrPrinterUnavailable is returned when hardware printing is requested.
// Receipts are then saved with an _ERRO suffix for manual printing.
var ErrPrinterUnavailable = errors.New("receipt printer unavailable")

// ReceiptOptions configures the text layout and output location.
type ReceiptOptions struct {
	Simulation bool
	OutputDir  string
	Width      int
	ShopName   string
}

// ReceiptPrinter renders 80mm-style text receipts and writes them to disk.
type ReceiptPrinter struct {
	opts   ReceiptOptions
	logger *slog.Logger
	now    func() time.Time
}

// NewReceiptPrinter creates a printer. Width defaults to 40 columns.
func NewReceiptPrinter(opts ReceiptOptions, logger *slog.Logger) *ReceiptPrinter {
	if opts.Width <= 4 {
		opts.Width = 40
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "cupons"
	}
	return &ReceiptPrinter{opts: opts, logger: logger.With("component", "printer"), now: time.Now}
}

// Print saves the receipt. In simulation mode the file is the receipt; otherwise
// the file is a fallback and the call reports ErrPrinterUnavailable.
func (p *ReceiptPrinter) Print(_ context.Context, order models.Order) error {
	receipt := p.Render(order)

	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create receipt dir: %w", err)
	}

	suffix := ""
	if !p.opts.Simulation {
		suffix = "_ERRO"
	}
	name := fmt.Sprintf("cupom_%d_%d%s.txt", order.ID, p.now().UnixNano(), suffix)
	path := filepath.Join(p.opts.OutputDir, name)
	if err := os.WriteFile(path, []byte(receipt), 0o644); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}

	if !p.opts.Simulation {
		p.logger.Error("printer not available, receipt saved for manual printing", "order", order.ID, "path", path)
		return ErrPrinterUnavailable
	}

	p.logger.Info("receipt saved", "order", order.ID, "path", path)
	p.logger.Debug("receipt\n" + receipt)
	return nil
}

// Render formats the receipt text. Free-text orders print the customer's
// message as-is instead of the structured sections.
func (p *ReceiptPrinter) Render(order models.Order) string {
	width := p.opts.Width
	heavy := strings.Repeat("═", width)
	light := strings.Repeat("─", width)
	printed := p.now()

	var b strings.Builder
	line := func(s string) { b.WriteString(s); b.WriteByte('\n') }

	line(heavy)
	line(center(p.opts.ShopName, width))
	line(center("SISTEMA DE CONTINGÊNCIA", width))
	line(heavy)
	line("")
	line("📅 " + printed.Format("02/01/2006"))
	line("⏰ " + printed.Format("15:04:05"))
	line(light)
	line("")
	line(center(fmt.Sprintf("PEDIDO #%d", order.ID), width))
	line(light)
	line("")
	line("CLIENTE:")
	line("👤 " + order.CustomerName())
	line("📱 " + order.Number)
	line(light)
	line("")

	if order.Payment.Structured() {
		line("ITENS:")
		for i, chunk := range wrap(order.Item, width-2) {
			if i == 0 {
				line("• " + chunk)
			} else {
				line("  " + chunk)
			}
		}
		line(light)
		line("")

		line("ENDEREÇO:")
		if order.Address != nil && *order.Address != "" {
			for _, chunk := range wrap(*order.Address, width-2) {
				line("📍 " + chunk)
			}
		} else {
			line("📍 RETIRADA NA LOJA")
		}
		line(light)
		line("")

		line("PAGAMENTO:")
		line("💳 " + string(order.Payment))
		if order.Change != nil && *order.Change != "" {
			line("💵 Troco: " + *order.Change)
		}
	} else {
		line("PEDIDO:")
		for _, chunk := range wrap(order.Item, width-2) {
			line(chunk)
		}
	}
	line(light)
	line("")

	line(center("⚠️ SISTEMA DE CONTINGÊNCIA", width))
	line(center("Sistema principal indisponível", width))
	line("")
	line(center("Obrigado pela preferência!", width))
	line(center("🙏", width))
	line(heavy)
	line("")

	return b.String()
}

func center(text string, width int) string {
	pad := (width - utf8.RuneCountInString(text)) / 2
	if pad <= 0 {
		return text
	}
	return strings.Repeat(" ", pad) + text
}

// wrap cuts text into chunks of at most n runes, ignoring word boundaries
// like the printer does. Embedded newlines start a new chunk.
func wrap(text string, n int) []string {
	if n < 1 {
		n = 1
	}
	var out []string
	for _, para := range strings.Split(text, "\n") {
		r := []rune(para)
		if len(r) == 0 {
			out = append(out, "")
			continue
		}
		for len(r) > n {
			out = append(out, string(r[:n]))
			r = r[n:]
		}
		out = append(out, string(r))
	}
	return out
}

var _ ReceiptSink = (*ReceiptPrinter)(nil)
