// Package notifier delivers trade decisions and backtest summaries to
// external channels.
package notifier

import (
	"fmt"
	"strings"

	"github.com/quantcrew/quantcrew/models"
)

// Notifier publishes pipeline events. Implementations must be safe for
// concurrent use.
type Notifier interface {
	NotifyDecision(decision models.TradeDecision) error
	NotifyText(text string) error
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) NotifyDecision(models.TradeDecision) error { return nil }
func (Nop) NotifyText(string) error                   { return nil }

// FormatDecision renders a trade decision as a plain text message.
func FormatDecision(d models.TradeDecision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", strings.ToUpper(string(d.Action)), d.Symbol)
	fmt.Fprintf(&b, "Quantity: %.2f\n", d.Quantity)
	fmt.Fprintf(&b, "Signal: %.3f (confidence %.2f)\n", d.SignalValue, d.Confidence)
	if d.StopLoss > 0 {
		fmt.Fprintf(&b, "Stop loss: %.2f\n", d.StopLoss)
	}
	if d.TakeProfit > 0 {
		fmt.Fprintf(&b, "Take profit: %.2f\n", d.TakeProfit)
	}
	return b.String()
}
