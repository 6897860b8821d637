// Package chat holds the messaging side shared by the Telegram and Discord
// bots: outgoing notifications and the small command set both understand.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mklimuk/semester-pilot/pkg/metrics"
	"github.com/mklimuk/semester-pilot/pkg/model"
)

// Notifier delivers a plain text message to the user.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WeeklySummary renders the message sent after a week is finished.
func WeeklySummary(entry model.HistoryEntry, s *model.RootState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Minggu %d selesai (%s)\n", entry.Week, entry.Date)
	fmt.Fprintf(&b, "Checklist: %d/%d (%d%%)\n", entry.Stats.Completed, entry.Stats.Total, entry.Score)
	fmt.Fprintf(&b, "Revenue: %s / %s\n", metrics.FormatCurrency(s.Income.Revenue()), metrics.FormatCurrency(s.Income.TargetRevenue))

	burnout := metrics.BurnoutScore(s.Health.Logs)
	risk := "normal"
	if metrics.BurnoutHigh(burnout) {
		risk = "HIGH"
	}
	fmt.Fprintf(&b, "Burnout: %.1f/10 (%s)\n", burnout, risk)
	fmt.Fprintf(&b, "Sekarang minggu %d", s.CurrentWeek)
	return b.String()
}

// TruncateTitle shortens content to 20 bytes plus "..." for reply previews.
func TruncateTitle(content string) string {
	if len(content) > 20 {
		return content[:20] + "..."
	}
	return content
}
