package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mklimuk/semester-pilot/pkg/metrics"
	"github.com/mklimuk/semester-pilot/pkg/model"
	"github.com/mklimuk/semester-pilot/pkg/state"
)

const helpText = `Commands:
status - week progress, revenue and burnout
today - today's schedule
check <subject> <item> - toggle a weekly checklist item
log <sleep> <mood> <stress> - record today's health log
finish confirm <week> - archive that week and start the next one`

// ParseCommand splits text into a command and its arguments when it starts
// with prefix ("/" for Telegram, "!" for Discord). Telegram's @botname
// suffix is dropped.
func ParseCommand(prefix, text string) (command, args string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, prefix) || len(text) == len(prefix) {
		return "", text
	}
	body := strings.TrimPrefix(text, prefix)
	command, args, _ = strings.Cut(body, " ")
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	return strings.ToLower(command), strings.TrimSpace(args)
}

// Handler runs chat commands against the store.
type Handler struct {
	store *state.Store
	now   func() time.Time
}

func NewHandler(store *state.Store, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{store: store, now: now}
}

// Handle executes one command and returns the reply text.
// The store is reloaded first so replies reflect changes made elsewhere.
func (h *Handler) Handle(ctx context.Context, command, args string) string {
	h.store.Refresh(ctx)
	switch command {
	case "status":
		return h.status()
	case "today":
		return h.today()
	case "check":
		return h.check(ctx, args)
	case "log":
		return h.log(ctx, args)
	case "finish":
		return h.finish(ctx, args)
	case "help", "start":
		return helpText
	default:
		return "Unknown command. " + helpText
	}
}

func (h *Handler) status() string {
	s := h.store.Snapshot()
	burnout := metrics.BurnoutScore(s.Health.Logs)
	return fmt.Sprintf("Minggu %d\nProgress: %d%%\nRevenue: %s\nBurnout: %.1f/10",
		s.CurrentWeek,
		metrics.ProgressPercent(s.Academics),
		metrics.FormatCurrency(s.Income.Revenue()),
		burnout)
}

func (h *Handler) today() string {
	now := h.now()
	s := h.store.Snapshot()
	items := metrics.TodaySchedule(s, now)
	if len(items) == 0 {
		return "Nothing scheduled today."
	}
	var b strings.Builder
	b.WriteString(string(metrics.CurrentWeekday(now)))
	for _, it := range items {
		fmt.Fprintf(&b, "\n%s %s", it.Time, it.Activity)
	}
	return b.String()
}

func (h *Handler) check(ctx context.Context, args string) string {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "Usage: check <subject> <item>"
	}
	subject, item := fields[0], model.ID(fields[1])
	if !h.store.ToggleChecklistItem(ctx, subject, item, model.ListWeekly) {
		return fmt.Sprintf("No item %s in %s.", item, subject)
	}
	for _, sub := range h.store.Snapshot().Academics {
		if sub.ID != subject {
			continue
		}
		for _, it := range sub.WeeklyChecklist {
			if it.ID == item {
				mark := "undone"
				if it.Done {
					mark = "done"
				}
				return fmt.Sprintf("%s marked %s.", TruncateTitle(it.Text), mark)
			}
		}
	}
	return "Updated."
}

func (h *Handler) log(ctx context.Context, args string) string {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return "Usage: log <sleep> <mood> <stress>"
	}
	sleep, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return "Sleep must be a number of hours."
	}
	mood, err := strconv.Atoi(fields[1])
	if err != nil {
		return "Mood must be a whole number 0-10."
	}
	stress, err := strconv.Atoi(fields[2])
	if err != nil {
		return "Stress must be a whole number 0-10."
	}

	if err := h.store.AppendHealthLog(ctx, model.LogEntry{Sleep: sleep, Mood: mood, Stress: stress}); err != nil {
		return err.Error()
	}
	score := metrics.BurnoutScore(h.store.Snapshot().Health.Logs)
	reply := fmt.Sprintf("Logged. Burnout %.1f/10.", score)
	if metrics.BurnoutHigh(score) {
		reply += " High risk, take a rest."
	}
	return reply
}

// finish rolls the week over. "confirm <week>" stands in for the
// confirmation dialog and names the week the user was warned about.
func (h *Handler) finish(ctx context.Context, args string) string {
	current := h.store.Snapshot().CurrentWeek
	fields := strings.Fields(args)
	if len(fields) != 2 || fields[0] != "confirm" {
		return FinishPrompt(current)
	}
	week, err := strconv.Atoi(fields[1])
	if err != nil {
		return FinishPrompt(current)
	}

	entry, ok := h.store.FinishWeek(ctx, func(w int) bool { return w == week })
	if !ok {
		return fmt.Sprintf("Week %d is not the current week (now week %d). Nothing changed.", week, h.store.Snapshot().CurrentWeek)
	}
	return fmt.Sprintf("Week %d archived with %d%%. Now on week %d.", entry.Week, entry.Score, entry.Week+1)
}

// FinishPrompt asks for confirmation of the rollover of week.
func FinishPrompt(week int) string {
	return fmt.Sprintf("This archives week %d and resets the weekly checklist. Send \"finish confirm %d\" to go ahead.", week, week)
}
