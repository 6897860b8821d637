package calendar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/model"
)

// Pusher copies schedule slots into a calendar.
type Pusher struct {
	api     CalendarAPI
	details string
	logger  *zap.Logger
}

func NewPusher(api CalendarAPI, details string, logger *zap.Logger) *Pusher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pusher{api: api, details: details, logger: logger}
}

// PushResult reports what happened to one schedule slot.
type PushResult struct {
	Item    model.ScheduleItem
	Start   time.Time
	EventID string
	Skipped bool
	Err     error
}

// PushDay creates events for the next occurrence of every slot of day.
// Slots that already have an event with the same summary and start time
// are skipped, so pushing twice does not duplicate events.
func (p *Pusher) PushDay(ctx context.Context, day model.Weekday, items []model.ScheduleItem, now time.Time) ([]PushResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]PushResult, 0, len(items))
	var from, to time.Time
	for _, item := range items {
		start, err := NextOccurrence(day, item.Time, now)
		if err != nil {
			results = append(results, PushResult{Item: item, Err: err})
			continue
		}
		if from.IsZero() || start.Before(from) {
			from = start
		}
		if end := start.Add(EventDuration); end.After(to) {
			to = end
		}
		results = append(results, PushResult{Item: item, Start: start})
	}
	if from.IsZero() {
		return results, nil
	}

	existing, err := p.api.FetchRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing events: %w", err)
	}
	seen := make(map[string]string, len(existing))
	for _, e := range existing {
		seen[eventKey(e.Summary, e.StartTime)] = e.ID
	}

	for i := range results {
		r := &results[i]
		if r.Err != nil {
			continue
		}
		if id, ok := seen[eventKey(r.Item.Activity, r.Start)]; ok {
			r.EventID = id
			r.Skipped = true
			continue
		}
		id, err := p.api.CreateEvent(ctx, Event{
			Summary:     r.Item.Activity,
			Description: p.details,
			Kind:        r.Item.Type,
			StartTime:   r.Start,
			EndTime:     r.Start.Add(EventDuration),
		})
		if err != nil {
			p.logger.Warn("failed to create calendar event", zap.String("activity", r.Item.Activity), zap.Error(err))
			r.Err = err
			continue
		}
		r.EventID = id
	}
	return results, nil
}

func eventKey(summary string, start time.Time) string {
	return summary + "|" + start.UTC().Format(time.RFC3339)
}
