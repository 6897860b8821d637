package calendar

import (
	"context"
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	googleauth "github.com/mklimuk/semester-pilot/pkg/integration/google"
	"github.com/mklimuk/semester-pilot/pkg/model"
)

// sourceKey is the private extended property set on every pushed event.
const sourceKey = "sempilot-kind"

// Event is one schedule slot as stored in Google Calendar.
type Event struct {
	ID          string
	Summary     string
	Description string
	Kind        model.ScheduleKind
	StartTime   time.Time
	EndTime     time.Time
}

// CalendarAPI is the interface used by Pusher for testability.
type CalendarAPI interface {
	FetchRange(ctx context.Context, from, to time.Time) ([]Event, error)
	CreateEvent(ctx context.Context, e Event) (string, error)
}

// kindColors maps schedule kinds onto Google Calendar event color ids.
var kindColors = map[model.ScheduleKind]string{
	model.KindRoutine:  "8",
	model.KindAcademic: "9",
	model.KindSkill:    "3",
	model.KindIncome:   "10",
	model.KindPlanning: "5",
	model.KindRest:     "2",
}

// Service pushes schedule slots into one Google calendar.
type Service struct {
	events     *gcal.EventsService
	calendarID string
}

// NewService authenticates with a service account key. The calendar must be
// shared with the account's client_email.
func NewService(ctx context.Context, credentialsFile, calendarID string) (*Service, error) {
	if calendarID == "" {
		calendarID = "primary"
	}
	srv, err := gcal.NewService(ctx, googleauth.ClientOption(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &Service{events: srv.Events, calendarID: calendarID}, nil
}

// FetchRange lists the events that overlap [from, to]. Cancelled events and
// entries without a usable time are left out.
func (s *Service) FetchRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	var result []Event
	err := s.events.List(s.calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *gcal.Events) error {
			for _, item := range page.Items {
				if item.Status == "cancelled" {
					continue
				}
				if e, err := fromGCal(item); err == nil {
					result = append(result, e)
				}
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}
	return result, nil
}

// CreateEvent inserts e and returns the new event id.
func (s *Service) CreateEvent(ctx context.Context, e Event) (string, error) {
	created, err := s.events.Insert(s.calendarID, toGCalEvent(e)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create event %q: %w", e.Summary, err)
	}
	return created.Id, nil
}

func fromGCal(item *gcal.Event) (Event, error) {
	if item.Start == nil || item.Start.DateTime == "" || item.End == nil {
		return Event{}, fmt.Errorf("event %s has no start time", item.Id)
	}
	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return Event{}, fmt.Errorf("failed to parse start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, item.End.DateTime)
	if err != nil {
		return Event{}, fmt.Errorf("failed to parse end time: %w", err)
	}
	e := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		StartTime:   start,
		EndTime:     end,
	}
	if item.ExtendedProperties != nil {
		e.Kind = model.ScheduleKind(item.ExtendedProperties.Private[sourceKey])
	}
	return e, nil
}

func toGCalEvent(e Event) *gcal.Event {
	ev := &gcal.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Start:       &gcal.EventDateTime{DateTime: e.StartTime.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: e.EndTime.Format(time.RFC3339)},
		Reminders:   &gcal.EventReminders{UseDefault: true},
	}
	if e.Kind != "" {
		ev.ColorId = kindColors[e.Kind]
		ev.ExtendedProperties = &gcal.EventExtendedProperties{
			Private: map[string]string{sourceKey: string(e.Kind)},
		}
	}
	return ev
}
