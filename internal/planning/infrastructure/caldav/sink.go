package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/resilience"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// PropXStudyBuddy marks events written by the sink.
const PropXStudyBuddy = "X-STUDYBUDDY"

const productID = "-//StudyBuddy//Schedule Export//EN"

// Config holds CalDAV connection settings. Token, when set, is sent as a
// bearer token instead of basic auth.
type Config struct {
	URL          string
	Username     string
	Password     string
	Token        string
	CalendarPath string
	Timeout      time.Duration
}

// Sink writes schedule study entries to a CalDAV calendar as VEVENTs.
type Sink struct {
	config        Config
	breaker       *resilience.Breaker
	logger        *slog.Logger
	deleteMissing bool
	now           func() time.Time
}

// NewSink creates a CalDAV sink. Every server round trip goes through
// breaker.
func NewSink(config Config, breaker *resilience.Breaker, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if breaker == nil {
		breaker = resilience.NewBreaker("caldav", resilience.DefaultBreakerConfig(), logger)
	}
	return &Sink{config: config, breaker: breaker, logger: logger, now: time.Now}
}

// WithDeleteMissing removes previously exported events that are not part
// of the schedule being exported.
func (s *Sink) WithDeleteMissing(enabled bool) *Sink {
	s.deleteMissing = enabled
	return s
}

// Export implements commands.CalendarSink.
func (s *Sink) Export(ctx context.Context, schedule *domain.Schedule) (int, error) {
	client, err := s.client(ctx)
	if err != nil {
		return 0, err
	}

	calPath, err := s.calendarPath(ctx, client)
	if err != nil {
		return 0, fmt.Errorf("find calendar: %w", err)
	}

	stamp := s.now()
	keep := make(map[string]struct{})
	written := 0
	for seq, entry := range schedule.Entries() {
		if !entry.IsStudy() {
			continue
		}
		uid := EventUID(schedule.ID(), seq)
		eventPath := calPath + uid + ".ics"
		keep[eventPath] = struct{}{}

		cal := toICalendar(uid, entry, stamp)
		err := s.breaker.Do(func() error {
			_, err := client.PutCalendarObject(ctx, eventPath, cal)
			return err
		})
		if err != nil {
			return written, fmt.Errorf("put %s: %w", eventPath, err)
		}
		written++
	}

	if s.deleteMissing {
		deleted, err := s.deleteStale(ctx, client, calPath, keep)
		if err != nil {
			s.logger.Warn("caldav cleanup failed", "error", err)
		} else if deleted > 0 {
			s.logger.Info("removed outdated calendar events", "count", deleted)
		}
	}

	s.logger.Debug("caldav export finished", "schedule_id", schedule.ID(), "events", written, "calendar", calPath)
	return written, nil
}

func (s *Sink) client(ctx context.Context) (*caldav.Client, error) {
	var httpClient webdav.HTTPClient
	if s.config.Token != "" {
		c := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.config.Token, TokenType: "Bearer"}))
		c.Timeout = s.config.Timeout
		httpClient = c
	} else {
		httpClient = webdav.HTTPClientWithBasicAuth(&http.Client{Timeout: s.config.Timeout}, s.config.Username, s.config.Password)
	}

	client, err := caldav.NewClient(httpClient, s.config.URL)
	if err != nil {
		return nil, fmt.Errorf("create caldav client: %w", err)
	}
	return client, nil
}

func (s *Sink) calendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if s.config.CalendarPath != "" {
		return withTrailingSlash(s.config.CalendarPath), nil
	}

	var path string
	err := s.breaker.Do(func() error {
		principal, err := client.FindCurrentUserPrincipal(ctx)
		if err != nil {
			return fmt.Errorf("find principal: %w", err)
		}
		homeSet, err := client.FindCalendarHomeSet(ctx, principal)
		if err != nil {
			return fmt.Errorf("find calendar home set: %w", err)
		}
		cals, err := client.FindCalendars(ctx, homeSet)
		if err != nil {
			return fmt.Errorf("find calendars: %w", err)
		}
		if len(cals) == 0 {
			return fmt.Errorf("no calendars found")
		}
		path = cals[0].Path
		return nil
	})
	return withTrailingSlash(path), err
}

func (s *Sink) deleteStale(ctx context.Context, client *caldav.Client, calPath string, keep map[string]struct{}) (int, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{
				{Name: "VEVENT", Props: []string{"UID", PropXStudyBuddy}},
			},
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT"}},
		},
	}

	var objects []caldav.CalendarObject
	err := s.breaker.Do(func() error {
		var err error
		objects, err = client.QueryCalendar(ctx, calPath, query)
		return err
	})
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		if !isStudyBuddyEvent(&obj) {
			continue
		}
		if _, ok := keep[obj.Path]; ok {
			continue
		}
		if err := s.breaker.Do(func() error { return client.RemoveAll(ctx, obj.Path) }); err != nil {
			s.logger.Warn("failed to delete caldav event", "path", obj.Path, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

// EventUID is stable per schedule entry so re-exports overwrite.
func EventUID(scheduleID uuid.UUID, seq int) string {
	return fmt.Sprintf("studybuddy-%s-%03d", scheduleID, seq)
}

func toICalendar(uid string, entry domain.Entry, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uid)
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, entry.Start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, entry.End.UTC())
	event.Props.SetText(ical.PropSummary, "Study: "+entry.Subject)
	event.Props.SetText(ical.PropDescription, fmt.Sprintf("Day %d, %s\nTask %s",
		entry.Day, entry.Duration().Round(time.Minute), entry.TaskID))

	marker := ical.NewProp(PropXStudyBuddy)
	marker.Value = "1"
	event.Props[PropXStudyBuddy] = []ical.Prop{*marker}

	cal.Children = append(cal.Children, event.Component)
	return cal
}

func isStudyBuddyEvent(obj *caldav.CalendarObject) bool {
	if obj == nil || obj.Data == nil {
		return false
	}
	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		if props := child.Props[PropXStudyBuddy]; len(props) > 0 && props[0].Value == "1" {
			return true
		}
	}
	return false
}

func withTrailingSlash(p string) string {
	if p == "" || strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}
