package feed

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/mkhault/calsync/internal/models"
	"github.com/mkhault/calsync/internal/shared"
)

// defaultMaxOccurrences caps recurrence expansion per event so a
// misconfigured RRULE cannot flood the store.
const defaultMaxOccurrences = 100

// NormalizedEvent is one concrete event occurrence extracted from a feed.
type NormalizedEvent struct {
	ID          string // feed UID (suffixed for recurrence instances), or a generated token
	Title       string
	Start       time.Time // local time; local midnight for all-day events
	AllDay      bool
	Description string
}

// DateString renders the occurrence in the engine's canonical local-time
// form. All-day events sit at local midnight, so both forms share the same layout.
func (e NormalizedEvent) DateString() string {
	return models.FormatLocalMinute(e.Start)
}

// ExpandOptions bounds recurrence expansion.
type ExpandOptions struct {
	// RangeStart / RangeEnd delimit the window in which RRULE occurrences
	// are materialized. Zero values default to the start of the current
	// year and one year from now.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrences caps instances per recurring event; zero means defaultMaxOccurrences.
	MaxOccurrences int
}

func (o ExpandOptions) withDefaults(now time.Time) ExpandOptions {
	if o.RangeStart.IsZero() {
		o.RangeStart = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.Local)
	}
	if o.RangeEnd.IsZero() {
		o.RangeEnd = now.AddDate(1, 0, 0)
	}
	if o.MaxOccurrences <= 0 {
		o.MaxOccurrences = defaultMaxOccurrences
	}
	return o
}

// Parse parses raw ICS text into normalized event occurrences, in feed order.
//
// A payload that does not parse as a VCALENDAR container fails with
// [shared.ErrInvalidFeed]. Individual malformed VEVENTs are skipped so one
// bad component does not abort the import.
func Parse(data []byte, opts ExpandOptions) ([]NormalizedEvent, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", shared.ErrInvalidFeed)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidFeed, err)
	}

	opts = opts.withDefaults(time.Now())

	var out []NormalizedEvent
	for _, ve := range cal.Events() {
		events, err := normalizeVEvent(ve, opts)
		if err != nil {
			// Skip this component, keep parsing the rest.
			continue
		}
		out = append(out, events...)
	}

	return out, nil
}

// normalizeVEvent converts one VEVENT into one or more occurrences
// (more than one when the event carries an RRULE).
func normalizeVEvent(ve *ical.VEvent, opts ExpandOptions) ([]NormalizedEvent, error) {
	base := NormalizedEvent{}

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil && p.Value != "" {
		base.ID = p.Value
	} else {
		base.ID = "event-" + shared.GenerateID()
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		base.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		base.Description = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return nil, fmt.Errorf("missing DTSTART")
	}

	base.AllDay = isAllDayStart(dtStart)
	if base.AllDay {
		v := strings.TrimSpace(dtStart.Value)
		if len(v) < 8 {
			return nil, fmt.Errorf("bad all-day DTSTART %q", dtStart.Value)
		}
		day, err := time.ParseInLocation("20060102", v[:8], time.Local)
		if err != nil {
			return nil, fmt.Errorf("bad all-day DTSTART %q: %w", dtStart.Value, err)
		}
		base.Start = day
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return nil, fmt.Errorf("bad DTSTART %q: %w", dtStart.Value, err)
		}
		// Local wall-clock, minute precision.
		base.Start = start.In(time.Local).Truncate(time.Minute)
	}

	rawRRule := ""
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		rawRRule = p.Value
	}
	if rawRRule == "" {
		return []NormalizedEvent{base}, nil
	}

	return expandRecurrence(ve, base, rawRRule, opts)
}

// expandRecurrence materializes RRULE occurrences inside the option window.
// The instance at the base start keeps the feed UID so re-imports of
// non-recurring feeds and recurring feeds dedup the same way; later
// instances get a stable "<uid>@<unix>" suffix derived from their start time.
func expandRecurrence(ve *ical.VEvent, base NormalizedEvent, rawRRule string, opts ExpandOptions) ([]NormalizedEvent, error) {
	opt, err := rrule.StrToROption(rawRRule)
	if err != nil {
		// Unparseable rule: fall back to the base occurrence.
		return []NormalizedEvent{base}, nil
	}
	opt.Dtstart = base.Start

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return []NormalizedEvent{base}, nil
	}

	excluded := exdateSet(ve)

	times := rule.Between(opts.RangeStart, opts.RangeEnd, true)
	out := make([]NormalizedEvent, 0, len(times))
	for _, t := range times {
		if len(out) >= opts.MaxOccurrences {
			break
		}
		t = t.In(time.Local)
		if base.AllDay {
			t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
		} else {
			t = t.Truncate(time.Minute)
		}
		if _, skip := excluded[t.Format(models.DateTimeLayout)]; skip {
			continue
		}

		occ := base
		occ.Start = t
		if !t.Equal(base.Start) {
			occ.ID = fmt.Sprintf("%s@%d", base.ID, t.Unix())
		}
		out = append(out, occ)
	}

	if len(out) == 0 {
		// Nothing in the window; keep the base so the caller's retention
		// filter owns the decision to drop it.
		return []NormalizedEvent{base}, nil
	}
	return out, nil
}

// exdateSet collects EXDATE values keyed by their local minute rendering.
func exdateSet(ve *ical.VEvent) map[string]struct{} {
	set := make(map[string]struct{})
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				set[t.In(time.Local).Truncate(time.Minute).Format(models.DateTimeLayout)] = struct{}{}
			}
		}
	}
	return set
}

// isAllDayStart detects DATE-valued starts: either VALUE=DATE or a value
// with no time component.
func isAllDayStart(p *ical.IANAProperty) bool {
	if p.ICalParameters != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime parses basic ICS date/date-time forms used by EXDATE values.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, time.Local)
	default:
		return time.ParseInLocation("20060102", v, time.Local)
	}
}
