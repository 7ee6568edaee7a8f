// Package recurrence computes recurrence schedules for process templates.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/keonhq/taskflow/internal/domain/entity"
)

// NextRun advances a recurrence timestamp by interval units. Month and year
// arithmetic follows time.AddDate normalization (e.g. Jan 31 + 1 month lands
// in early March).
func NextRun(current time.Time, interval int, unit string) (time.Time, error) {
	if interval <= 0 {
		return time.Time{}, fmt.Errorf("recurrence interval must be positive, got %d", interval)
	}

	switch unit {
	case entity.RecurrenceUnitDay:
		return current.AddDate(0, 0, interval), nil
	case entity.RecurrenceUnitWeek:
		return current.AddDate(0, 0, 7*interval), nil
	case entity.RecurrenceUnitMonth:
		return current.AddDate(0, interval, 0), nil
	case entity.RecurrenceUnitYear:
		return current.AddDate(interval, 0, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown recurrence unit %q", unit)
	}
}

// BuildTitle renders a template's title pattern, substituting {process} with
// the template name and {date} with the run date. An empty pattern falls back
// to the template name.
func BuildTitle(pattern, processName string, at time.Time) string {
	if pattern == "" {
		return processName
	}

	title := strings.ReplaceAll(pattern, "{process}", processName)
	title = strings.ReplaceAll(title, "{date}", at.Format("2006-01-02"))
	return title
}
