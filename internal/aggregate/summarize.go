// Package aggregate turns raw alert lists into the per-repository summaries
// and scores the dashboard renders.
package aggregate

import (
	"math"
	"time"

	"github.com/patchwatch/repoboard/models"
)

// recentWindow is the look-back window for opened/closed delta counters.
const recentWindowDays = 30

// Summarize computes the full AlertSummary for one (repository, kind) pair
// from a mixed-state alert list. It always returns a structurally complete
// summary: every severity counter and age bucket is present even when the
// input is empty.
//
// Whether the feature is enabled at all is the fetch stage's call, not ours;
// an empty input here means "scanned, found nothing" and stays enabled.
func Summarize(alerts []models.Alert, now time.Time) models.AlertSummary {
	s := models.NewAlertSummary()

	windowStart := now.AddDate(0, 0, -recentWindowDays)

	var (
		openCount   int
		ageSum      int
		closedCount int
		mttrSum     float64
	)

	for _, a := range alerts {
		carries := a.Kind.CarriesSeverity()

		// 30-day deltas look at every alert, open or closed, and one alert
		// may land in both counters within the same run.
		if !a.CreatedAt.Before(windowStart) {
			s.OpenedLast30Days.Total++
			if carries {
				s.OpenedLast30Days.Add(a.Severity)
			}
		}
		if !a.ClosedAt.IsZero() && !a.ClosedAt.Before(windowStart) {
			s.ClosedLast30Days.Total++
			if carries {
				s.ClosedLast30Days.Add(a.Severity)
			}
		}

		if a.Open() {
			s.Total++
			if carries {
				s.Add(a.Severity)
			}

			age := ageDays(a.CreatedAt, now)
			openCount++
			ageSum += age
			if age > s.Aging.OldestAge {
				s.Aging.OldestAge = age
			}
			s.Aging.AgeBuckets[models.AgeBucketFor(age)]++
			continue
		}

		// Remediation time over closed alerts; negative spans are clock
		// skew and are excluded, not counted as negative.
		if !a.ClosedAt.IsZero() && !a.CreatedAt.IsZero() {
			days := a.ClosedAt.Sub(a.CreatedAt).Hours() / 24
			if days >= 0 {
				closedCount++
				mttrSum += days
			}
		}
	}

	if openCount > 0 {
		s.Aging.AverageAge = int(math.Round(float64(ageSum) / float64(openCount)))
	}
	if closedCount > 0 {
		s.MTTRDays = int(math.Round(mttrSum / float64(closedCount)))
	}

	// Freshness comes from the first alert of the unfiltered input. Callers
	// treat this as best-effort, not a true max over all timestamps.
	if len(alerts) > 0 && !alerts[0].UpdatedAt.IsZero() {
		s.LastUpdated = alerts[0].UpdatedAt.UTC().Format(time.RFC3339)
	}

	return s
}

// ageDays is the whole number of days between created and now, floored.
// Alerts created in the future (skewed clocks) age as zero.
func ageDays(created, now time.Time) int {
	d := now.Sub(created)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
