// Package timeperiods splits a time range into aligned fixed periods and
// reports which of them contain data. The data layer uses it to surface
// holes in fetched candle series
package timeperiods

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// TimePeriod is one aligned period, flagged when any supplied timestamp
// fell inside it
type TimePeriod struct {
	Time         time.Time
	dataInPeriod bool
}

// TimeRange is a run of consecutive periods sharing the same data flag
type TimeRange struct {
	Start   time.Time
	End     time.Time
	HasData bool
}

// TimePeriodCalculator breaks a range into periods and compresses them
// into contiguous ranges
type TimePeriodCalculator struct {
	TimePeriods []TimePeriod
	TimeRanges  []TimeRange
	start       time.Time
	end         time.Time
	period      time.Duration
	comparison  []time.Time
}

// FindTimeRangesContainingData returns the stretches between start and
// end that do and do not contain any of the supplied timestamps, measured
// on the given period
func FindTimeRangesContainingData(start, end time.Time, period time.Duration, timestamps []time.Time) ([]TimeRange, error) {
	t := TimePeriodCalculator{start: start, end: end, period: period, comparison: timestamps}
	if err := t.validate(); err != nil {
		return nil, err
	}
	t.calculatePeriods()
	t.calculateRanges()
	return t.TimeRanges, nil
}

// CalculateTimePeriodsInRange returns every aligned period between start
// and end. A start after the end yields nothing rather than an error
func CalculateTimePeriodsInRange(start, end time.Time, period time.Duration) ([]TimePeriod, error) {
	t := TimePeriodCalculator{start: start, end: end, period: period}
	if err := t.validate(); err != nil {
		return nil, err
	}
	t.calculatePeriods()
	return t.TimePeriods, nil
}

// Sort orders the calculated periods by time, descending when desc is set
func (t *TimePeriodCalculator) Sort(desc bool) {
	sort.Slice(t.TimePeriods, func(i, j int) bool {
		if desc {
			return t.TimePeriods[i].Time.After(t.TimePeriods[j].Time)
		}
		return t.TimePeriods[i].Time.Before(t.TimePeriods[j].Time)
	})
}

func (t *TimePeriodCalculator) validate() error {
	var problems []string
	if t.start.IsZero() {
		problems = append(problems, "invalid start time")
	}
	if t.end.IsZero() {
		problems = append(problems, "invalid end time")
	}
	if t.period <= 0 {
		problems = append(problems, "invalid period")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, ", "))
	}
	return nil
}

// calculatePeriods truncates the range onto period boundaries and flags
// every period containing a comparison timestamp
func (t *TimePeriodCalculator) calculatePeriods() {
	if t.period <= 0 {
		return
	}
	end := t.end.Truncate(t.period)
	for cursor := t.start.Truncate(t.period); cursor.Before(end); cursor = cursor.Add(t.period) {
		p := TimePeriod{Time: cursor}
		for i := range t.comparison {
			if !t.comparison[i].Before(cursor) && t.comparison[i].Before(cursor.Add(t.period)) {
				p.dataInPeriod = true
				break
			}
		}
		t.TimePeriods = append(t.TimePeriods, p)
	}
}

// calculateRanges merges consecutive periods sharing a data flag
func (t *TimePeriodCalculator) calculateRanges() {
	if len(t.TimePeriods) == 0 {
		return
	}
	current := TimeRange{
		Start:   t.TimePeriods[0].Time,
		HasData: t.TimePeriods[0].dataInPeriod,
	}
	for i := 1; i < len(t.TimePeriods); i++ {
		if t.TimePeriods[i].dataInPeriod == current.HasData {
			continue
		}
		current.End = t.TimePeriods[i].Time
		t.TimeRanges = append(t.TimeRanges, current)
		current = TimeRange{
			Start:   t.TimePeriods[i].Time,
			HasData: t.TimePeriods[i].dataInPeriod,
		}
	}
	current.End = t.TimePeriods[len(t.TimePeriods)-1].Time.Add(t.period)
	t.TimeRanges = append(t.TimeRanges, current)
}
