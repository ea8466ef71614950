// Package timeslots handles the daily grid configuration and the
// derivation of worked hours from slot arrays.
package timeslots

import (
	"fmt"
	"regexp"
	"sort"
	"time"
)

// slotPattern matches "HH:MM" 24h times.
var slotPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// GridConfig describes the daily slot grid of a shop.
type GridConfig struct {
	StartTime       string   `json:"start_time" yaml:"start_time"`
	EndTime         string   `json:"end_time" yaml:"end_time"`
	IntervalMinutes int      `json:"interval_minutes" yaml:"interval_minutes"`
	TimeSlots       []string `json:"time_slots" yaml:"time_slots,omitempty"`
}

// DefaultGridConfig is used whenever a shop's grid configuration is
// missing or fails validation.
func DefaultGridConfig() GridConfig {
	cfg := GridConfig{
		StartTime:       "09:00",
		EndTime:         "20:00",
		IntervalMinutes: 30,
	}
	cfg.TimeSlots = BuildTimeSlots(cfg.StartTime, cfg.EndTime, cfg.IntervalMinutes)
	return cfg
}

// BuildTimeSlots generates ascending "HH:MM" slot labels from start
// (inclusive) to end (exclusive) at the given interval.
func BuildTimeSlots(start, end string, intervalMinutes int) []string {
	startMin, err1 := toMinutes(start)
	endMin, err2 := toMinutes(end)
	if err1 != nil || err2 != nil || intervalMinutes <= 0 || endMin <= startMin {
		return nil
	}
	var slots []string
	for m := startMin; m < endMin; m += intervalMinutes {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// Normalize filters the configured slots against the HH:MM pattern, sorts
// them ascending and rebuilds missing slot lists from start/end/interval.
// An invalid or empty result falls back to DefaultGridConfig. The returned
// bool is false when the fallback was taken.
func Normalize(cfg GridConfig) (GridConfig, bool) {
	if cfg.IntervalMinutes <= 0 {
		return DefaultGridConfig(), false
	}

	if len(cfg.TimeSlots) == 0 {
		cfg.TimeSlots = BuildTimeSlots(cfg.StartTime, cfg.EndTime, cfg.IntervalMinutes)
	} else {
		var valid []string
		for _, s := range cfg.TimeSlots {
			if slotPattern.MatchString(s) {
				valid = append(valid, s)
			}
		}
		sort.Strings(valid)
		cfg.TimeSlots = valid
	}

	if len(cfg.TimeSlots) == 0 {
		return DefaultGridConfig(), false
	}
	return cfg, true
}

// WorkHours is the derived daily schedule of one employee.
// Pause/Return are empty when the day has no gap.
type WorkHours struct {
	Entry  string  `json:"entry"`
	Pause  string  `json:"pause,omitempty"`
	Return string  `json:"return,omitempty"`
	Exit   string  `json:"exit"`
	Hours  float64 `json:"hours"`
}

// CalculateWorkHours derives entry/pause/return/exit times and the worked
// hour total from a day's slot booleans.
//
// Hours are exactly count(true) * interval / 60. Entry is the first true
// slot, exit the end of the last true slot. The first gap inside the worked
// run is reported as the lunch pause; further gaps only contribute to the
// hour arithmetic, not to the reported times.
func CalculateWorkHours(day []bool, cfg GridConfig) WorkHours {
	var wh WorkHours

	count := 0
	first, last := -1, -1
	for i, set := range day {
		if i >= len(cfg.TimeSlots) {
			break
		}
		if set {
			count++
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if count == 0 {
		return wh
	}

	wh.Hours = float64(count) * float64(cfg.IntervalMinutes) / 60.0
	wh.Entry = cfg.TimeSlots[first]
	wh.Exit = addMinutes(cfg.TimeSlots[last], cfg.IntervalMinutes)

	// First gap between first and last worked slot becomes the pause.
	for i := first + 1; i <= last; i++ {
		if !day[i] {
			gapEnd := i
			for gapEnd <= last && !day[gapEnd] {
				gapEnd++
			}
			wh.Pause = cfg.TimeSlots[i]
			wh.Return = cfg.TimeSlots[gapEnd]
			break
		}
	}
	return wh
}

// DayHours returns only the worked hour total for a day.
func DayHours(day []bool, cfg GridConfig) float64 {
	count := 0
	for _, set := range day {
		if set {
			count++
		}
	}
	return float64(count) * float64(cfg.IntervalMinutes) / 60.0
}

func toMinutes(hhmm string) (int, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func addMinutes(hhmm string, minutes int) string {
	m, err := toMinutes(hhmm)
	if err != nil {
		return hhmm
	}
	m += minutes
	return fmt.Sprintf("%02d:%02d", (m/60)%24, m%60)
}
