// Package export builds hour recaps from weekly plannings and renders them
// to Excel, PDF or Google Sheets.
package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"planhebdo/internal/models"
	"planhebdo/internal/planning"
	"planhebdo/internal/timeslots"
)

// DayRecap is one employee's derived schedule for one day.
type DayRecap struct {
	DayKey string              `json:"day_key"`
	Hours  timeslots.WorkHours `json:"hours"`
}

// EmployeeWeekRecap is one employee's week of day recaps.
type EmployeeWeekRecap struct {
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	Days         []DayRecap `json:"days"`
	TotalHours   float64    `json:"total_hours"`
}

// EmployeeMonthRecap sums one employee's hours over a calendar month.
type EmployeeMonthRecap struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	DaysWorked   int     `json:"days_worked"`
	TotalHours   float64 `json:"total_hours"`
}

// Service computes recaps by reading saved plannings.
type Service struct {
	plans  *planning.Manager
	logger zerolog.Logger
}

// NewService creates an export service.
func NewService(plans *planning.Manager, logger zerolog.Logger) *Service {
	return &Service{plans: plans, logger: logger}
}

// WeekRecap builds per-employee day recaps for a (shop, week). names maps
// employee IDs to display names; unknown IDs fall back to the ID itself.
func (s *Service) WeekRecap(ctx context.Context, shopID, weekKey string, grid timeslots.GridConfig, names map[string]string) ([]EmployeeWeekRecap, error) {
	week, err := s.plans.LoadWeek(ctx, shopID, weekKey, grid)
	if err != nil {
		return nil, err
	}
	return BuildWeekRecap(week, names), nil
}

// BuildWeekRecap derives the recap rows from an in-memory week.
func BuildWeekRecap(week *planning.Week, names map[string]string) []EmployeeWeekRecap {
	dayKeys, err := models.DayKeys(week.WeekKey)
	if err != nil {
		return nil
	}
	grid := week.Grid()

	var recaps []EmployeeWeekRecap
	for _, emp := range week.SelectedEmployees {
		recap := EmployeeWeekRecap{
			EmployeeID:   emp,
			EmployeeName: displayName(names, emp),
		}
		for _, day := range dayKeys {
			wh := timeslots.CalculateWorkHours(week.Planning[emp][day], grid)
			recap.Days = append(recap.Days, DayRecap{DayKey: day, Hours: wh})
			recap.TotalHours += wh.Hours
		}
		recaps = append(recaps, recap)
	}
	return recaps
}

// MonthRecap sums worked hours per employee over all weeks overlapping the
// month, counting only days that fall inside the month.
func (s *Service) MonthRecap(ctx context.Context, shopID string, year int, month time.Month, grid timeslots.GridConfig, names map[string]string) ([]EmployeeMonthRecap, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	totals := map[string]*EmployeeMonthRecap{}
	var order []string

	for monday := models.MondayOf(first); !monday.After(last); monday = monday.AddDate(0, 0, 7) {
		weekKey := monday.Format(models.DateFormat)
		week, err := s.plans.LoadWeek(ctx, shopID, weekKey, grid)
		if err != nil {
			return nil, fmt.Errorf("load week %s: %w", weekKey, err)
		}
		for _, recap := range BuildWeekRecap(week, names) {
			entry, ok := totals[recap.EmployeeID]
			if !ok {
				entry = &EmployeeMonthRecap{
					EmployeeID:   recap.EmployeeID,
					EmployeeName: recap.EmployeeName,
				}
				totals[recap.EmployeeID] = entry
				order = append(order, recap.EmployeeID)
			}
			for _, day := range recap.Days {
				d, err := time.Parse(models.DateFormat, day.DayKey)
				if err != nil || d.Month() != month || d.Year() != year {
					continue
				}
				if day.Hours.Hours > 0 {
					entry.DaysWorked++
					entry.TotalHours += day.Hours.Hours
				}
			}
		}
	}

	recaps := make([]EmployeeMonthRecap, 0, len(order))
	for _, id := range order {
		recaps = append(recaps, *totals[id])
	}
	return recaps, nil
}

// Filename builds an export file name embedding the subject and the
// current date, e.g. "recap_Opera_2026-08-31.xlsx".
func Filename(prefix, subject, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", prefix, sanitize(subject), time.Now().Format(models.DateFormat), ext)
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer(" ", "-", "/", "-", "\\", "-", ":", "-")
	return replacer.Replace(s)
}

func displayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}
