package models

import (
	"fmt"
	"time"
)

// DateFormat is the ISO date layout used for week keys and day keys.
const DateFormat = "2006-01-02"

// Employee is a member of a shop roster. CanWorkIn lists the shop IDs
// the employee may be scheduled in.
type Employee struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CanWorkIn []string `json:"can_work_in,omitempty"`
}

// Shop is a physical retail location with its own roster.
type Shop struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CanWorkIn []string   `json:"can_work_in,omitempty"`
	Employees []Employee `json:"employees"`
}

// FindEmployee returns the employee with the given ID, or nil.
func (s *Shop) FindEmployee(id string) *Employee {
	for i := range s.Employees {
		if s.Employees[i].ID == id {
			return &s.Employees[i]
		}
	}
	return nil
}

// Planning maps employee ID -> day key (ISO date) -> slot booleans.
// A true entry means the employee is scheduled for that slot.
type Planning map[string]map[string][]bool

// EnsureDay guarantees a slot array of length slotCount exists for
// (employee, dayKey) and returns it. Shorter legacy arrays are extended,
// longer ones truncated.
func (p Planning) EnsureDay(employee, dayKey string, slotCount int) []bool {
	days, ok := p[employee]
	if !ok {
		days = make(map[string][]bool)
		p[employee] = days
	}
	slots, ok := days[dayKey]
	if !ok || slots == nil {
		slots = make([]bool, slotCount)
		days[dayKey] = slots
		return slots
	}
	if len(slots) != slotCount {
		normalized := make([]bool, slotCount)
		copy(normalized, slots)
		days[dayKey] = normalized
		return normalized
	}
	return slots
}

// Clone returns a deep copy of the planning.
func (p Planning) Clone() Planning {
	out := make(Planning, len(p))
	for emp, days := range p {
		outDays := make(map[string][]bool, len(days))
		for day, slots := range days {
			outSlots := make([]bool, len(slots))
			copy(outSlots, slots)
			outDays[day] = outSlots
		}
		out[emp] = outDays
	}
	return out
}

// ValidationState tracks the lock/validate status of a (shop, week).
type ValidationState struct {
	IsWeekValidated    bool     `json:"is_week_validated"`
	ValidatedEmployees []string `json:"validated_employees"`
	LockedEmployees    []string `json:"locked_employees"`
}

// NewValidationState returns an empty state with non-nil slices.
func NewValidationState() ValidationState {
	return ValidationState{
		ValidatedEmployees: []string{},
		LockedEmployees:    []string{},
	}
}

// IsLocked reports whether the employee is in the locked list.
func (v ValidationState) IsLocked(employee string) bool {
	return contains(v.LockedEmployees, employee)
}

// IsValidated reports whether the employee is in the validated list.
func (v ValidationState) IsValidated(employee string) bool {
	return contains(v.ValidatedEmployees, employee)
}

// WithLocked returns a copy of the state with the employee appended to the
// locked list if not already present.
func (v ValidationState) WithLocked(employee string) ValidationState {
	out := v.clone()
	if !contains(out.LockedEmployees, employee) {
		out.LockedEmployees = append(out.LockedEmployees, employee)
	}
	return out
}

func (v ValidationState) clone() ValidationState {
	out := ValidationState{IsWeekValidated: v.IsWeekValidated}
	out.ValidatedEmployees = append([]string{}, v.ValidatedEmployees...)
	out.LockedEmployees = append([]string{}, v.LockedEmployees...)
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// PaymentPair is a credit/debit amount pair for one payment method.
// Netting happens at read time, never at import time.
type PaymentPair struct {
	Credit float64 `json:"credit"`
	Debit  float64 `json:"debit"`
}

// Net returns credit minus debit. The result may be negative; nothing
// enforces non-negativity.
func (p PaymentPair) Net() float64 {
	return p.Credit - p.Debit
}

// RevenueDay is one imported revenue row: one calendar day for one shop.
type RevenueDay struct {
	ShopID       string                 `json:"shop_id"`
	Date         time.Time              `json:"date"`
	CA           float64                `json:"ca"`
	CAHT         float64                `json:"ca_ht"`
	TVATotale    float64                `json:"tva_totale"`
	Encaissement float64                `json:"encaissement"`
	BC           float64                `json:"bc"`
	Payments     map[string]PaymentPair `json:"payments"`
	BatchID      string                 `json:"batch_id,omitempty"`
	CreatedAt    time.Time              `json:"created_at,omitempty"`
	UpdatedAt    time.Time              `json:"updated_at,omitempty"`
}

// WeekNote is free-form text attached to a (shop, week).
type WeekNote struct {
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MondayOf returns the Monday starting the week containing t,
// truncated to midnight in t's location.
func MondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7 // Sunday
	}
	return day.AddDate(0, 0, -offset)
}

// WeekKeyOf returns the week key (ISO date of the Monday) for t.
func WeekKeyOf(t time.Time) string {
	return MondayOf(t).Format(DateFormat)
}

// ParseWeekKey parses a week key and checks it falls on a Monday.
func ParseWeekKey(weekKey string) (time.Time, error) {
	t, err := time.Parse(DateFormat, weekKey)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse week key %q: %w", weekKey, err)
	}
	if t.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("week key %q is not a Monday", weekKey)
	}
	return t, nil
}

// DayKeys returns the seven ISO day keys of the week, Monday first.
func DayKeys(weekKey string) ([]string, error) {
	monday, err := ParseWeekKey(weekKey)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 7)
	for i := 0; i < 7; i++ {
		keys[i] = monday.AddDate(0, 0, i).Format(DateFormat)
	}
	return keys, nil
}

// DayIndex returns the 0-based index (0 = Monday) of dayKey within the week,
// or -1 if the day does not belong to the week.
func DayIndex(weekKey, dayKey string) int {
	monday, err := ParseWeekKey(weekKey)
	if err != nil {
		return -1
	}
	day, err := time.Parse(DateFormat, dayKey)
	if err != nil {
		return -1
	}
	idx := int(day.Sub(monday).Hours() / 24)
	if idx < 0 || idx > 6 {
		return -1
	}
	return idx
}

// SlotKey builds the validated-slots map key for (employee, dayKey).
func SlotKey(employee, dayKey string) string {
	return employee + "_" + dayKey
}
