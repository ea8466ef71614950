package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"planhebdo/internal/models"
)

// putDocument serializes v and upserts it under (shopID, weekKey, kind).
func (s *Store) putDocument(ctx context.Context, shopID, weekKey, kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", kind, err)
	}
	_, err = s.ExecContext(ctx, `
		INSERT INTO documents (shop_id, week_key, kind, version, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(shop_id, week_key, kind) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		shopID, weekKey, kind, SchemaVersion, string(payload), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("put %s document: %w", kind, err)
	}
	return nil
}

// getDocument decodes the document into out. The bool reports whether a
// document existed. The stored version is recorded, not enforced.
func (s *Store) getDocument(ctx context.Context, shopID, weekKey, kind string, out any) (bool, error) {
	var payload string
	var version int
	err := s.QueryRowContext(ctx,
		"SELECT version, payload FROM documents WHERE shop_id = ? AND week_key = ? AND kind = ?",
		shopID, weekKey, kind,
	).Scan(&version, &payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s document: %w", kind, err)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, fmt.Errorf("decode %s document (version %d): %w", kind, version, err)
	}
	return true, nil
}

// DeleteDocument removes one document. Missing rows are not an error.
func (s *Store) DeleteDocument(ctx context.Context, shopID, weekKey, kind string) error {
	_, err := s.ExecContext(ctx,
		"DELETE FROM documents WHERE shop_id = ? AND week_key = ? AND kind = ?",
		shopID, weekKey, kind,
	)
	return err
}

// SavePlanning persists the planning document for (shop, week).
func (s *Store) SavePlanning(ctx context.Context, shopID, weekKey string, p models.Planning) error {
	return s.putDocument(ctx, shopID, weekKey, KindPlanning, p)
}

// LoadPlanning returns the planning for (shop, week), or an empty planning
// when none was saved yet.
func (s *Store) LoadPlanning(ctx context.Context, shopID, weekKey string) (models.Planning, error) {
	p := models.Planning{}
	if _, err := s.getDocument(ctx, shopID, weekKey, KindPlanning, &p); err != nil {
		return nil, err
	}
	if p == nil {
		p = models.Planning{}
	}
	return p, nil
}

// SaveSelectedEmployees persists the week's employee selection.
func (s *Store) SaveSelectedEmployees(ctx context.Context, shopID, weekKey string, selected []string) error {
	if selected == nil {
		selected = []string{}
	}
	return s.putDocument(ctx, shopID, weekKey, KindSelectedEmployees, selected)
}

// LoadSelectedEmployees returns the week's selection, defaulting to empty.
func (s *Store) LoadSelectedEmployees(ctx context.Context, shopID, weekKey string) ([]string, error) {
	var selected []string
	if _, err := s.getDocument(ctx, shopID, weekKey, KindSelectedEmployees, &selected); err != nil {
		return nil, err
	}
	if selected == nil {
		selected = []string{}
	}
	return selected, nil
}

// SaveValidation persists the validation state synchronously.
func (s *Store) SaveValidation(ctx context.Context, shopID, weekKey string, state models.ValidationState) error {
	return s.putDocument(ctx, shopID, weekKey, KindValidation, state)
}

// LoadValidation returns the validation state, defaulting to an empty state.
func (s *Store) LoadValidation(ctx context.Context, shopID, weekKey string) (models.ValidationState, error) {
	state := models.NewValidationState()
	if _, err := s.getDocument(ctx, shopID, weekKey, KindValidation, &state); err != nil {
		return state, err
	}
	if state.ValidatedEmployees == nil {
		state.ValidatedEmployees = []string{}
	}
	if state.LockedEmployees == nil {
		state.LockedEmployees = []string{}
	}
	return state, nil
}

// SaveValidatedSlots persists the per-slot validation map, keyed
// "employee_day".
func (s *Store) SaveValidatedSlots(ctx context.Context, shopID, weekKey string, slots map[string]bool) error {
	if slots == nil {
		slots = map[string]bool{}
	}
	return s.putDocument(ctx, shopID, weekKey, KindValidatedSlots, slots)
}

// LoadValidatedSlots returns the per-slot validation map.
func (s *Store) LoadValidatedSlots(ctx context.Context, shopID, weekKey string) (map[string]bool, error) {
	slots := map[string]bool{}
	if _, err := s.getDocument(ctx, shopID, weekKey, KindValidatedSlots, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// SaveNote persists the week note.
func (s *Store) SaveNote(ctx context.Context, shopID, weekKey, text string) error {
	return s.putDocument(ctx, shopID, weekKey, KindNotes, models.WeekNote{
		Text:      text,
		UpdatedAt: time.Now(),
	})
}

// LoadNote returns the week note, empty when absent.
func (s *Store) LoadNote(ctx context.Context, shopID, weekKey string) (models.WeekNote, error) {
	var note models.WeekNote
	if _, err := s.getDocument(ctx, shopID, weekKey, KindNotes, &note); err != nil {
		return note, err
	}
	return note, nil
}
