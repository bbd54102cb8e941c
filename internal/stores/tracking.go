package stores

import (
	"context"
	"time"

	"gorm.io/gorm/clause"
)

// WeightFilter narrows [Store.ListWeights].  Zero fields do not filter.
type WeightFilter struct {
	// Start and End bound the entry date, both inclusive.
	Start time.Time
	End   time.Time

	Source WeightSource

	// Limit caps the number of entries, newest first.
	Limit int
}

// ListWeights returns the weight history of userID, newest first.
func (s *Store) ListWeights(ctx context.Context, userID int64, f WeightFilter) (entries []WeightEntry, err error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if !f.Start.IsZero() {
		q = q.Where("date >= ?", f.Start.UTC())
	}
	if !f.End.IsZero() {
		q = q.Where("date <= ?", f.End.UTC())
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	if err = q.Order("date DESC").Order("id DESC").Find(&entries).Error; err != nil {
		return nil, storeError("listing weights", err)
	}

	return entries, nil
}

// AddWeight records e.  A zero date means now and an empty source means
// MANUAL.
func (s *Store) AddWeight(ctx context.Context, e *WeightEntry) (err error) {
	if e.Date.IsZero() {
		e.Date = s.clock.Now()
	}
	// SQLite compares timestamps as text, so keep a single zone.
	e.Date = e.Date.UTC()
	if e.Source == "" {
		e.Source = WeightSourceManual
	}

	return storeError("adding weight", s.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error)
}

// ListWorkouts returns the workouts of userID, newest first.
func (s *Store) ListWorkouts(ctx context.Context, userID int64) (ws []Workout, err error) {
	err = s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("id DESC").
		Find(&ws).Error
	if err != nil {
		return nil, storeError("listing workouts", err)
	}

	return ws, nil
}

// CreateWorkout records w.  A zero date means now.
func (s *Store) CreateWorkout(ctx context.Context, w *Workout) (err error) {
	if w.Date.IsZero() {
		w.Date = s.clock.Now()
	}
	w.Date = w.Date.UTC()

	return storeError("creating workout", s.db.WithContext(ctx).Omit(clause.Associations).Create(w).Error)
}
