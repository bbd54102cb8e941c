package stores

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFoods returns every food ordered by name.
func (s *Store) ListFoods(ctx context.Context) (foods []Food, err error) {
	err = s.db.WithContext(ctx).Order("name").Find(&foods).Error
	if err != nil {
		return nil, storeError("listing foods", err)
	}

	return foods, nil
}

// CreateFood inserts f.  A taken name is [ErrDuplicateName]; a taken barcode
// is [ErrConflict].
func (s *Store) CreateFood(ctx context.Context, f *Food) (err error) {
	return s.createNamed(ctx, &Food{}, f.Name, f)
}

// ListExercises returns the exercises ordered by name.  A non-empty nameLike
// keeps only names containing it, case-insensitively.
func (s *Store) ListExercises(ctx context.Context, nameLike string) (exs []Exercise, err error) {
	q := s.db.WithContext(ctx).Order("name")
	if nameLike = strings.TrimSpace(nameLike); nameLike != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(nameLike)+"%")
	}

	if err = q.Find(&exs).Error; err != nil {
		return nil, storeError("listing exercises", err)
	}

	return exs, nil
}

// CreateExercise inserts e.  A taken name is [ErrDuplicateName].
func (s *Store) CreateExercise(ctx context.Context, e *Exercise) (err error) {
	return s.createNamed(ctx, &Exercise{}, e.Name, e)
}

// createNamed inserts row after checking that no row of model has name.
func (s *Store) createNamed(ctx context.Context, model any, name string, row any) (err error) {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, existsErr := s.withTx(tx).exists(ctx, model, "name = ?", name)
		if existsErr != nil {
			return storeError("checking name", existsErr)
		} else if taken {
			return ErrDuplicateName
		}

		return storeError("inserting", tx.Omit(clause.Associations).Create(row).Error)
	})
}
