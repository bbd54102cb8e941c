package stores

import (
	"context"
	"time"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/MrEthical07/fittrack"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// type check
var _ fittrack.UserProvider = (*Store)(nil)

// GetUserByUsername implements the [fittrack.UserProvider] interface for
// *Store.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (rec fittrack.UserRecord, err error) {
	var u User
	err = s.db.WithContext(ctx).Where("username = ?", username).Take(&u).Error

	return userRecord(&u, err)
}

// GetUserByID implements the [fittrack.UserProvider] interface for *Store.
func (s *Store) GetUserByID(ctx context.Context, id int64) (rec fittrack.UserRecord, err error) {
	var u User
	err = s.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error

	return userRecord(&u, err)
}

// UpdatePasswordHash implements the [fittrack.UserProvider] interface for
// *Store.  It also clears the first-login flag.
func (s *Store) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) (err error) {
	res := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(map[string]any{
		"password":    passwordHash,
		"first_login": false,
	})
	if res.Error != nil {
		return storeError("updating password", res.Error)
	} else if res.RowsAffected == 0 {
		return fittrack.ErrUserNotFound
	}

	return nil
}

func userRecord(u *User, err error) (fittrack.UserRecord, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fittrack.UserRecord{}, fittrack.ErrUserNotFound
	} else if err != nil {
		return fittrack.UserRecord{}, storeError("reading user", err)
	}

	return fittrack.UserRecord{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.Password,
		Type:         u.Type,
	}, nil
}

// ListUsers returns every user ordered by id.
func (s *Store) ListUsers(ctx context.Context) (users []User, err error) {
	err = s.db.WithContext(ctx).Order("id").Find(&users).Error
	if err != nil {
		return nil, storeError("listing users", err)
	}

	return users, nil
}

// User returns the user with id or [ErrNotFound].
func (s *Store) User(ctx context.Context, id int64) (u *User, err error) {
	u = &User{}
	err = s.db.WithContext(ctx).Where("id = ?", id).Take(u).Error
	if err != nil {
		return nil, storeError("reading user", err)
	}

	return u, nil
}

// CreateUser inserts u.  The username is checked before the email, and u.ID
// is set on success.  u.Password must already be hashed.
func (s *Store) CreateUser(ctx context.Context, u *User) (err error) {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txs := s.withTx(tx)
		if err = txs.checkUnique(ctx, 0, u.Username, u.Email); err != nil {
			return err
		}

		u.FirstLogin = true
		if u.Type == "" {
			u.Type = fittrack.UserTypeUser
		}

		return storeError("creating user", tx.Omit(clause.Associations).Create(u).Error)
	})
}

// checkUnique reports taken usernames and emails, ignoring the row selfID.
// Empty values are not checked.
func (s *Store) checkUnique(ctx context.Context, selfID int64, username, email string) (err error) {
	if username != "" {
		taken, existsErr := s.exists(ctx, &User{}, "username = ? AND id <> ?", username, selfID)
		if existsErr != nil {
			return storeError("checking username", existsErr)
		} else if taken {
			return ErrDuplicateUsername
		}
	}

	if email != "" {
		taken, existsErr := s.exists(ctx, &User{}, "email = ? AND id <> ?", email, selfID)
		if existsErr != nil {
			return storeError("checking email", existsErr)
		} else if taken {
			return ErrDuplicateEmail
		}
	}

	return nil
}

// UserPatch is a partial profile update.  Nil fields are left alone.  The
// password, id, role and timestamps are not part of it.
type UserPatch struct {
	Username      *string        `json:"username" validate:"omitempty,min=3,max=50"`
	Name          *string        `json:"name" validate:"omitempty,min=1,max=100"`
	LastName      *string        `json:"lastName" validate:"omitempty,min=1,max=100"`
	Email         *string        `json:"email" validate:"omitempty,email"`
	Height        *float64       `json:"height" validate:"omitempty,gt=0,lt=300"`
	Weight        *float64       `json:"weight" validate:"omitempty,gt=0,lt=700"`
	TargetWeight  *float64       `json:"targetWeight" validate:"omitempty,gt=0,lt=700"`
	Country       *string        `json:"country" validate:"omitempty,max=100"`
	City          *string        `json:"city" validate:"omitempty,max=100"`
	Phone         *string        `json:"phone" validate:"omitempty,max=32"`
	Occupation    *string        `json:"occupation" validate:"omitempty,max=100"`
	DateOfBirth   *time.Time     `json:"dateOfBirth"`
	Gender        *Gender        `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER"`
	ActivityLevel *ActivityLevel `json:"activityLevel" validate:"omitempty,oneof=SEDENTARY LIGHT MODERATE ACTIVE EXTREME"`
	FirstLogin    *bool          `json:"firstLogin"`
}

// columns returns the set fields keyed by column name.
func (p *UserPatch) columns() (cols map[string]any) {
	cols = map[string]any{}
	set := func(col string, ok bool, v any) {
		if ok {
			cols[col] = v
		}
	}

	set("username", p.Username != nil, deref(p.Username))
	set("name", p.Name != nil, deref(p.Name))
	set("last_name", p.LastName != nil, deref(p.LastName))
	set("email", p.Email != nil, deref(p.Email))
	set("height", p.Height != nil, p.Height)
	set("weight", p.Weight != nil, p.Weight)
	set("target_weight", p.TargetWeight != nil, p.TargetWeight)
	set("country", p.Country != nil, deref(p.Country))
	set("city", p.City != nil, deref(p.City))
	set("phone", p.Phone != nil, deref(p.Phone))
	set("occupation", p.Occupation != nil, deref(p.Occupation))
	set("date_of_birth", p.DateOfBirth != nil, p.DateOfBirth)
	set("gender", p.Gender != nil, deref(p.Gender))
	set("activity_level", p.ActivityLevel != nil, deref(p.ActivityLevel))
	set("first_login", p.FirstLogin != nil, deref(p.FirstLogin))

	return cols
}

// Empty reports whether p changes nothing.
func (p *UserPatch) Empty() (ok bool) {
	return len(p.columns()) == 0
}

func deref[T any](p *T) (v T) {
	if p != nil {
		v = *p
	}

	return v
}

// UpdateUser applies p to the user with id and returns the updated row.  A
// changed weight is also recorded in the weight history with the
// PROFILE_UPDATE source.
func (s *Store) UpdateUser(ctx context.Context, id int64, p *UserPatch) (u *User, err error) {
	cols := p.columns()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (txErr error) {
		txs := s.withTx(tx)
		u, txErr = txs.User(ctx, id)
		if txErr != nil {
			return txErr
		}

		txErr = txs.checkUnique(ctx, id, deref(p.Username), deref(p.Email))
		if txErr != nil {
			return txErr
		}

		if len(cols) == 0 {
			return nil
		}

		txErr = tx.Model(&User{}).Where("id = ?", id).Updates(cols).Error
		if txErr != nil {
			return storeError("updating user", txErr)
		}

		if p.Weight != nil && (u.Weight == nil || *u.Weight != *p.Weight) {
			txErr = txs.AddWeight(ctx, &WeightEntry{
				UserID: id,
				Weight: *p.Weight,
				Date:   s.clock.Now(),
				Source: WeightSourceProfileUpdate,
				Notes:  "Updated from profile",
			})
			if txErr != nil {
				return txErr
			}
		}

		u, txErr = txs.User(ctx, id)

		return txErr
	})
	if err != nil {
		return nil, err
	}

	return u, nil
}
