package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "krishi/internal/errors"
	"krishi/internal/model"
)

type gormUserRepository struct {
	db     *gorm.DB
	hasher hasher
}

// NewGormUserRepository builds a GORM-backed repository. The db must be opened with
// TranslateError so unique-index violations surface as gorm.ErrDuplicatedKey.
func NewGormUserRepository(db *gorm.DB, cost int) (UserRepository, error) {
	h, err := newHasher(cost)
	if err != nil {
		return nil, err
	}
	return &gormUserRepository{db: db, hasher: h}, nil
}

func (r *gormUserRepository) FindByEmailAndPassword(ctx context.Context, email, password string) (*model.User, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.hasher.miss(password)
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if !r.hasher.matches(account.PasswordHash, password) {
		return nil, ErrUserNotFound
	}
	return &account.User, nil
}

func (r *gormUserRepository) Exists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("email = ?", NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormUserRepository) Insert(ctx context.Context, user *model.User, password string) error {
	hashed, err := r.hasher.hash(password)
	if err != nil {
		return err
	}
	account := model.Account{User: *user.Clone(), PasswordHash: hashed}
	account.Email = NormalizeEmail(account.Email)

	err = r.db.WithContext(ctx).Create(&account).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrDuplicateEmail
	}
	return err
}

func (r *gormUserRepository) Update(ctx context.Context, user *model.User) error {
	updated := user.Clone()
	updated.Email = NormalizeEmail(updated.Email)

	// Select("*") writes zero values too: false flags and empty strings are real updates.
	res := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", updated.ID).
		Select("*").Omit("id", "password_hash", "created_at").
		Updates(&model.Account{User: *updated})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return apperrors.ErrDuplicateEmail
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
