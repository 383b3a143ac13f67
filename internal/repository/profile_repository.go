package repository

import (
	"context"

	"gorm.io/gorm"

	"meetmii/internal/db"
	"meetmii/internal/models"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	Save(ctx context.Context, profile *models.Profile) error
	FindByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	FindByUsername(ctx context.Context, username string) (*models.Profile, error)
	HealthCheck(ctx context.Context) error
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository builds a GORM-backed repository.
func NewProfileRepository(gormDB *gorm.DB) ProfileRepository {
	return &profileRepository{db: gormDB}
}

// Save inserts the profile when ID is zero and updates it otherwise.
func (r *profileRepository) Save(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *profileRepository) FindByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (r *profileRepository) HealthCheck(ctx context.Context) error {
	return db.Ping(ctx, r.db)
}
