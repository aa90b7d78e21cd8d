package reviewer

import (
	"context"

	"gorm.io/gorm"

	"Tray-Validation-Backend/entities"
)

type (
	ReviewerRepository interface {
		CreateProfile(ctx context.Context, profile *entities.Profile) error
		GetProfileByEmail(ctx context.Context, email string) (*entities.Profile, error)
		GetProfileByID(ctx context.Context, id string) (*entities.Profile, error)
	}

	reviewerRepository struct {
		db *gorm.DB
	}
)

func NewReviewerRepository(db *gorm.DB) ReviewerRepository {
	return &reviewerRepository{db: db}
}

func (r *reviewerRepository) CreateProfile(ctx context.Context, profile *entities.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *reviewerRepository) GetProfileByEmail(ctx context.Context, email string) (*entities.Profile, error) {
	var profile entities.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *reviewerRepository) GetProfileByID(ctx context.Context, id string) (*entities.Profile, error) {
	var profile entities.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
