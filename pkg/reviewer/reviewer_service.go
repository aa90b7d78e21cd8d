package reviewer

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"Tray-Validation-Backend/domain"
	"Tray-Validation-Backend/entities"
	"Tray-Validation-Backend/pkg/jwt"
)

type (
	ReviewerService interface {
		Register(ctx context.Context, req domain.RegisterReviewerRequest) (*domain.ProfileResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
		Me(ctx context.Context, reviewerID string) (*domain.ProfileResponse, error)
	}

	reviewerService struct {
		reviewerRepository ReviewerRepository
		jwtService         jwt.JWTService
	}
)

func NewReviewerService(reviewerRepository ReviewerRepository, jwtService jwt.JWTService) ReviewerService {
	return &reviewerService{
		reviewerRepository: reviewerRepository,
		jwtService:         jwtService,
	}
}

func (s *reviewerService) Register(ctx context.Context, req domain.RegisterReviewerRequest) (*domain.ProfileResponse, error) {
	if existing, _ := s.reviewerRepository.GetProfileByEmail(ctx, req.Email); existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	profile := &entities.Profile{
		ID:       uuid.New(),
		Email:    req.Email,
		Name:     req.Name,
		Password: string(hashed),
		Role:     domain.RoleReviewer,
	}
	if err := s.reviewerRepository.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	return &domain.ProfileResponse{
		ID:    profile.ID.String(),
		Email: profile.Email,
		Name:  profile.Name,
		Role:  profile.Role,
	}, nil
}

func (s *reviewerService) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	profile, err := s.reviewerRepository.GetProfileByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.ErrCredentialsInvalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return nil, domain.ErrCredentialsInvalid
	}

	token := s.jwtService.GenerateTokenUser(profile.ID.String(), profile.Role)
	return &domain.LoginResponse{Token: token, Role: profile.Role}, nil
}

func (s *reviewerService) Me(ctx context.Context, reviewerID string) (*domain.ProfileResponse, error) {
	profile, err := s.reviewerRepository.GetProfileByID(ctx, reviewerID)
	if err != nil {
		return nil, domain.ErrProfileNotFound
	}
	return &domain.ProfileResponse{
		ID:    profile.ID.String(),
		Email: profile.Email,
		Name:  profile.Name,
		Role:  profile.Role,
	}, nil
}
