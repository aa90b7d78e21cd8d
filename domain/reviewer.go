package domain

import "errors"

var (
	MessageSuccessRegister = "reviewer registered successfully"
	MessageSuccessLogin    = "login successful"
	MessageSuccessMe       = "profile retrieved successfully"

	MessageFailedRegister = "failed to register reviewer"
	MessageFailedLogin    = "failed to login"
	MessageFailedMe       = "failed to retrieve profile"

	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrCredentialsInvalid = errors.New("invalid email or password")
	ErrProfileNotFound    = errors.New("profile not found")
)

type (
	RegisterReviewerRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}

	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}

	ProfileResponse struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
)
