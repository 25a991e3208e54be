package services

import (
	"errors"

	"gorm.io/gorm"

	"task-tracker/internal/models"
)

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Username string `json:"username" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

type UserService interface {
	SignUp(db *gorm.DB, req SignUpRequest) (*TokenResponse, error)
	Login(db *gorm.DB, req LoginRequest) (*TokenResponse, error)
	GetUserByEmail(db *gorm.DB, email string) (*models.User, error)
	GetUserByID(db *gorm.DB, userID uint) (*models.User, error)
}

type UserServiceImpl struct {
	tokens     *TokenService
	bcryptCost int
}

func NewUserService(tokens *TokenService, bcryptCost int) *UserServiceImpl {
	return &UserServiceImpl{tokens: tokens, bcryptCost: bcryptCost}
}

func (s *UserServiceImpl) GetUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByID loads a user row or fails with UserNotFoundError carrying the
// requested ID.
func (s *UserServiceImpl) GetUserByID(db *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UserNotFoundError{UserID: userID}
		}
		return nil, err
	}
	return &user, nil
}

// SignUp registers a new user with the default role and returns a freshly
// issued access token for them.
func (s *UserServiceImpl) SignUp(db *gorm.DB, req SignUpRequest) (*TokenResponse, error) {
	if _, err := s.GetUserByEmail(db, req.Email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hashedPassword, err := HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:    req.Email,
		Username: req.Username,
		Password: hashedPassword,
		Role:     models.RoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueToken(user.Email, 0)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: token}, nil
}

// Login verifies the credentials and issues a new access token. A missing
// user and a wrong password are indistinguishable to the caller.
func (s *UserServiceImpl) Login(db *gorm.DB, req LoginRequest) (*TokenResponse, error) {
	user, err := s.GetUserByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(user.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(user.Email, 0)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: token}, nil
}
