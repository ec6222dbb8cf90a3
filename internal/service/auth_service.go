package service

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/noteduco342/bible-reading-backend/internal/models"
	"github.com/noteduco342/bible-reading-backend/internal/repository"
	"github.com/noteduco342/bible-reading-backend/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenTTL is how long an access token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// ScopeInvalidator drops cached reads for a partition scope. A nil groupID is
// the personal scope.
type ScopeInvalidator interface {
	Invalidate(ctx context.Context, groupID *uint)
}

type AuthService struct {
	userRepo    repository.UserRepositoryInterface
	groupRepo   repository.GroupRepositoryInterface
	invalidator ScopeInvalidator
	now         func() time.Time
}

func NewAuthService(userRepo repository.UserRepositoryInterface, groupRepo repository.GroupRepositoryInterface, invalidator ScopeInvalidator) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		groupRepo:   groupRepo,
		invalidator: invalidator,
		now:         time.Now,
	}
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,password"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	NewPassword string `json:"newPassword" validate:"required,password"`
}

type AuthResponse struct {
	ID                 uint                `json:"id"`
	Username           string              `json:"username"`
	MustChangePassword bool                `json:"must_change_password"`
	Token              string              `json:"token"`
	User               models.UserResponse `json:"user"`
	Message            string              `json:"message"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	input.Username = validation.NormalizeUsername(input.Username)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, input.Username); err == nil {
		return nil, newError(ErrConflict, "username_taken", "이미 사용 중인 사용자 이름입니다.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hash := string(hashedPassword)

	user := &models.User{
		Username:           input.Username,
		PasswordHash:       &hash,
		MustChangePassword: false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks the password and issues a token. Accounts provisioned without
// a password accept the temporary password once and are told to change it.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	input.Username = validation.NormalizeUsername(input.Username)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	message := "로그인되었습니다."
	if !user.HasPassword() {
		if !user.MustChangePassword || input.Password != models.TemporaryPassword {
			return nil, errBadCredentials
		}
		message = "임시 비밀번호로 로그인했습니다. 비밀번호를 변경해주세요."
	} else if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errBadCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		ID:                 user.ID,
		Username:           user.Username,
		MustChangePassword: user.MustChangePassword,
		Token:              token,
		User:               user.ToResponse(),
		Message:            message,
	}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID uint, input ChangePasswordInput) (*models.User, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword))
	if err != nil {
		return nil, notFound(err, errUserNotFound)
	}
	return user, nil
}

// DeleteAccount removes the caller's account and everything it owns. Only the
// account itself may do this.
func (s *AuthService) DeleteAccount(ctx context.Context, callerID, targetID uint) error {
	if callerID != targetID {
		return errSelfOnly
	}

	var scopes []models.GroupSummary
	if s.groupRepo != nil {
		groups, err := s.groupRepo.ListForUser(ctx, targetID)
		if err != nil {
			return err
		}
		scopes = groups
	}

	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		return notFound(err, errUserNotFound)
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, nil)
		for _, g := range scopes {
			id := g.ID
			s.invalidator.Invalidate(ctx, &id)
		}
	}
	return nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      s.now().Add(TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}
