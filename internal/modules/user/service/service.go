package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"anoa.com/rickmortyapi/internal/entity"
	adminDto "anoa.com/rickmortyapi/internal/modules/admin/dto"
	"anoa.com/rickmortyapi/internal/modules/user/dto"
	"anoa.com/rickmortyapi/internal/modules/user/repository"
	"anoa.com/rickmortyapi/internal/serializer"
	"anoa.com/rickmortyapi/pkg/apperror"
	commonDto "anoa.com/rickmortyapi/pkg/dto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errInvalidCredentials = apperror.Unauthorized("invalid credentials")

// Unknown emails are checked against this hash so a miss costs as much as a
// wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("no-such-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return hash
})

type UserService interface {
	Signup(ctx context.Context, req dto.CreateUserRequest) (*commonDto.UserResponse, error)
	GetUser(ctx context.Context, id uint) (*commonDto.UserResponse, error)
	ListUsers(ctx context.Context) ([]commonDto.UserResponse, error)
	UpdateUser(ctx context.Context, id uint, req dto.UpdateUserRequest) (*commonDto.UserResponse, error)
	DeleteUser(ctx context.Context, id uint) error

	// Administrative variants may also change the account flags.
	AdminCreateUser(ctx context.Context, req adminDto.CreateUserInput) (*commonDto.UserResponse, error)
	AdminUpdateUser(ctx context.Context, id uint, req adminDto.UpdateUserInput) (*commonDto.UserResponse, error)
}

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Profile(ctx context.Context, userID uint) (*dto.ProfileResponse, error)
}

type userService struct {
	repo       repository.UserRepository
	bcryptCost int
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo, bcryptCost: bcrypt.DefaultCost}
}

type authService struct {
	repo     repository.UserRepository
	limiter  *LoginLimiter
	secret   string
	tokenTTL time.Duration
	compare  func(hash, password []byte) error
}

func NewAuthService(repo repository.UserRepository, limiter *LoginLimiter, secret string, tokenTTL time.Duration) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &authService{
		repo:     repo,
		limiter:  limiter,
		secret:   secret,
		tokenTTL: tokenTTL,
		compare:  bcrypt.CompareHashAndPassword,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Signup(ctx context.Context, req dto.CreateUserRequest) (*commonDto.UserResponse, error) {
	return s.create(ctx, req.Email, req.Password, true, false)
}

func (s *userService) AdminCreateUser(ctx context.Context, req adminDto.CreateUserInput) (*commonDto.UserResponse, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return s.create(ctx, req.Email, req.Password, active, req.IsAdmin)
}

func (s *userService) create(ctx context.Context, email, password string, active, admin bool) (*commonDto.UserResponse, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperror.InvalidInput("email and password are required")
	}

	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     active,
		IsAdmin:      admin,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, err
	}

	return serializer.User(user), nil
}

// ensureEmailFree fails with Conflict when email belongs to a user other than selfID.
func (s *userService) ensureEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return apperror.Conflict("email already registered")
	}
	return nil
}

func (s *userService) GetUser(ctx context.Context, id uint) (*commonDto.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return serializer.User(user), nil
}

func (s *userService) find(ctx context.Context, id uint) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]commonDto.UserResponse, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return serializer.Users(users), nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, req dto.UpdateUserRequest) (*commonDto.UserResponse, error) {
	return s.update(ctx, id, req.Email, req.Password, nil, nil)
}

func (s *userService) AdminUpdateUser(ctx context.Context, id uint, req adminDto.UpdateUserInput) (*commonDto.UserResponse, error) {
	return s.update(ctx, id, req.Email, req.Password, req.IsActive, req.IsAdmin)
}

func (s *userService) update(ctx context.Context, id uint, email, password *string, active, admin *bool) (*commonDto.UserResponse, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if email != nil {
		normalized := normalizeEmail(*email)
		if normalized == "" {
			return nil, apperror.InvalidInput("email must not be empty")
		}
		if normalized != user.Email {
			if err := s.ensureEmailFree(ctx, normalized, user.ID); err != nil {
				return nil, err
			}
			user.Email = normalized
		}
	}
	if password != nil {
		if *password == "" {
			return nil, apperror.InvalidInput("password must not be empty")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if active != nil {
		user.IsActive = *active
	}
	if admin != nil {
		user.IsAdmin = *admin
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("email already registered")
		}
		return nil, err
	}

	return s.GetUser(ctx, id)
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("user not found")
		}
		return err
	}
	return nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	email := normalizeEmail(input.Email)

	if ok, retryAfter := s.limiter.Allow(ctx, email); !ok {
		return nil, apperror.RateLimited(fmt.Sprintf("too many failed login attempts, retry in %s", retryAfter.Round(time.Second)))
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_ = s.compare(dummyHash(), []byte(input.Password))
			s.limiter.RegisterFailure(ctx, email)
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := s.compare([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.limiter.RegisterFailure(ctx, email)
		return nil, errInvalidCredentials
	}

	if !user.IsActive {
		return nil, apperror.Unauthorized("account is disabled")
	}

	s.limiter.Reset(ctx, email)

	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		UserID:      user.ID,
	}, nil
}

func (s *authService) Profile(ctx context.Context, userID uint) (*dto.ProfileResponse, error) {
	user, err := s.repo.FindAccountByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("user no longer exists")
		}
		return nil, err
	}

	return &dto.ProfileResponse{LoggedInAs: user.Email, ID: user.ID}, nil
}

// generateToken issues an HS256 token identifying the user and nothing else.
func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
