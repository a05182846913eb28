package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"decidely-be/internal/dto"
	"decidely-be/internal/entity"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/repository/contract"
	"decidely-be/internal/repository/specification"
	"decidely-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	jwtSecret  string
	tokenTTL   time.Duration
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, jwtSecret string, tokenTTL time.Duration) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		jwtSecret:  jwtSecret,
		tokenTTL:   tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, serverutils.Conflict("Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashStr := string(hash)

	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		FullName:     strings.TrimSpace(req.FullName),
		PasswordHash: &hashStr,
		Role:         entity.UserRoleUser,
	}

	// User and progress row are created together so a new account always
	// has a dashboard to read.
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return nil, serverutils.Conflict("Email already registered")
		}
		return nil, err
	}
	if err := uow.ProgressRepository().Ensure(ctx, user.Id); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: normalizeEmail(req.Email)})
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == nil {
		return nil, serverutils.Unauthorized("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, serverutils.Unauthorized("Invalid email or password")
	}

	return s.issue(user)
}

func (s *authService) Me(ctx context.Context, userId uuid.UUID) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NotFound("User not found")
	}
	res := toUserResponse(user)
	return &res, nil
}

func (s *authService) issue(user *entity.User) (*dto.AuthResponse, error) {
	token, err := serverutils.IssueToken(user.Id, string(user.Role), s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, serverutils.Internal(err)
	}
	return &dto.AuthResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(s.tokenTTL),
		User:      toUserResponse(user),
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserResponse(u *entity.User) dto.UserResponse {
	res := dto.UserResponse{
		Id:                  u.Id,
		Email:               u.Email,
		FullName:            u.FullName,
		Role:                string(u.Role),
		MbtiType:            u.MbtiType,
		DecisionStyle:       u.DecisionStyle,
		PrimaryBias:         u.PrimaryBias,
		OnboardingCompleted: u.OnboardingCompleted,
		CreatedAt:           u.CreatedAt,
	}
	if u.AvatarURL != nil {
		res.AvatarURL = *u.AvatarURL
	}
	return res
}
