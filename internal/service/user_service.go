package service

import (
	"context"
	"strings"
	"time"

	"decidely-be/internal/dto"
	"decidely-be/internal/entity"
	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/repository/scope"
	"decidely-be/internal/repository/specification"
	"decidely-be/internal/repository/unitofwork"
	"decidely-be/pkg/events"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultDirectoryLimit = 20

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	CompleteOnboarding(ctx context.Context, userId uuid.UUID, req *dto.OnboardingRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userId uuid.UUID, req *dto.ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, userId uuid.UUID) error
	ListUsers(ctx context.Context, userId uuid.UUID, query *dto.ListUsersQuery) (*dto.UserListResponse, error)
}

type userService struct {
	uowFactory      unitofwork.RepositoryFactory
	progressService IProgressService
	eventPublisher  events.Publisher
	logger          logger.ILogger
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, progressService IProgressService, eventPublisher events.Publisher, log logger.ILogger) IUserService {
	return &userService{
		uowFactory:      uowFactory,
		progressService: progressService,
		eventPublisher:  eventPublisher,
		logger:          log,
	}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	user, err := s.findUser(ctx, s.uowFactory.NewUnitOfWork(ctx), userId)
	if err != nil {
		return nil, err
	}

	stats, err := s.progressService.Get(ctx, userId)
	if err != nil {
		return nil, err
	}

	return &dto.UserProfileResponse{
		User:     toUserResponse(user),
		Progress: *stats,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	return s.update(ctx, userId, func(user *entity.User) {
		user.FullName = strings.TrimSpace(req.FullName)
		if req.AvatarURL != nil {
			user.AvatarURL = req.AvatarURL
		}
		if req.MbtiType != nil {
			user.MbtiType = strings.ToUpper(*req.MbtiType)
		}
		if req.DecisionStyle != nil {
			user.DecisionStyle = strings.TrimSpace(*req.DecisionStyle)
		}
		if req.PrimaryBias != nil {
			user.PrimaryBias = strings.TrimSpace(*req.PrimaryBias)
		}
	})
}

func (s *userService) CompleteOnboarding(ctx context.Context, userId uuid.UUID, req *dto.OnboardingRequest) (*dto.UserResponse, error) {
	return s.update(ctx, userId, func(user *entity.User) {
		user.MbtiType = strings.ToUpper(req.MbtiType)
		user.DecisionStyle = strings.TrimSpace(req.DecisionStyle)
		user.PrimaryBias = strings.TrimSpace(req.PrimaryBias)
		user.OnboardingCompleted = true
	})
}

func (s *userService) update(ctx context.Context, userId uuid.UUID, apply func(user *entity.User)) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	apply(user)
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}

	res := toUserResponse(user)
	return &res, nil
}

func (s *userService) ChangePassword(ctx context.Context, userId uuid.UUID, req *dto.ChangePasswordRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := s.findUser(ctx, uow, userId)
	if err != nil {
		return err
	}

	if user.PasswordHash == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return serverutils.BadRequest("Current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return serverutils.Internal(err)
	}
	hashStr := string(hash)
	user.PasswordHash = &hashStr

	return uow.UserRepository().Update(ctx, user)
}

// DeleteAccount removes the user together with their progress, decisions,
// journal and every chat thread they take part in.
func (s *userService) DeleteAccount(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if _, err := s.findUser(ctx, uow, userId); err != nil {
		return err
	}

	threads, err := uow.ChatThreadRepository().FindAll(ctx, specification.ThreadParticipant{UserID: userId})
	if err != nil {
		return err
	}
	threadIDs := make([]uuid.UUID, len(threads))
	for i, t := range threads {
		threadIDs[i] = t.Id
	}

	if err := uow.ChatMessageRepository().DeleteByThreadIDs(ctx, threadIDs); err != nil {
		return err
	}
	if err := uow.ChatThreadRepository().DeleteByIDs(ctx, threadIDs); err != nil {
		return err
	}
	if err := uow.JournalRepository().DeleteByUserID(ctx, userId); err != nil {
		return err
	}
	if err := uow.ProgressRepository().DeleteByUserID(ctx, userId); err != nil {
		return err
	}
	if err := uow.UserRepository().Delete(ctx, userId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("UserService", "Account deleted", map[string]interface{}{
		"user_id": userId.String(),
		"threads": len(threadIDs),
	})

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.NewUserDeleted(userId, time.Now())); err != nil {
			s.logger.Warn("UserService", "Failed to publish USER_DELETED event", map[string]interface{}{
				"user_id": userId.String(),
				"error":   err.Error(),
			})
		}
	}
	return nil
}

// ListUsers is the directory used to start a conversation. It never
// includes the caller.
func (s *userService) ListUsers(ctx context.Context, userId uuid.UUID, query *dto.ListUsersQuery) (*dto.UserListResponse, error) {
	page, limit := query.Page, query.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultDirectoryLimit
	}

	filters := []specification.Specification{specification.ExcludeID{ID: userId}}
	if q := strings.TrimSpace(query.Search); q != "" {
		filters = append(filters, specification.NameOrEmailLike{Query: q})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.UserRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	specs := append(filters,
		specification.OrderBy{Field: "full_name"},
		specification.Scoped(scope.OrderByCreatedAsc),
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	users, err := uow.UserRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.DirectoryUserResponse, len(users))
	for i, u := range users {
		items[i] = dto.DirectoryUserResponse{
			Id:       u.Id,
			FullName: u.FullName,
			Email:    u.Email,
		}
		if u.AvatarURL != nil {
			items[i].AvatarURL = *u.AvatarURL
		}
	}

	return &dto.UserListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *userService) findUser(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.User, error) {
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, serverutils.NotFound("User not found")
	}
	return user, nil
}
