package service

import (
	"context"
	"strings"

	"decidely-be/internal/dto"
	"decidely-be/internal/entity"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/repository/scope"
	"decidely-be/internal/repository/specification"
	"decidely-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IJournalService interface {
	List(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.JournalListResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateJournalEntryRequest) (*dto.JournalEntryResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.JournalEntryResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type journalService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewJournalService(uowFactory unitofwork.RepositoryFactory) IJournalService {
	return &journalService{
		uowFactory: uowFactory,
	}
}

func (s *journalService) List(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.JournalListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	owned := specification.UserOwnedBy{UserID: userId}

	total, err := uow.JournalRepository().Count(ctx, owned)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := uow.JournalRepository().FindAll(ctx,
		owned,
		specification.Scoped(scope.OrderByCreatedDesc),
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.JournalListResponse{Items: make([]dto.JournalEntryResponse, 0, len(entries)), Total: total}
	for _, e := range entries {
		res.Items = append(res.Items, toJournalResponse(e))
	}
	return res, nil
}

func (s *journalService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateJournalEntryRequest) (*dto.JournalEntryResponse, error) {
	options := make([]string, 0, len(req.Options))
	for _, o := range req.Options {
		if o = strings.TrimSpace(o); o != "" {
			options = append(options, o)
		}
	}

	entry := &entity.JournalEntry{
		Id:         uuid.New(),
		UserId:     userId,
		Title:      strings.TrimSpace(req.Title),
		Context:    req.Context,
		Options:    options,
		Decision:   req.Decision,
		Reflection: req.Reflection,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.JournalRepository().Create(ctx, entry); err != nil {
		return nil, err
	}

	res := toJournalResponse(entry)
	return &res, nil
}

func (s *journalService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.JournalEntryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	entry, err := uow.JournalRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, serverutils.NotFound("Journal entry not found")
	}
	res := toJournalResponse(entry)
	return &res, nil
}

func (s *journalService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	entry, err := uow.JournalRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if entry == nil {
		return serverutils.NotFound("Journal entry not found")
	}
	return uow.JournalRepository().Delete(ctx, id)
}

func toJournalResponse(e *entity.JournalEntry) dto.JournalEntryResponse {
	options := e.Options
	if options == nil {
		options = []string{}
	}
	return dto.JournalEntryResponse{
		Id:         e.Id,
		Title:      e.Title,
		Context:    e.Context,
		Options:    options,
		Decision:   e.Decision,
		Reflection: e.Reflection,
		CreatedAt:  e.CreatedAt,
	}
}
