package service

import (
	"context"
	"strings"
	"time"

	"decidely-be/internal/dto"
	"decidely-be/internal/entity"
	"decidely-be/internal/pkg/logger"
	"decidely-be/internal/pkg/serverutils"
	"decidely-be/internal/repository/memory"
	"decidely-be/internal/repository/scope"
	"decidely-be/internal/repository/specification"
	"decidely-be/internal/repository/unitofwork"
	"decidely-be/pkg/events"

	"github.com/google/uuid"
)

const (
	defaultScenarioPage  = 1
	defaultScenarioLimit = 20
)

type IScenarioService interface {
	List(ctx context.Context, query *dto.ListScenariosQuery) (*dto.ScenarioListResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ScenarioResponse, error)
	Create(ctx context.Context, creatorId uuid.UUID, req *dto.CreateScenarioRequest) (*dto.ScenarioResponse, error)
	Share(ctx context.Context, id uuid.UUID) (*dto.ShareScenarioResponse, error)
	DailyChallenges(ctx context.Context, userId uuid.UUID) ([]*dto.DailyChallengeResponse, error)
}

type scenarioService struct {
	uowFactory     unitofwork.RepositoryFactory
	cache          *memory.ScenarioCache
	eventPublisher events.Publisher
	shareBaseURL   string
	location       *time.Location
	clock          func() time.Time
	logger         logger.ILogger
}

func NewScenarioService(
	uowFactory unitofwork.RepositoryFactory,
	cache *memory.ScenarioCache,
	eventPublisher events.Publisher,
	shareBaseURL string,
	location *time.Location,
	log logger.ILogger,
) IScenarioService {
	if location == nil {
		location = time.UTC
	}
	return &scenarioService{
		uowFactory:     uowFactory,
		cache:          cache,
		eventPublisher: eventPublisher,
		shareBaseURL:   strings.TrimRight(shareBaseURL, "/"),
		location:       location,
		clock:          time.Now,
		logger:         log,
	}
}

func (s *scenarioService) List(ctx context.Context, query *dto.ListScenariosQuery) (*dto.ScenarioListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	page := query.Page
	if page <= 0 {
		page = defaultScenarioPage
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultScenarioLimit
	}

	filters := make([]specification.Specification, 0, 3)
	if query.Category != "" {
		filters = append(filters, specification.ByCategory{Category: query.Category})
	}
	if query.Difficulty > 0 {
		filters = append(filters, specification.ByDifficulty{Difficulty: query.Difficulty})
	}
	if query.Type != "" {
		filters = append(filters, specification.ByScenarioType{Type: query.Type})
	}

	total, err := uow.ScenarioRepository().Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	specs := append(filters,
		specification.Scoped(scope.OrderByCreatedDesc),
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	scenarios, err := uow.ScenarioRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ScenarioResponse, 0, len(scenarios))
	for _, sc := range scenarios {
		items = append(items, toScenarioResponse(sc))
	}

	return &dto.ScenarioListResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *scenarioService) Show(ctx context.Context, id uuid.UUID) (*dto.ScenarioResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scenario, err := findScenario(ctx, uow, s.cache, id)
	if err != nil {
		return nil, err
	}
	res := toScenarioResponse(scenario)
	return &res, nil
}

func (s *scenarioService) Create(ctx context.Context, creatorId uuid.UUID, req *dto.CreateScenarioRequest) (*dto.ScenarioResponse, error) {
	scenario, err := buildScenario(creatorId, req)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ScenarioRepository().Create(ctx, scenario); err != nil {
		return nil, err
	}

	s.cache.Save(scenario)
	if scenario.Type == entity.ScenarioTypeDailyChallenge {
		s.cache.InvalidateDaily(scenario.ActiveDate)
	}

	if s.eventPublisher != nil {
		evt := events.NewScenarioPublished(scenario.Id, scenario.Title, scenario.CreatedAt)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("ScenarioService", "Failed to publish scenario event", map[string]interface{}{
				"scenario_id": scenario.Id,
				"error":       err.Error(),
			})
		}
	}

	res := toScenarioResponse(scenario)
	return &res, nil
}

func (s *scenarioService) Share(ctx context.Context, id uuid.UUID) (*dto.ShareScenarioResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scenario, err := findScenario(ctx, uow, s.cache, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShareScenarioResponse{
		Id:          scenario.Id,
		Title:       scenario.Title,
		Description: scenario.Description,
		Category:    scenario.Category,
		Difficulty:  scenario.Difficulty,
		XpReward:    scenario.XpReward,
		Type:        string(scenario.Type),
		ShareURL:    s.shareBaseURL + "/dashboard/scenarios/" + scenario.Id.String(),
	}, nil
}

func (s *scenarioService) DailyChallenges(ctx context.Context, userId uuid.UUID) ([]*dto.DailyChallengeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	today := s.clock().In(s.location).Format(entity.ActiveDateLayout)

	challenges, ok := s.cache.GetDaily(today)
	if !ok {
		var err error
		challenges, err = uow.ScenarioRepository().FindAll(ctx,
			specification.ByScenarioType{Type: string(entity.ScenarioTypeDailyChallenge)},
			specification.ActiveOn{Date: today},
			specification.Scoped(scope.OrderByCreatedAsc),
		)
		if err != nil {
			return nil, err
		}
		s.cache.SaveDaily(today, challenges)
	}

	result := make([]*dto.DailyChallengeResponse, 0, len(challenges))
	if len(challenges) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(challenges))
	for _, c := range challenges {
		ids = append(ids, c.Id)
	}
	done, err := uow.ProgressRepository().FindDecisions(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByScenarioIDs{IDs: ids},
	)
	if err != nil {
		return nil, err
	}
	completed := make(map[uuid.UUID]bool, len(done))
	for _, d := range done {
		completed[d.ScenarioId] = true
	}

	for _, c := range challenges {
		result = append(result, &dto.DailyChallengeResponse{
			ScenarioResponse: toScenarioResponse(c),
			Completed:        completed[c.Id],
		})
	}
	return result, nil
}

// findScenario reads through the catalog cache.
func findScenario(ctx context.Context, uow unitofwork.UnitOfWork, cache *memory.ScenarioCache, id uuid.UUID) (*entity.Scenario, error) {
	if cache != nil {
		if scenario, ok := cache.Get(id); ok {
			return scenario, nil
		}
	}

	scenario, err := uow.ScenarioRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if scenario == nil {
		return nil, serverutils.NotFound("Scenario not found")
	}

	if cache != nil {
		cache.Save(scenario)
	}
	return scenario, nil
}

// buildScenario applies the catalog rules that struct tags cannot express.
func buildScenario(creatorId uuid.UUID, req *dto.CreateScenarioRequest) (*entity.Scenario, error) {
	scenarioType := entity.ScenarioType(req.Type)
	if scenarioType == "" {
		scenarioType = entity.ScenarioTypeScenario
	}

	correct := 0
	options := make([]entity.ScenarioOption, 0, len(req.Options))
	seen := make(map[string]bool, len(req.Options))
	for _, o := range req.Options {
		text := strings.TrimSpace(o.Text)
		if text == "" {
			return nil, serverutils.BadRequest("Option text must not be empty")
		}
		if seen[text] {
			return nil, serverutils.BadRequest("Option texts must be unique")
		}
		seen[text] = true
		if o.IsCorrect {
			correct++
		}
		options = append(options, entity.ScenarioOption{Text: text, IsCorrect: o.IsCorrect, Feedback: o.Feedback})
	}
	if len(options) < 2 {
		return nil, serverutils.BadRequest("A scenario needs at least two options")
	}
	if correct == 0 {
		return nil, serverutils.BadRequest("A scenario needs at least one correct option")
	}

	activeDate := ""
	if scenarioType == entity.ScenarioTypeDailyChallenge {
		if req.ActiveDate == "" {
			return nil, serverutils.BadRequest("activeDate is required for daily challenges")
		}
		if _, err := time.Parse(entity.ActiveDateLayout, req.ActiveDate); err != nil {
			return nil, serverutils.BadRequest("activeDate must be YYYY-MM-DD")
		}
		activeDate = req.ActiveDate
	}

	var creator *uuid.UUID
	if creatorId != uuid.Nil {
		creator = &creatorId
	}

	return &entity.Scenario{
		Id:          uuid.New(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Content:     req.Content,
		Category:    req.Category,
		CreatorId:   creator,
		XpReward:    req.XpReward,
		Difficulty:  req.Difficulty,
		Type:        scenarioType,
		ActiveDate:  activeDate,
		Options:     options,
	}, nil
}

func toScenarioResponse(s *entity.Scenario) dto.ScenarioResponse {
	options := make([]dto.ScenarioOptionResponse, len(s.Options))
	for i, o := range s.Options {
		options[i] = dto.ScenarioOptionResponse{Index: i, Text: o.Text}
	}

	successRate := 0
	if s.Attempts > 0 {
		successRate = s.SuccessfulAttempts * 100 / s.Attempts
	}

	return dto.ScenarioResponse{
		Id:          s.Id,
		Title:       s.Title,
		Description: s.Description,
		Content:     s.Content,
		Category:    s.Category,
		XpReward:    s.XpReward,
		Difficulty:  s.Difficulty,
		Type:        string(s.Type),
		ActiveDate:  s.ActiveDate,
		Options:     options,
		Attempts:    s.Attempts,
		SuccessRate: successRate,
		CreatedAt:   s.CreatedAt,
	}
}
