package service

import (
	"context"
	"fmt"
	"sort"

	"decidely-be/internal/dto"
	"decidely-be/internal/entity"
	"decidely-be/internal/repository/scope"
	"decidely-be/internal/repository/specification"
	"decidely-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	defaultLeaderboardLimit = 50
	activitySourceLimit     = 10
	unknownUserName         = "Unknown User"
)

type ICommunityService interface {
	Profiles(ctx context.Context, query *dto.CommunityQuery) (*dto.CommunityProfilesResponse, error)
	Activities(ctx context.Context) ([]dto.CommunityActivityResponse, error)
}

type communityService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewCommunityService(uowFactory unitofwork.RepositoryFactory) ICommunityService {
	return &communityService{uowFactory: uowFactory}
}

// Profiles is the leaderboard: every active user with their progress, most
// XP first. Ties go to the higher level, then by name.
func (s *communityService) Profiles(ctx context.Context, query *dto.CommunityQuery) (*dto.CommunityProfilesResponse, error) {
	page, limit := query.Page, query.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLeaderboardLimit
	}
	offset := (page - 1) * limit

	repo := s.uowFactory.NewUnitOfWork(ctx).ProgressRepository()
	total, err := repo.CountStandings(ctx)
	if err != nil {
		return nil, err
	}

	standings, err := repo.FindStandings(ctx,
		specification.OrderBy{Field: "xp", Desc: true},
		specification.OrderBy{Field: "level", Desc: true},
		specification.OrderBy{Field: "full_name"},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.CommunityProfileResponse, len(standings))
	for i, st := range standings {
		items[i] = toCommunityProfile(offset+i+1, st)
	}

	return &dto.CommunityProfilesResponse{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

// Activities merges recently authored scenarios with recent level changes,
// newest first.
func (s *communityService) Activities(ctx context.Context) ([]dto.CommunityActivityResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	scenarios, err := uow.ScenarioRepository().FindAll(ctx,
		specification.Scoped(scope.UserCreated),
		specification.Scoped(scope.OrderByCreatedDesc),
		specification.Pagination{Limit: activitySourceLimit},
	)
	if err != nil {
		return nil, err
	}

	// level 1 is where every account starts, so it is not an achievement
	progressRows, err := uow.ProgressRepository().FindRecentlyUpdated(ctx, 2, activitySourceLimit)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, 0, len(scenarios)+len(progressRows))
	for _, sc := range scenarios {
		userIDs = append(userIDs, *sc.CreatorId)
	}
	for _, p := range progressRows {
		userIDs = append(userIDs, p.UserId)
	}

	names := map[uuid.UUID]string{}
	if len(userIDs) > 0 {
		users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: userIDs})
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			names[u.Id] = u.FullName
		}
	}
	nameOf := func(id uuid.UUID) string {
		if name, ok := names[id]; ok {
			return name
		}
		return unknownUserName
	}

	out := make([]dto.CommunityActivityResponse, 0, len(scenarios)+len(progressRows))
	for _, sc := range scenarios {
		creator, scenarioID := *sc.CreatorId, sc.Id
		out = append(out, dto.CommunityActivityResponse{
			Type:       dto.ActivityScenarioCreated,
			UserId:     &creator,
			UserName:   nameOf(creator),
			Details:    "Created a new scenario: " + sc.Title,
			ScenarioId: &scenarioID,
			OccurredAt: sc.CreatedAt,
		})
	}
	for _, p := range progressRows {
		userID := p.UserId
		out = append(out, dto.CommunityActivityResponse{
			Type:       dto.ActivityLevelReached,
			UserId:     &userID,
			UserName:   nameOf(userID),
			Details:    fmt.Sprintf("Reached level %d", p.State.Level),
			OccurredAt: p.UpdatedAt,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}

func toCommunityProfile(rank int, st *entity.Standing) dto.CommunityProfileResponse {
	res := dto.CommunityProfileResponse{
		Rank:               rank,
		UserId:             st.UserId,
		FullName:           st.FullName,
		Level:              st.Level,
		Xp:                 st.Xp,
		Streak:             st.Streak,
		CompletedScenarios: st.CompletedScenarios,
		RationalityScore:   st.RationalityScore,
		DecisivenessScore:  st.DecisivenessScore,
		MbtiType:           st.MbtiType,
		DecisionStyle:      st.DecisionStyle,
		PrimaryBias:        st.PrimaryBias,
	}
	if st.AvatarURL != nil {
		res.AvatarURL = *st.AvatarURL
	}
	return res
}
