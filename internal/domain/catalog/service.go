package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	levelsCacheKey = "catalog:levels"
	cacheTTL       = 30 * time.Second
)

// Service handles warning level and rule catalog logic. The level list is
// read on every classified message, so it is cached in Redis and the cache
// is dropped on every admin mutation. A nil redis client disables caching.
type Service struct {
	repo  Repository
	redis *redis.Client
}

// NewService creates catalog service
func NewService(repo Repository, redisClient *redis.Client) *Service {
	return &Service{
		repo:  repo,
		redis: redisClient,
	}
}

// CreateLevel creates a new warning level
func (s *Service) CreateLevel(ctx context.Context, req *CreateLevelRequest) (*WarningLevel, error) {
	now := time.Now()
	level := &WarningLevel{
		ID:            uuid.New(),
		Name:          req.Name,
		Color:         req.Color,
		Points:        req.Points,
		DeleteMessage: req.DeleteMessage,
		IsVisible:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if req.Description != "" {
		level.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.IsVisible != nil {
		level.IsVisible = *req.IsVisible
	}

	if err := s.repo.CreateLevel(ctx, level); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return level, nil
}

// GetLevel returns a level by id
func (s *Service) GetLevel(ctx context.Context, id uuid.UUID) (*WarningLevel, error) {
	level, err := s.repo.GetLevelByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, ErrLevelNotFound
	}
	return level, nil
}

// ResolveLevel resolves a classifier-reported level name, case-insensitive.
// A nil result with nil error means the name is unknown.
func (s *Service) ResolveLevel(ctx context.Context, name string) (*WarningLevel, error) {
	return s.repo.GetLevelByName(ctx, name)
}

// ListLevels returns all levels, read through the cache
func (s *Service) ListLevels(ctx context.Context) ([]*WarningLevel, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, levelsCacheKey).Bytes()
		if err == nil {
			var levels []*WarningLevel
			if err := json.Unmarshal(cached, &levels); err == nil {
				return levels, nil
			}
		}
	}

	levels, err := s.repo.ListLevels(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(levels); err == nil {
			if err := s.redis.Set(ctx, levelsCacheKey, payload, cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("Failed to cache level catalog")
			}
		}
	}

	return levels, nil
}

// ListLevelsWithRules returns the full catalog for the admin surface
func (s *Service) ListLevelsWithRules(ctx context.Context) ([]*LevelWithRules, error) {
	levels, err := s.ListLevels(ctx)
	if err != nil {
		return nil, err
	}

	rules, err := s.repo.ListAllRules(ctx)
	if err != nil {
		return nil, err
	}

	byLevel := make(map[uuid.UUID][]*Rule, len(levels))
	for _, rule := range rules {
		byLevel[rule.LevelID] = append(byLevel[rule.LevelID], rule)
	}

	result := make([]*LevelWithRules, 0, len(levels))
	for _, level := range levels {
		result = append(result, &LevelWithRules{
			WarningLevel: level,
			Rules:        byLevel[level.ID],
		})
	}
	return result, nil
}

// UpdateLevel updates a level. Existing warnings keep their snapshotted
// point values; only future warnings see the new weight.
func (s *Service) UpdateLevel(ctx context.Context, id uuid.UUID, req *UpdateLevelRequest) (*WarningLevel, error) {
	level, err := s.GetLevel(ctx, id)
	if err != nil {
		return nil, err
	}

	level.Name = req.Name
	level.Color = req.Color
	level.Points = req.Points
	level.DeleteMessage = req.DeleteMessage
	level.IsVisible = req.IsVisible
	level.Description = sql.NullString{String: req.Description, Valid: req.Description != ""}

	if err := s.repo.UpdateLevel(ctx, level); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return level, nil
}

// DeleteLevel deletes a level and its rules unless warnings reference it
func (s *Service) DeleteLevel(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteLevel(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// CreateRule creates a rule under a level
func (s *Service) CreateRule(ctx context.Context, req *CreateRuleRequest) (*Rule, error) {
	now := time.Now()
	rule := &Rule{
		ID:        uuid.New(),
		LevelID:   req.LevelID,
		Name:      req.Name,
		SortOrder: req.SortOrder,
		IsVisible: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if req.Description != "" {
		rule.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.IsVisible != nil {
		rule.IsVisible = *req.IsVisible
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return rule, nil
}

// ListRules returns the ordered rules of a level
func (s *Service) ListRules(ctx context.Context, levelID uuid.UUID) ([]*Rule, error) {
	return s.repo.ListRules(ctx, levelID)
}

// UpdateRule updates a rule
func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, req *UpdateRuleRequest) (*Rule, error) {
	rule, err := s.repo.GetRuleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrRuleNotFound
	}

	rule.Name = req.Name
	rule.SortOrder = req.SortOrder
	rule.IsVisible = req.IsVisible
	rule.Description = sql.NullString{String: req.Description, Valid: req.Description != ""}

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return rule, nil
}

// ReorderRules applies a new presentation order within a level
func (s *Service) ReorderRules(ctx context.Context, levelID uuid.UUID, req *ReorderRulesRequest) ([]*Rule, error) {
	if err := s.repo.ReorderRules(ctx, levelID, req.RuleIDs); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.repo.ListRules(ctx, levelID)
}

// DeleteRule deletes a rule
func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, levelsCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate level catalog cache")
	}
}
