package policy

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
	activeRulesCacheKey = "policy:active_rules"
	cacheTTL            = 30 * time.Second
)

// Service handles punishment policy logic. Every scoring decision reads
// the active rule set at call time; the set is small and admin-edited, so
// it is cached briefly in Redis and dropped on every mutation. A nil
// redis client disables caching.
type Service struct {
	repo  Repository
	redis *redis.Client
}

// NewService creates policy service
func NewService(repo Repository, redisClient *redis.Client) *Service {
	return &Service{
		repo:  repo,
		redis: redisClient,
	}
}

// Create creates a punishment rule
func (s *Service) Create(ctx context.Context, req *CreateRuleRequest) (*PunishmentRule, error) {
	if req.Action == ActionMute && req.DurationMin == nil {
		return nil, ErrMuteNeedsLength
	}

	now := time.Now()
	rule := &PunishmentRule{
		ID:             uuid.New(),
		Action:         req.Action,
		PointThreshold: req.PointThreshold,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if req.Action == ActionMute {
		rule.DurationMin = sql.NullInt64{Int64: *req.DurationMin, Valid: true}
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return rule, nil
}

// Get returns a punishment rule by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PunishmentRule, error) {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, ErrRuleNotFound
	}
	return rule, nil
}

// List returns all punishment rules, active and inactive
func (s *Service) List(ctx context.Context) ([]*PunishmentRule, error) {
	return s.repo.List(ctx)
}

// ListActive returns the active rule set, read through the cache. This is
// the policy snapshot every scoring decision evaluates against.
func (s *Service) ListActive(ctx context.Context) ([]*PunishmentRule, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, activeRulesCacheKey).Bytes()
		if err == nil {
			var rules []*PunishmentRule
			if err := json.Unmarshal(cached, &rules); err == nil {
				return rules, nil
			}
		}
	}

	rules, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(rules); err == nil {
			if err := s.redis.Set(ctx, activeRulesCacheKey, payload, cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("Failed to cache active punishment rules")
			}
		}
	}

	return rules, nil
}

// Update updates a punishment rule
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRuleRequest) (*PunishmentRule, error) {
	if req.Action == ActionMute && req.DurationMin == nil {
		return nil, ErrMuteNeedsLength
	}

	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rule.Action = req.Action
	rule.PointThreshold = req.PointThreshold
	rule.IsActive = req.IsActive
	rule.DurationMin = sql.NullInt64{}
	if req.Action == ActionMute {
		rule.DurationMin = sql.NullInt64{Int64: *req.DurationMin, Valid: true}
	}

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return rule, nil
}

// Delete deletes a punishment rule
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, activeRulesCacheKey).Err(); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate punishment rule cache")
	}
}
