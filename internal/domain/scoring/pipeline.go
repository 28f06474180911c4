package scoring

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/modwarden/warden-api/internal/domain/catalog"
	"github.com/modwarden/warden-api/internal/domain/prompt"
	"github.com/modwarden/warden-api/internal/pkg/classifier"
)

// Classifier is the content-analysis boundary. Satisfied by
// *classifier.Client, which already retries transient failures.
type Classifier interface {
	Classify(ctx context.Context, prompt string, levelNames []string, message string, contextMessages []string) (*classifier.Verdict, error)
}

// PromptProvider yields the active analysis prompt. Satisfied by the
// prompt repository.
type PromptProvider interface {
	GetActive(ctx context.Context) (*prompt.Template, error)
}

// LevelLister yields the configured warning levels. Satisfied by
// *catalog.Service.
type LevelLister interface {
	ListLevels(ctx context.Context) ([]*catalog.WarningLevel, error)
}

// HandleResult is what the connector acts on: whether to delete the
// message and what to announce.
type HandleResult struct {
	ViolationDetected bool      `json:"violation_detected"`
	LevelName         string    `json:"level_name,omitempty"`
	PointsAdded       int       `json:"points_added,omitempty"`
	NewTotal          int       `json:"new_total,omitempty"`
	DeleteMessage     bool      `json:"delete_message,omitempty"`
	Explanation       string    `json:"explanation,omitempty"`
	Punishment        *Decision `json:"punishment,omitempty"`
	ExecutionError    string    `json:"execution_error,omitempty"`
}

var noViolation = &HandleResult{}

// Pipeline runs a chat message through classification and scoring. Every
// failure before the ledger write degrades to "no violation": message
// ingestion is never blocked and chat users never see classifier errors,
// only moderators do via logs.
type Pipeline struct {
	engine     *Service
	classifier Classifier
	prompts    PromptProvider
	levels     LevelLister
}

// NewPipeline creates the message handling pipeline
func NewPipeline(engine *Service, cls Classifier, prompts PromptProvider, levels LevelLister) *Pipeline {
	return &Pipeline{
		engine:     engine,
		classifier: cls,
		prompts:    prompts,
		levels:     levels,
	}
}

// HandleMessage classifies the message and records a warning when a
// violation is detected.
func (p *Pipeline) HandleMessage(ctx context.Context, discordID, username, content string, contextMessages []string) (*HandleResult, error) {
	active, err := p.prompts.GetActive(ctx)
	if err != nil {
		if errors.Is(err, prompt.ErrNoActiveTemplate) {
			log.Warn().Msg("No active analysis prompt configured, message passed through")
			return noViolation, nil
		}
		return nil, err
	}

	levels, err := p.levels.ListLevels(ctx)
	if err != nil {
		return nil, err
	}
	levelNames := make([]string, 0, len(levels))
	for _, level := range levels {
		if level.IsVisible {
			levelNames = append(levelNames, level.Name)
		}
	}
	if len(levelNames) == 0 {
		log.Warn().Msg("No warning levels configured, message passed through")
		return noViolation, nil
	}

	verdict, err := p.classifier.Classify(ctx, active.Content, levelNames, content, contextMessages)
	if err != nil {
		// Availability over false positives: exhausted retries skip the
		// message rather than block ingestion.
		log.Error().Err(err).
			Str("discord_id", discordID).
			Msg("Classifier unavailable, message passed through")
		return noViolation, nil
	}

	if !verdict.ViolationDetected || strings.TrimSpace(verdict.LevelName) == "" {
		return noViolation, nil
	}

	outcome, err := p.engine.RecordWarning(ctx, discordID, username, verdict.LevelName, verdict.Explanation, content, strings.Join(contextMessages, "\n"))
	if err != nil {
		if errors.Is(err, ErrUnknownLevel) {
			log.Warn().
				Str("level_name", verdict.LevelName).
				Msg("Classifier returned unknown level name, message passed through")
			return noViolation, nil
		}
		return nil, err
	}

	result := &HandleResult{
		ViolationDetected: true,
		LevelName:         outcome.Level.Name,
		PointsAdded:       outcome.PointsAdded,
		NewTotal:          outcome.NewTotal,
		DeleteMessage:     outcome.Level.DeleteMessage,
		Explanation:       verdict.Explanation,
		Punishment:        outcome.Punishment,
		ExecutionError:    outcome.ExecutionError,
	}
	return result, nil
}
