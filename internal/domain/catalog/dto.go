package catalog

import "github.com/google/uuid"

// CreateLevelRequest represents request to create a warning level
type CreateLevelRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=64"`
	Color         string `json:"color" validate:"hex_color"`
	Points        int    `json:"points" validate:"required,gt=0"`
	DeleteMessage bool   `json:"delete_message"`
	Description   string `json:"description,omitempty" validate:"max=1000"`
	IsVisible     *bool  `json:"is_visible,omitempty"`
}

// UpdateLevelRequest represents request to update a warning level
type UpdateLevelRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=64"`
	Color         string `json:"color" validate:"hex_color"`
	Points        int    `json:"points" validate:"required,gt=0"`
	DeleteMessage bool   `json:"delete_message"`
	Description   string `json:"description,omitempty" validate:"max=1000"`
	IsVisible     bool   `json:"is_visible"`
}

// CreateRuleRequest represents request to create a rule
type CreateRuleRequest struct {
	LevelID     uuid.UUID `json:"level_id" validate:"required"`
	Name        string    `json:"name" validate:"required,min=1,max=128"`
	Description string    `json:"description,omitempty" validate:"max=2000"`
	SortOrder   int       `json:"sort_order" validate:"gte=0"`
	IsVisible   *bool     `json:"is_visible,omitempty"`
}

// UpdateRuleRequest represents request to update a rule
type UpdateRuleRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=128"`
	Description string `json:"description,omitempty" validate:"max=2000"`
	SortOrder   int    `json:"sort_order" validate:"gte=0"`
	IsVisible   bool   `json:"is_visible"`
}

// ReorderRulesRequest carries the full presentation order for a level
type ReorderRulesRequest struct {
	RuleIDs []uuid.UUID `json:"rule_ids" validate:"required,min=1"`
}

// LevelWithRules is the admin listing shape: a level and its ordered rules
type LevelWithRules struct {
	*WarningLevel
	Rules []*Rule `json:"rules"`
}
