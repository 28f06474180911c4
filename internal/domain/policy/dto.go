package policy

// CreateRuleRequest represents request to create a punishment rule
type CreateRuleRequest struct {
	Action         Action `json:"action" validate:"required,punishment_type"`
	PointThreshold int    `json:"point_threshold" validate:"required,gt=0"`
	DurationMin    *int64 `json:"duration_min,omitempty" validate:"omitempty,gt=0"`
	IsActive       *bool  `json:"is_active,omitempty"`
}

// UpdateRuleRequest represents request to update a punishment rule
type UpdateRuleRequest struct {
	Action         Action `json:"action" validate:"required,punishment_type"`
	PointThreshold int    `json:"point_threshold" validate:"required,gt=0"`
	DurationMin    *int64 `json:"duration_min,omitempty" validate:"omitempty,gt=0"`
	IsActive       bool   `json:"is_active"`
}
