package scoring

// IngestMessageRequest is the connector-facing request shape
type IngestMessageRequest struct {
	DiscordID       string   `json:"discord_id" validate:"required"`
	Username        string   `json:"username" validate:"required"`
	Content         string   `json:"content" validate:"required"`
	ContextMessages []string `json:"context_messages,omitempty" validate:"max=20"`
}

// IgnoreWarningRequest represents a reviewer dismissing a warning
type IgnoreWarningRequest struct {
	ReviewerID string `json:"reviewer_id" validate:"required"`
	Reason     string `json:"reason" validate:"required,max=1000"`
}
