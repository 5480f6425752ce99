package models

import "time"

// PublishedMessage is the wire form handed to the exchange. Downstream
// consumers (email/push services) unmarshal the same shape. Once published,
// ownership of delivery passes to the broker.
type PublishedMessage struct {
	RequestID        string                 `json:"request_id"`
	CorrelationID    string                 `json:"correlation_id"`
	NotificationType NotificationType       `json:"notification_type"`
	UserID           string                 `json:"user_id"`
	TemplateCode     string                 `json:"template_code"`
	Variables        map[string]interface{} `json:"variables"`
	Priority         int                    `json:"priority"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	Attempt          int                    `json:"attempt"`
	MaxAttempts      int                    `json:"max_attempts"`
	CreatedAt        time.Time              `json:"created_at"`

	// Populated only when enrichment is enabled; the lean variant leaves the
	// lookups to the consuming worker.
	User     *User     `json:"user,omitempty"`
	Template *Template `json:"template,omitempty"`
}

// User is the enriched user block embedded in a message.
type User struct {
	ID         string                 `json:"id"`
	Email      string                 `json:"email"`
	Locale     string                 `json:"locale"`
	PushTokens []PushToken            `json:"push_tokens,omitempty"`
	Prefs      map[string]interface{} `json:"preferences,omitempty"`
}

// PushToken is a user device registration carried through enrichment.
type PushToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// Template is the enriched template block embedded in a message.
type Template struct {
	Code    string `json:"code"`
	Locale  string `json:"locale"`
	Version int    `json:"version"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
}
