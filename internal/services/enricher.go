package services

import (
	"context"
	"fmt"

	apperr "github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/errors"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
)

// userFetcher / templateFetcher narrow the lookup clients for testability.
type userFetcher interface {
	Fetch(ctx context.Context, userID string) (*models.User, error)
}

type templateFetcher interface {
	Fetch(ctx context.Context, code, locale string) (*models.Template, error)
}

// LookupEnricher embeds fetched user and template data into a message before
// publish. Locale preference: user preferences "lang", then the profile
// locale, then the template service default.
type LookupEnricher struct {
	users     userFetcher
	templates templateFetcher
}

func NewLookupEnricher(users *UserClient, templates *TemplateClient) *LookupEnricher {
	return &LookupEnricher{users: users, templates: templates}
}

func (e *LookupEnricher) Enrich(ctx context.Context, msg *models.PublishedMessage) error {
	user, err := e.users.Fetch(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrUserLookup, err)
	}
	msg.User = user

	tpl, err := e.templates.Fetch(ctx, msg.TemplateCode, localeFor(user))
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrTemplateLookup, err)
	}
	msg.Template = tpl
	return nil
}

func localeFor(user *models.User) string {
	if lang, ok := user.Prefs["lang"].(string); ok && lang != "" {
		return lang
	}
	return user.Locale
}
