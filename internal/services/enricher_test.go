package services

import (
	"context"
	"errors"
	"testing"

	apperr "github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/errors"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
)

type fakeUsers struct {
	user *models.User
	err  error
}

func (f fakeUsers) Fetch(context.Context, string) (*models.User, error) { return f.user, f.err }

type fakeTemplates struct {
	tpl    *models.Template
	err    error
	locale string
}

func (f *fakeTemplates) Fetch(_ context.Context, _, locale string) (*models.Template, error) {
	f.locale = locale
	return f.tpl, f.err
}

func TestEnrichEmbedsUserAndTemplate(t *testing.T) {
	users := fakeUsers{user: &models.User{ID: "u1", Email: "grace@example.com", Locale: "fr"}}
	templates := &fakeTemplates{tpl: &models.Template{Code: "welcome_email", Subject: "hi"}}
	e := &LookupEnricher{users: users, templates: templates}

	msg := &models.PublishedMessage{UserID: "u1", TemplateCode: "welcome_email"}
	if err := e.Enrich(context.Background(), msg); err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if msg.User == nil || msg.User.Email != "grace@example.com" {
		t.Errorf("user block missing: %+v", msg.User)
	}
	if msg.Template == nil || msg.Template.Subject != "hi" {
		t.Errorf("template block missing: %+v", msg.Template)
	}
	if templates.locale != "fr" {
		t.Errorf("locale = %q, want profile locale fr", templates.locale)
	}
}

func TestEnrichPrefersPreferenceLang(t *testing.T) {
	users := fakeUsers{user: &models.User{
		ID:     "u1",
		Locale: "fr",
		Prefs:  map[string]interface{}{"lang": "de"},
	}}
	templates := &fakeTemplates{tpl: &models.Template{}}
	e := &LookupEnricher{users: users, templates: templates}

	if err := e.Enrich(context.Background(), &models.PublishedMessage{}); err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if templates.locale != "de" {
		t.Errorf("locale = %q, want preference lang de", templates.locale)
	}
}

func TestEnrichWrapsLookupErrors(t *testing.T) {
	e := &LookupEnricher{
		users:     fakeUsers{err: errors.New("connection refused")},
		templates: &fakeTemplates{},
	}
	err := e.Enrich(context.Background(), &models.PublishedMessage{})
	if !errors.Is(err, apperr.ErrUserLookup) {
		t.Fatalf("expected user lookup error, got %v", err)
	}

	e = &LookupEnricher{
		users:     fakeUsers{user: &models.User{}},
		templates: &fakeTemplates{err: errors.New("503")},
	}
	err = e.Enrich(context.Background(), &models.PublishedMessage{})
	if !errors.Is(err, apperr.ErrTemplateLookup) {
		t.Fatalf("expected template lookup error, got %v", err)
	}
}
