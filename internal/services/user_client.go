package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
)

type userResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *userDTO `json:"data"`
	Error   string   `json:"error"`
}

type userDTO struct {
	ID          string                 `json:"id"`
	Email       string                 `json:"email"`
	Locale      string                 `json:"locale"`
	PushTokens  []models.PushToken     `json:"push_tokens"`
	Preferences map[string]interface{} `json:"preferences"`
}

// UserClient talks to the user service: profile fetches for enrichment and
// the create-user passthrough the gateway proxies.
type UserClient struct {
	baseURL string
	client  *http.Client
}

func NewUserClient(baseURL string, timeout time.Duration) *UserClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &UserClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch returns the user profile for userID.
func (c *UserClient) Fetch(ctx context.Context, userID string) (*models.User, error) {
	path := fmt.Sprintf("%s/api/v1/users/%s/", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user service returned %d", resp.StatusCode)
	}

	var envelope userResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, fmt.Errorf("user service error: %s", envelope.Message)
	}

	return &models.User{
		ID:         envelope.Data.ID,
		Email:      envelope.Data.Email,
		Locale:     envelope.Data.Locale,
		PushTokens: envelope.Data.PushTokens,
		Prefs:      envelope.Data.Preferences,
	}, nil
}

// Create forwards a raw create-user body and returns the upstream status and
// response body unmodified, so the gateway proxy stays a thin passthrough.
func (c *UserClient) Create(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/users/", bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}
