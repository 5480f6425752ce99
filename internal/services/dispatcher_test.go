package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"

	apperr "github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/errors"
	"github.com/CyberwizD/Distributed-Notification-System/services/api_gateway/internal/models"
)

type mockGuard struct{ mock.Mock }

func (m *mockGuard) Reserve(ctx context.Context, requestID string) (bool, error) {
	args := m.Called(ctx, requestID)
	return args.Bool(0), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, msg *models.PublishedMessage) error {
	args := m.Called(ctx, routingKey, msg)
	return args.Error(0)
}

type mockStatus struct{ mock.Mock }

func (m *mockStatus) MarkPending(ctx context.Context, notificationID, channel string) {
	m.Called(ctx, notificationID, channel)
}

func (m *mockStatus) MarkFailed(ctx context.Context, notificationID, channel, detail string) {
	m.Called(ctx, notificationID, channel, detail)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDispatcher(guard *mockGuard, pub *mockPublisher, status *mockStatus) *Dispatcher {
	return NewDispatcher(guard, NewComposer(nil), pub, status, testLogger())
}

func TestDispatchSuccessWritesPending(t *testing.T) {
	guard := &mockGuard{}
	pub := &mockPublisher{}
	status := &mockStatus{}
	guard.On("Reserve", mock.Anything, "r1").Return(true, nil)
	pub.On("Publish", mock.Anything, "email", mock.Anything).Return(nil)
	status.On("MarkPending", mock.Anything, "r1", "email").Return()

	result, err := newTestDispatcher(guard, pub, status).Dispatch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if result.Duplicate {
		t.Error("first dispatch flagged duplicate")
	}
	if result.NotificationID != "r1" {
		t.Errorf("notification id = %q, want r1", result.NotificationID)
	}
	pub.AssertExpectations(t)
	status.AssertExpectations(t)
	status.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchDuplicateSkipsPublish(t *testing.T) {
	guard := &mockGuard{}
	pub := &mockPublisher{}
	status := &mockStatus{}
	guard.On("Reserve", mock.Anything, "r1").Return(false, nil)

	result, err := newTestDispatcher(guard, pub, status).Dispatch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("duplicate must not be an error: %v", err)
	}
	if !result.Duplicate {
		t.Error("expected duplicate result")
	}
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	status.AssertNotCalled(t, "MarkPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchGuardFailureSurfaces(t *testing.T) {
	guard := &mockGuard{}
	pub := &mockPublisher{}
	status := &mockStatus{}
	guard.On("Reserve", mock.Anything, "r1").
		Return(false, apperr.ErrBackendUnavailable)

	_, err := newTestDispatcher(guard, pub, status).Dispatch(context.Background(), testRequest())
	if !errors.Is(err, apperr.ErrBackendUnavailable) {
		t.Fatalf("expected backend error, got %v", err)
	}
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchPublishFailureWritesFailed(t *testing.T) {
	guard := &mockGuard{}
	pub := &mockPublisher{}
	status := &mockStatus{}
	guard.On("Reserve", mock.Anything, "r1").Return(true, nil)
	pub.On("Publish", mock.Anything, "email", mock.Anything).
		Return(apperr.ErrBrokerUnreachable)
	status.On("MarkFailed", mock.Anything, "r1", "email", mock.Anything).Return()

	_, err := newTestDispatcher(guard, pub, status).Dispatch(context.Background(), testRequest())
	if !errors.Is(err, apperr.ErrBrokerUnreachable) {
		t.Fatalf("expected broker error, got %v", err)
	}
	status.AssertExpectations(t)
	status.AssertNotCalled(t, "MarkPending", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchRoutesPushChannel(t *testing.T) {
	guard := &mockGuard{}
	pub := &mockPublisher{}
	status := &mockStatus{}
	guard.On("Reserve", mock.Anything, "r1").Return(true, nil)
	pub.On("Publish", mock.Anything, "push", mock.Anything).Return(nil)
	status.On("MarkPending", mock.Anything, "r1", "push").Return()

	req := testRequest()
	req.NotificationType = models.TypePush
	if _, err := newTestDispatcher(guard, pub, status).Dispatch(context.Background(), req); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	pub.AssertExpectations(t)
}
