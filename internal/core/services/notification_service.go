package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/ibrahim99035/library-backend/internal/core/domain"
)

// Notifier delivers "notify member" events to the external messaging
// collaborator. Emission is fire-and-forget: the core signals, delivery
// guarantees belong to the receiver.
type Notifier interface {
	Notify(ctx context.Context, event domain.NotificationEvent)
}

// NotificationService posts notification events to a webhook. When no
// webhook URL is configured the service logs and drops events.
type NotificationService struct {
	webhookURL string
	client     *http.Client
}

// NewNotificationService creates a new notification service
func NewNotificationService(webhookURL string) *NotificationService {
	if webhookURL == "" {
		log.Println("⚠️ NOTIFY_WEBHOOK_URL not set, member notifications disabled")
	}
	return &NotificationService{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.webhookURL != ""
}

// Notify posts the event to the webhook in the background
func (s *NotificationService) Notify(ctx context.Context, event domain.NotificationEvent) {
	if !s.IsEnabled() {
		log.Printf("⚠️ Notification skipped (no webhook): [%s] member=%d %s",
			event.Type, event.MemberID, event.Message)
		return
	}

	go s.send(event)
}

func (s *NotificationService) send(event domain.NotificationEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ Notification marshal error: %v", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("❌ Notification request error: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("❌ Notification send error: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("⚠️ Notification webhook status: %d", resp.StatusCode)
		return
	}
	log.Printf("✅ Notification sent: [%s] member=%d", event.Type, event.MemberID)
}
