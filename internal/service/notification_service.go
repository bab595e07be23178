package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RorolRoro/tkg-site/internal/config"
	"github.com/RorolRoro/tkg-site/internal/events"
	"github.com/RorolRoro/tkg-site/internal/observability"
)

// NotificationService forwards ticket lifecycle events to the staff Discord
// webhook. Delivery is best-effort: failures are logged and never propagate
// to the request that produced the event.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	cfg        config.NotificationConfig
	client     *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		cfg:        cfg,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketMessageAdded, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketMessageEdited, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket event",
		zap.String("type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor", event.Actor.DiscordID))
	n.metrics.RecordTicketEvent(string(event.Type))
	n.sendWebhook(ctx, event)
	return nil
}

// webhookPayload is the minimal Discord webhook body.
type webhookPayload struct {
	Content string `json:"content"`
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}

	body, err := json.Marshal(webhookPayload{Content: webhookMessage(event)})
	if err != nil {
		n.logger.Warn("unable to encode webhook payload", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("unable to build webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.Error(err))
		return
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook rejected", zap.Int("status", resp.StatusCode))
	}
}

func webhookMessage(event events.Event) string {
	switch payload := event.Payload.(type) {
	case events.TicketCreatedPayload:
		return fmt.Sprintf("🎫 Nouveau ticket **%s** (%s) par %s", payload.Title, payload.Category, event.Actor.Name)
	case events.TicketStatusChangedPayload:
		return fmt.Sprintf("🔁 Ticket %s : %s → %s (par %s)", event.TicketID, payload.OldStatus, payload.NewStatus, event.Actor.Name)
	case events.TicketMessageAddedPayload:
		return fmt.Sprintf("💬 Nouveau message sur %s par %s : %s", event.TicketID, event.Actor.Name, payload.BodyPreview)
	case events.TicketMessageEditedPayload:
		return fmt.Sprintf("✏️ Message %s modifié sur %s par %s", payload.MessageID, event.TicketID, event.Actor.Name)
	default:
		return fmt.Sprintf("Ticket %s : %s", event.TicketID, event.Type)
	}
}
