package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/blog-service/internal/config"
	"github.com/spec-kit/blog-service/internal/events"
)

// NotificationChannel names a delivery route.
type NotificationChannel string

const (
	ChannelEmail   NotificationChannel = "email"
	ChannelWebhook NotificationChannel = "webhook"
)

// Notification is one outbound message derived from a domain event.
type Notification struct {
	Channel   NotificationChannel
	Recipient string
	Subject   string
	EventID   string
	EventType events.EventType
}

// NotificationService turns blog events into outbound notifications.
// Delivery is stubbed: messages are only logged.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{dispatcher: dispatcher, logger: logger, cfg: cfg}
}

// RegisterHandlers subscribes to every event that produces a notification.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserStatusChanged,
		events.EventArticlePublished,
		events.EventCommentCreated,
	} {
		n.dispatcher.Subscribe(eventType, n.handle)
	}
}

func (n *NotificationService) handle(ctx context.Context, event events.Event) error {
	notes, err := n.Compose(event)
	if err != nil {
		return err
	}
	for _, note := range notes {
		n.deliver(ctx, note)
	}
	return nil
}

// Compose maps an event to the notifications it triggers. Channels without
// configuration are skipped.
func (n *NotificationService) Compose(event events.Event) ([]Notification, error) {
	var notes []Notification
	add := func(channel NotificationChannel, recipient, subject string) {
		if !n.channelEnabled(channel) {
			return
		}
		if channel == ChannelWebhook {
			recipient = n.cfg.WebhookURL
		}
		notes = append(notes, Notification{
			Channel:   channel,
			Recipient: recipient,
			Subject:   subject,
			EventID:   event.ID,
			EventType: event.Type,
		})
	}

	switch p := event.Payload.(type) {
	case events.UserRegisteredPayload:
		add(ChannelEmail, p.Email, fmt.Sprintf("Welcome to the blog, %s", p.Username))
	case events.UserStatusChangedPayload:
		add(ChannelEmail, userRecipient(p.UserID), fmt.Sprintf("Your account is now %s", p.NewStatus))
		add(ChannelWebhook, "", fmt.Sprintf("user %d: %s -> %s", p.UserID, p.OldStatus, p.NewStatus))
	case events.ArticlePublishedPayload:
		add(ChannelWebhook, "", fmt.Sprintf("article %d published: %s", p.ArticleID, p.Title))
	case events.CommentCreatedPayload:
		if p.ArticleAuthorID == event.ActorID {
			break
		}
		add(ChannelEmail, userRecipient(p.ArticleAuthorID), fmt.Sprintf("New comment on article %d: %s", p.ArticleID, p.BodyPreview))
	default:
		return nil, fmt.Errorf("notification: unexpected payload %T for %s", event.Payload, event.Type)
	}
	return notes, nil
}

func (n *NotificationService) channelEnabled(channel NotificationChannel) bool {
	switch channel {
	case ChannelEmail:
		return strings.TrimSpace(n.cfg.EmailFrom) != ""
	case ChannelWebhook:
		return strings.TrimSpace(n.cfg.WebhookURL) != ""
	default:
		return false
	}
}

func (n *NotificationService) deliver(_ context.Context, note Notification) {
	fields := []zap.Field{
		zap.String("channel", string(note.Channel)),
		zap.String("recipient", note.Recipient),
		zap.String("subject", note.Subject),
		zap.String("event_id", note.EventID),
		zap.String("event_type", string(note.EventType)),
	}
	if note.Channel == ChannelEmail {
		fields = append(fields, zap.String("from", n.cfg.EmailFrom))
	}
	n.logger.Info("notification queued", fields...)
}

// userRecipient addresses a user by id; the stub resolves no mailbox.
func userRecipient(id int64) string {
	return fmt.Sprintf("user:%d", id)
}
