package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/jsivak/soleplug-backend/pkg/enums"
	"github.com/jsivak/soleplug-backend/pkg/logger"
	"github.com/jsivak/soleplug-backend/pkg/mailer"
	"github.com/jsivak/soleplug-backend/pkg/metrics"
	"github.com/jsivak/soleplug-backend/pkg/outbox"
	"github.com/jsivak/soleplug-backend/pkg/outbox/idempotency"
	"github.com/jsivak/soleplug-backend/pkg/outbox/payloads"
)

const saleNotificationConsumer = "sale-notifications"

type mailSender interface {
	Send(ctx context.Context, email mailer.Email) error
}

// Consumer watches sale events and emails the seller when a listing is
// accepted into a sale. Notification failures are logged and retried via
// nack; they never block the sale lifecycle itself.
type Consumer struct {
	repo         Repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	mail         mailSender
	metrics      *metrics.SaleMetrics
	logg         *logger.Logger
}

// NewConsumer builds a sale notification consumer.
func NewConsumer(repo Repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, mail mailSender, saleMetrics *metrics.SaleMetrics, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifier repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("sales subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if mail == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		mail:         mail,
		metrics:      saleMetrics,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	parsed, err := enums.ParseOutboxEventType(eventType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, saleNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, parsed, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		c.metrics.IncNotification("failed")
		_ = c.idempotency.Delete(ctx, saleNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	c.metrics.IncNotification("success")
	return processResult{ack: true}
}

func (c *Consumer) handleEvent(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventSaleAccepted:
		var payload payloads.SaleAcceptedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return err
		}
		return c.notifyAccepted(ctx, payload, logCtx)
	default:
		c.logg.Info(logCtx, "event type not handled")
		return nil
	}
}

func (c *Consumer) notifyAccepted(ctx context.Context, payload payloads.SaleAcceptedEvent, logCtx context.Context) error {
	email, err := c.repo.SellerEmail(ctx, payload.SellerID)
	if err != nil {
		return err
	}
	if email == "" {
		c.logg.Warn(logCtx, "seller has no email, skipping notification")
		return nil
	}

	subject := fmt.Sprintf("Your %s (size %s) sold", payload.ProductName, payload.Size)
	html := fmt.Sprintf(
		"<p>Your listing for <strong>%s</strong> (size %s) was accepted at %s. Your payout is <strong>%s</strong>.</p>",
		payload.ProductName, payload.Size, payload.SalePrice.StringFixed(2), payload.Payout.StringFixed(2),
	)
	if err := c.mail.Send(ctx, mailer.Email{To: email, Subject: subject, HTML: html}); err != nil {
		return err
	}
	c.logg.Info(c.logg.WithSaleID(logCtx, payload.SaleID.String()), "seller notified of sale")
	return nil
}
