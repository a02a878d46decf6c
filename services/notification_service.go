package services

import (
	"context"

	"lifeline/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SMSSender is the outbound text channel.
type SMSSender interface {
	Enabled() bool
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// PushSender is the outbound push channel.
type PushSender interface {
	Enabled() bool
	SendPush(ctx context.Context, token, title, body string, data map[string]string) (string, error)
}

// NotificationStore persists per-delivery records for the audit trail.
type NotificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// NotificationService fans one payload out to a set of independent targets.
// Each target is attempted on push first when a device token is present,
// then SMS. A failure on one target never blocks the others; outcomes are
// collected per target and returned for logging.
type NotificationService struct {
	sms   SMSSender
	push  PushSender
	store NotificationStore
}

func NewNotificationService(sms SMSSender, push PushSender, store NotificationStore) *NotificationService {
	return &NotificationService{
		sms:   sms,
		push:  push,
		store: store,
	}
}

// Fanout delivers the payload to every target and returns one result per
// target. It never returns an error: notification failures are outcomes,
// not faults, and must not roll back the dispatch that produced them.
func (ns *NotificationService) Fanout(ctx context.Context, emergencyID string, payload models.NotificationPayload, targets []models.NotificationTarget) []models.DispatchResult {
	results := make([]models.DispatchResult, 0, len(targets))

	for _, target := range targets {
		result := ns.deliver(ctx, target, payload)
		results = append(results, result)
		ns.record(ctx, emergencyID, payload, result)

		if !result.Success && !result.Skipped {
			logrus.Warnf("Notification to %s %s failed: %s", target.Kind, target.Name, result.Error)
		}
	}

	return results
}

func (ns *NotificationService) deliver(ctx context.Context, target models.NotificationTarget, payload models.NotificationPayload) models.DispatchResult {
	// Push first for app users.
	if target.DeviceToken != "" && ns.push != nil && ns.push.Enabled() {
		id, err := ns.push.SendPush(ctx, target.DeviceToken, payload.Title, payload.Body, payload.Data)
		if err == nil {
			return models.DispatchResult{
				Target:    target,
				Channel:   models.ChannelPush,
				Success:   true,
				MessageID: id,
			}
		}
		logrus.Debugf("Push delivery to %s failed, falling back to SMS: %v", target.Kind, err)
	}

	if target.Phone != "" && ns.sms != nil && ns.sms.Enabled() {
		body := payload.SMSText
		if body == "" {
			body = payload.Body
		}
		id, err := ns.sms.SendSMS(ctx, target.Phone, body)
		if err == nil {
			return models.DispatchResult{
				Target:    target,
				Channel:   models.ChannelSMS,
				Success:   true,
				MessageID: id,
			}
		}
		return models.DispatchResult{
			Target:  target,
			Channel: models.ChannelSMS,
			Error:   err.Error(),
		}
	}

	// No reachable channel for this target.
	return models.DispatchResult{
		Target:  target,
		Skipped: true,
	}
}

func (ns *NotificationService) record(ctx context.Context, emergencyID string, payload models.NotificationPayload, result models.DispatchResult) {
	if ns.store == nil {
		return
	}

	status := models.DeliveryStatusSent
	if result.Skipped {
		status = models.DeliveryStatusSkipped
	} else if !result.Success {
		status = models.DeliveryStatusFailed
	}

	recipient := result.Target.Phone
	if result.Channel == models.ChannelPush {
		recipient = result.Target.DeviceToken
	}

	notification := &models.Notification{
		ID:          uuid.New().String(),
		UserID:      result.Target.UserID,
		EmergencyID: emergencyID,
		Type:        payload.Type,
		Title:       payload.Title,
		Message:     payload.Body,
		Data:        payload.Data,
		Channel:     result.Channel,
		Recipient:   recipient,
		Status:      status,
		Error:       result.Error,
	}

	if err := ns.store.Create(ctx, notification); err != nil {
		logrus.Warnf("Failed to record notification: %v", err)
	}
}
