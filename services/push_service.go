package services

import (
	"context"
	"fmt"

	"lifeline/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// PushService delivers push notifications through Firebase Cloud Messaging.
// Without credentials it stays disabled and sends are skipped.
type PushService struct {
	client *messaging.Client
}

func NewPushService(ctx context.Context, cfg *config.Config) *PushService {
	if cfg.FirebaseCredentials == "" {
		logrus.Warn("Firebase credentials not configured, push delivery disabled")
		return &PushService{}
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.FirebaseCredentials))
	if err != nil {
		logrus.Errorf("Failed to initialize Firebase app: %v", err)
		return &PushService{}
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		logrus.Errorf("Failed to initialize Firebase messaging: %v", err)
		return &PushService{}
	}

	return &PushService{client: client}
}

func (ps *PushService) Enabled() bool {
	return ps.client != nil
}

// SendPush delivers one notification to a device token and returns the FCM
// message ID.
func (ps *PushService) SendPush(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	if ps.client == nil {
		return "", fmt.Errorf("push delivery disabled")
	}

	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	id, err := ps.client.Send(ctx, message)
	if err != nil {
		logrus.Errorf("Failed to send push notification: %v", err)
		return "", err
	}

	logrus.Debugf("Push notification sent (id %s)", id)
	return id, nil
}
