package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lifeline/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSMS struct {
	mu      sync.Mutex
	enabled bool
	fail    bool
	sent    []string
}

func (f *fakeSMS) Enabled() bool { return f.enabled }

func (f *fakeSMS) SendSMS(ctx context.Context, to, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("carrier rejected")
	}
	f.sent = append(f.sent, to)
	return "sms-" + to, nil
}

type fakePush struct {
	mu      sync.Mutex
	enabled bool
	fail    bool
	sent    []string
}

func (f *fakePush) Enabled() bool { return f.enabled }

func (f *fakePush) SendPush(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("token unregistered")
	}
	f.sent = append(f.sent, token)
	return "push-" + token, nil
}

type fakeNotificationStore struct {
	mu      sync.Mutex
	records []models.Notification
}

func (f *fakeNotificationStore) Create(ctx context.Context, notification *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *notification)
	return nil
}

func testPayload() models.NotificationPayload {
	return models.NotificationPayload{
		Type:    models.NotificationEmergencyTriggered,
		Title:   "Emergency alert",
		Body:    "Asha Rao has triggered a medical emergency",
		SMSText: "EMERGENCY: Asha Rao needs help",
	}
}

func TestFanout(t *testing.T) {
	ctx := context.Background()

	t.Run("push is preferred for targets with a device token", func(t *testing.T) {
		sms := &fakeSMS{enabled: true}
		push := &fakePush{enabled: true}
		store := &fakeNotificationStore{}
		service := NewNotificationService(sms, push, store)

		results := service.Fanout(ctx, "em-1", testPayload(), []models.NotificationTarget{
			{Kind: models.TargetPatient, Phone: "+911111111111", DeviceToken: "tok-1"},
		})

		require.Len(t, results, 1)
		assert.True(t, results[0].Success)
		assert.Equal(t, models.ChannelPush, results[0].Channel)
		assert.Equal(t, []string{"tok-1"}, push.sent)
		assert.Empty(t, sms.sent)

		require.Len(t, store.records, 1)
		assert.Equal(t, models.DeliveryStatusSent, store.records[0].Status)
		assert.Equal(t, "em-1", store.records[0].EmergencyID)
		assert.Equal(t, "tok-1", store.records[0].Recipient)
	})

	t.Run("failed push falls back to the SMS text", func(t *testing.T) {
		sms := &fakeSMS{enabled: true}
		push := &fakePush{enabled: true, fail: true}
		service := NewNotificationService(sms, push, &fakeNotificationStore{})

		results := service.Fanout(ctx, "em-1", testPayload(), []models.NotificationTarget{
			{Kind: models.TargetPatient, Phone: "+911111111111", DeviceToken: "tok-bad"},
		})

		require.Len(t, results, 1)
		assert.True(t, results[0].Success)
		assert.Equal(t, models.ChannelSMS, results[0].Channel)
		assert.Equal(t, []string{"+911111111111"}, sms.sent)
	})

	t.Run("target without a token goes straight to SMS", func(t *testing.T) {
		sms := &fakeSMS{enabled: true}
		push := &fakePush{enabled: true}
		service := NewNotificationService(sms, push, &fakeNotificationStore{})

		results := service.Fanout(ctx, "em-1", testPayload(), []models.NotificationTarget{
			{Kind: models.TargetContact, Phone: "+912222222222"},
		})

		require.Len(t, results, 1)
		assert.Equal(t, models.ChannelSMS, results[0].Channel)
		assert.Empty(t, push.sent)
	})

	t.Run("unreachable target is skipped, not failed", func(t *testing.T) {
		store := &fakeNotificationStore{}
		service := NewNotificationService(&fakeSMS{}, &fakePush{}, store)

		results := service.Fanout(ctx, "em-1", testPayload(), []models.NotificationTarget{
			{Kind: models.TargetContact, Phone: "+912222222222"},
		})

		require.Len(t, results, 1)
		assert.True(t, results[0].Skipped)
		assert.False(t, results[0].Success)
		require.Len(t, store.records, 1)
		assert.Equal(t, models.DeliveryStatusSkipped, store.records[0].Status)
	})

	t.Run("one failing target never blocks the rest", func(t *testing.T) {
		sms := &fakeSMS{enabled: true, fail: true}
		push := &fakePush{enabled: true}
		store := &fakeNotificationStore{}
		service := NewNotificationService(sms, push, store)

		results := service.Fanout(ctx, "em-1", testPayload(), []models.NotificationTarget{
			{Kind: models.TargetHotline, Phone: "+91108"},
			{Kind: models.TargetPatient, DeviceToken: "tok-1"},
		})

		require.Len(t, results, 2)
		assert.False(t, results[0].Success)
		assert.Equal(t, "carrier rejected", results[0].Error)
		assert.True(t, results[1].Success)

		require.Len(t, store.records, 2)
		assert.Equal(t, models.DeliveryStatusFailed, store.records[0].Status)
		assert.Equal(t, models.DeliveryStatusSent, store.records[1].Status)
	})

	t.Run("empty target list is a no-op", func(t *testing.T) {
		service := NewNotificationService(&fakeSMS{enabled: true}, &fakePush{enabled: true}, &fakeNotificationStore{})
		results := service.Fanout(ctx, "em-1", testPayload(), nil)
		assert.Empty(t, results)
	})
}
