package services

import (
	"context"
	"fmt"

	"lifeline/config"

	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSService sends text messages through Twilio. When credentials are not
// configured it reports itself disabled and every send is skipped, which
// keeps local development working without an account.
type SMSService struct {
	client *twilio.RestClient
	from   string
}

func NewSMSService(cfg *config.Config) *SMSService {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
		logrus.Warn("Twilio credentials not configured, SMS delivery disabled")
		return &SMSService{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})

	return &SMSService{
		client: client,
		from:   cfg.TwilioPhoneNumber,
	}
}

func (ss *SMSService) Enabled() bool {
	return ss.client != nil
}

// SendSMS delivers one message and returns the provider message SID.
func (ss *SMSService) SendSMS(ctx context.Context, to, body string) (string, error) {
	if ss.client == nil {
		return "", fmt.Errorf("sms delivery disabled")
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(ss.from)
	params.SetBody(body)

	resp, err := ss.client.Api.CreateMessage(params)
	if err != nil {
		logrus.Errorf("Failed to send SMS to %s: %v", to, err)
		return "", err
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}

	logrus.Debugf("SMS sent to %s (sid %s)", to, sid)
	return sid, nil
}
