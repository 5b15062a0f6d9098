package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/Ananth-NQI/recovery-bot/internal/config"
	"github.com/Ananth-NQI/recovery-bot/internal/utils"
)

type TwilioService struct {
	client *twilio.RestClient
	from   string // Twilio WhatsApp sender, "whatsapp:+14155238886"
	logger *slog.Logger
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg config.TwilioConfig, logger *slog.Logger) (*TwilioService, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.WhatsAppFrom == "" {
		return nil, errors.New("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioService{
		client: client,
		from:   whatsAppAddress(cfg.WhatsAppFrom),
		logger: logger.With("component", "twilio"),
	}, nil
}

// whatsAppAddress renders a number in Twilio's channel address format.
func whatsAppAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + utils.E164(number)
}

// SendText sends a WhatsApp message via Twilio
func (t *TwilioService) SendText(ctx context.Context, to, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(whatsAppAddress(to))
	params.SetBody(text)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	if resp.Sid != nil {
		t.logger.Debug("whatsapp message sent", "sid", *resp.Sid)
	}
	return nil
}

var _ MessageSender = (*TwilioService)(nil)
