package output

import (
	"context"

	"github.com/pkg/errors"
	twilio "github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioSender delivers the processed text as an SMS. The chat id is used as
// the destination phone number.
type TwilioSender struct {
	AccountSID string
	AuthToken  string
	FromNumber string

	newCreator func(accountSID, authToken string) messageCreator
}

// NewTwilioSender builds a sender. When authToken is empty the stored bot
// token is used as the Twilio auth token for each message.
func NewTwilioSender(accountSID, authToken, fromNumber string) (*TwilioSender, error) {
	if accountSID == "" || fromNumber == "" {
		return nil, errors.New("TWILIO_ACCOUNT_SID and TWILIO_FROM_NUMBER must be set")
	}
	return &TwilioSender{
		AccountSID: accountSID,
		AuthToken:  authToken,
		FromNumber: fromNumber,
		newCreator: func(sid, token string) messageCreator {
			client := twilio.NewRestClientWithParams(twilio.ClientParams{
				Username: sid,
				Password: token,
			})
			return client.Api
		},
	}, nil
}

func (s *TwilioSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	token := s.AuthToken
	if token == "" {
		token = msg.BotToken
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(msg.ChatID)
	params.SetFrom(s.FromNumber)
	params.SetBody(msg.Text)

	_, err := s.newCreator(s.AccountSID, token).CreateMessage(params)
	if err == nil {
		return nil
	}
	var restErr *twclient.TwilioRestError
	if errors.As(err, &restErr) {
		return &UnexpectedStatusError{StatusCode: restErr.Status, Status: restErr.Message}
	}
	return errors.Wrap(err, "twilio create message")
}
