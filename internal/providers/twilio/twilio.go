// Package twilio sends SMS through a workspace's Twilio account and checks
// inbound webhook signatures.
package twilio

import (
	"context"
	"fmt"

	"github.com/dimitrije/relayo-api/internal/models"
	"github.com/dimitrije/relayo-api/internal/providers"
	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type messageAPI interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

var _ providers.SMS = (*Sender)(nil)

type Sender struct {
	newAPI func(accountSID, authToken string) messageAPI
}

func NewSender() *Sender {
	return &Sender{
		newAPI: func(accountSID, authToken string) messageAPI {
			client := twilio.NewRestClientWithParams(twilio.ClientParams{
				Username: accountSID,
				Password: authToken,
			})
			return client.Api
		},
	}
}

// Send delivers body to the given number from the integration's sender number.
func (s *Sender) Send(_ context.Context, integ *models.Integration, to, body string) (*providers.SendResult, error) {
	if integ == nil || empty(integ.AccountSID) || empty(integ.AuthToken) || empty(integ.FromNumber) {
		return nil, providers.ErrNotConfigured
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(*integ.FromNumber)
	params.SetBody(body)

	resp, err := s.newAPI(*integ.AccountSID, *integ.AuthToken).CreateMessage(params)
	if err != nil {
		return nil, fmt.Errorf("failed to send sms: %w", err)
	}

	result := &providers.SendResult{}
	if resp.Sid != nil {
		result.MessageID = *resp.Sid
	}
	if resp.Status != nil {
		result.Status = *resp.Status
	}
	return result, nil
}

// ValidateSignature checks the X-Twilio-Signature of a webhook against the
// full request URL and its form parameters. An empty auth token accepts
// every request.
func ValidateSignature(authToken, url string, params map[string]string, signature string) bool {
	if authToken == "" {
		return true
	}
	validator := twilioclient.NewRequestValidator(authToken)
	return validator.Validate(url, params, signature)
}

func empty(s *string) bool {
	return s == nil || *s == ""
}
