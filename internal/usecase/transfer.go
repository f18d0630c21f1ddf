package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// LiveAgentTransfer redirects an in-progress call leg to a human agent
// by updating the call with new TwiML.
type LiveAgentTransfer struct {
	client      *twilio.RestClient
	agentNumber string
}

func NewLiveAgentTransfer(accountSID, authToken, agentNumber string) *LiveAgentTransfer {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &LiveAgentTransfer{client: client, agentNumber: agentNumber}
}

// Transfer dials the configured agent number into the live call. The
// context is accepted for interface symmetry; the REST client manages
// its own request deadline.
func (t *LiveAgentTransfer) Transfer(ctx context.Context, callID string) error {
	if t.agentNumber == "" {
		return fmt.Errorf("usecase: live agent number not configured")
	}
	if callID == "" {
		return fmt.Errorf("usecase: call id is empty")
	}
	twiml := fmt.Sprintf(
		`<?xml version="1.0" encoding="UTF-8"?><Response><Say>Transferring you now. Please hold.</Say><Dial>%s</Dial></Response>`,
		t.agentNumber,
	)
	params := &twilioApi.UpdateCallParams{}
	params.SetTwiml(twiml)
	if _, err := t.client.Api.UpdateCall(callID, params); err != nil {
		return fmt.Errorf("usecase: redirect call %s: %w", callID, err)
	}
	log.Printf("[transfer] call %s redirected to live agent", callID)
	return nil
}
