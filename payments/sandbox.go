package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/google/uuid"
)

// DeclinedTestCard always declines in the sandbox.
const DeclinedTestCard = "4000000000000002"

const sandboxTokenPrefix = "sandbox_tok_"

// Sandbox is an in-process Authorizer used when no card gateway is configured.
type Sandbox struct {
	Now func() time.Time
}

func NewSandbox() *Sandbox {
	return &Sandbox{Now: time.Now}
}

func (s *Sandbox) AuthorizeCard(ctx context.Context, user models.User, card CardDetails) (Authorization, error) {
	if reasons := s.check(card); len(reasons) > 0 {
		return Authorization{Approved: false, Reasons: reasons}, nil
	}
	return Authorization{
		Approved: true,
		Token:    sandboxTokenPrefix + uuid.NewString(),
		Brand:    CardBrand(card.Number),
		Last4:    Last4(card.Number),
	}, nil
}

func (s *Sandbox) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if req.Amount <= 0 {
		return ChargeResult{}, fmt.Errorf("sandbox: invalid amount %d", req.Amount)
	}

	if req.Card == nil {
		if !strings.HasPrefix(req.CardToken, sandboxTokenPrefix) {
			return ChargeResult{Paid: false, Reasons: map[string]string{"cards": "The selected card can no longer be charged."}}, nil
		}
	} else if reasons := s.check(*req.Card); len(reasons) > 0 {
		return ChargeResult{Paid: false, Reasons: reasons}, nil
	}

	return ChargeResult{Paid: true, TransactionID: "sandbox_txn_" + req.InvoiceID.String()}, nil
}

func (s *Sandbox) check(card CardDetails) map[string]string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	number := SanitizeCardNumber(card.Number)
	switch {
	case !LuhnValid(number):
		return map[string]string{"card_number": "The card number is not valid."}
	case number == DeclinedTestCard:
		return map[string]string{"card_number": "Your card was declined."}
	case CardExpired(card.ExpirationMonth, card.ExpirationYear, now()):
		return map[string]string{"expiration_month": "Your card has expired."}
	}
	return nil
}
