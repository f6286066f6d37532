package payments

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/google/uuid"
)

// Authorizer charges and tokenises payment cards. Declines are reported in
// the result; a returned error means the gateway could not be reached.
type Authorizer interface {
	AuthorizeCard(ctx context.Context, user models.User, card CardDetails) (Authorization, error)
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

type CardDetails struct {
	HolderName      string
	Number          string
	ExpirationMonth int
	ExpirationYear  int
	Code            string
}

type Authorization struct {
	Approved bool
	Token    string
	Brand    string
	Last4    string
	Reasons  map[string]string
}

type ChargeRequest struct {
	InvoiceID   uuid.UUID
	User        models.User
	Amount      models.Money
	Currency    string
	Description string

	// Exactly one of CardToken or Card is set.
	CardToken string
	Card      *CardDetails
}

type ChargeResult struct {
	Paid          bool
	TransactionID string
	Reasons       map[string]string
}

var nonDigitRegex = regexp.MustCompile(`[^0-9]`)

func SanitizeCardNumber(number string) string {
	return nonDigitRegex.ReplaceAllString(number, "")
}

// LuhnValid runs the mod-10 checksum over a sanitized card number.
func LuhnValid(number string) bool {
	digits := SanitizeCardNumber(number)
	if len(digits) < 12 || len(digits) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

func CardBrand(number string) string {
	digits := SanitizeCardNumber(number)
	switch {
	case strings.HasPrefix(digits, "4"):
		return "visa"
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return "amex"
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return "mastercard"
	case strings.HasPrefix(digits, "2"):
		return "mastercard"
	case strings.HasPrefix(digits, "6011"), strings.HasPrefix(digits, "65"):
		return "discover"
	}
	return "unknown"
}

func Last4(number string) string {
	digits := SanitizeCardNumber(number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// CardExpired reports whether the card's expiry month is already over at now.
func CardExpired(month, year int, now time.Time) bool {
	if month < 1 || month > 12 {
		return true
	}
	firstOfNextMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	return !now.Before(firstOfNextMonth)
}
