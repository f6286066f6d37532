package wizard

import (
	"context"
	"errors"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownStep   = errors.New("unknown booking step")
	ErrInvoiceUnpaid = errors.New("invoice is not paid")
	ErrInvoiceBooked = errors.New("invoice already has a booking")
)

// Records is the persistence the wizard needs. Lookups of missing rows
// return an error wrapping ErrNotFound.
type Records interface {
	Cruises(ctx context.Context, ids []uint) ([]models.Cruise, error)
	ExcursionType(ctx context.Context, id uint) (models.ExcursionType, error)
	UpcomingExcursions(ctx context.Context, from time.Time) ([]models.Excursion, error)
	FindExcursions(ctx context.Context, cruiseIDs []uint, typeID uint, date time.Time) ([]models.Excursion, error)

	CreditCards(ctx context.Context, userID uuid.UUID) ([]models.CreditCard, error)
	CreditCard(ctx context.Context, userID uuid.UUID, id uint) (models.CreditCard, error)
	CreateCreditCard(ctx context.Context, card *models.CreditCard) error

	Invoice(ctx context.Context, id uuid.UUID) (models.Invoice, error)
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	SaveInvoice(ctx context.Context, invoice *models.Invoice) error

	// CompleteBooking inserts the booking and links the paid invoice to it
	// atomically.
	CompleteBooking(ctx context.Context, booking *models.Booking, invoiceID uuid.UUID) error
}
