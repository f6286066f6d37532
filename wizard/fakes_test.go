package wizard

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/anjiri1684/excursion_booking/payments"
	"github.com/google/uuid"
)

type fakeSession map[string]interface{}

func (s fakeSession) Get(key string) interface{}      { return s[key] }
func (s fakeSession) Set(key string, val interface{}) { s[key] = val }
func (s fakeSession) Delete(key string)               { delete(s, key) }

type fakeRecords struct {
	cruises    map[uint]models.Cruise
	types      map[uint]models.ExcursionType
	excursions []models.Excursion
	cards      []models.CreditCard
	invoices   map[uuid.UUID]models.Invoice
	bookings   []models.Booking

	createdInvoices int
	err             error
	completeErr     error
}

func newFakeRecords() *fakeRecords {
	cruiseA := models.Cruise{ID: 1, ShipName: "Aurora"}
	cruiseB := models.Cruise{ID: 2, ShipName: "Boreal"}
	return &fakeRecords{
		cruises: map[uint]models.Cruise{1: cruiseA, 2: cruiseB},
		types:   map[uint]models.ExcursionType{5: {ID: 5, Name: "Snorkel", Slug: "snorkel"}},
		excursions: []models.Excursion{
			{
				ID:              10,
				ExcursionTypeID: 5,
				Date:            excursionDate,
				StartTime:       "09:30",
				AdultPrice:      4550,
				KidPrice:        2000,
				Capacity:        12,
				Cruises:         []models.Cruise{cruiseA},
			},
		},
		invoices: map[uuid.UUID]models.Invoice{},
	}
}

func (f *fakeRecords) Cruises(ctx context.Context, ids []uint) ([]models.Cruise, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Cruise
	for _, id := range ids {
		if cruise, ok := f.cruises[id]; ok {
			out = append(out, cruise)
		}
	}
	return out, nil
}

func (f *fakeRecords) ExcursionType(ctx context.Context, id uint) (models.ExcursionType, error) {
	if f.err != nil {
		return models.ExcursionType{}, f.err
	}
	t, ok := f.types[id]
	if !ok {
		return models.ExcursionType{}, fmt.Errorf("excursion type %d: %w", id, ErrNotFound)
	}
	return t, nil
}

func (f *fakeRecords) UpcomingExcursions(ctx context.Context, from time.Time) ([]models.Excursion, error) {
	var out []models.Excursion
	for _, e := range f.excursions {
		if !e.Date.Before(from) {
			out = append(out, e)
		}
	}
	return out, f.err
}

func (f *fakeRecords) FindExcursions(ctx context.Context, cruiseIDs []uint, typeID uint, date time.Time) ([]models.Excursion, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Excursion
	for _, e := range f.excursions {
		if e.ExcursionTypeID != typeID || !e.Date.Equal(date) {
			continue
		}
		for _, cruise := range e.Cruises {
			if containsID(cruiseIDs, cruise.ID) {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeRecords) CreditCards(ctx context.Context, userID uuid.UUID) ([]models.CreditCard, error) {
	var out []models.CreditCard
	for _, c := range f.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRecords) CreditCard(ctx context.Context, userID uuid.UUID, id uint) (models.CreditCard, error) {
	for _, c := range f.cards {
		if c.UserID == userID && c.ID == id {
			return c, nil
		}
	}
	return models.CreditCard{}, ErrNotFound
}

func (f *fakeRecords) CreateCreditCard(ctx context.Context, card *models.CreditCard) error {
	card.ID = uint(len(f.cards) + 100)
	f.cards = append(f.cards, *card)
	return nil
}

func (f *fakeRecords) Invoice(ctx context.Context, id uuid.UUID) (models.Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return models.Invoice{}, ErrNotFound
	}
	return inv, nil
}

func (f *fakeRecords) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	invoice.ID = uuid.New()
	f.invoices[invoice.ID] = *invoice
	f.createdInvoices++
	return nil
}

func (f *fakeRecords) SaveInvoice(ctx context.Context, invoice *models.Invoice) error {
	f.invoices[invoice.ID] = *invoice
	return nil
}

func (f *fakeRecords) CompleteBooking(ctx context.Context, booking *models.Booking, invoiceID uuid.UUID) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	inv := f.invoices[invoiceID]
	if !inv.IsPaid {
		return ErrInvoiceUnpaid
	}
	booking.ID = uuid.New()
	booking.Reference = "TESTREF1"
	inv.BookingID = &booking.ID
	f.invoices[invoiceID] = inv
	f.bookings = append(f.bookings, *booking)
	return nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type fakeAuthorizer struct {
	decline     map[string]string
	authDecline bool
	authErr     error

	charges        []payments.ChargeRequest
	authorizations int
}

func (f *fakeAuthorizer) AuthorizeCard(ctx context.Context, user models.User, card payments.CardDetails) (payments.Authorization, error) {
	f.authorizations++
	if f.authErr != nil {
		return payments.Authorization{}, f.authErr
	}
	if f.authDecline {
		return payments.Authorization{Approved: false, Reasons: map[string]string{"card_number": "declined"}}, nil
	}
	return payments.Authorization{Approved: true, Token: "tok_1", Brand: "visa", Last4: payments.Last4(card.Number)}, nil
}

func (f *fakeAuthorizer) Charge(ctx context.Context, req payments.ChargeRequest) (payments.ChargeResult, error) {
	f.charges = append(f.charges, req)
	if f.decline != nil {
		return payments.ChargeResult{Paid: false, Reasons: f.decline}, nil
	}
	return payments.ChargeResult{Paid: true, TransactionID: "txn_" + req.InvoiceID.String()}, nil
}
