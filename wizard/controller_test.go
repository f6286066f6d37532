package wizard

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	excursionDate = time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	testNow       = time.Date(2030, time.May, 1, 12, 0, 0, 0, time.UTC)
)

type harness struct {
	controller *Controller
	records    *fakeRecords
	authorizer *fakeAuthorizer
	session    fakeSession
	user       *models.User
	confirmed  []models.Booking
	declined   []models.Invoice
}

func newHarness() *harness {
	h := &harness{
		records:    newFakeRecords(),
		authorizer: &fakeAuthorizer{},
		session:    fakeSession{},
		user:       &models.User{ID: uuid.New(), Email: "guest@example.com", IsPartner: true},
	}
	h.controller = NewController(h.records, h.authorizer)
	h.controller.Now = func() time.Time { return testNow }
	h.controller.OnConfirmed = func(b models.Booking, u models.User) { h.confirmed = append(h.confirmed, b) }
	h.controller.OnDeclined = func(i models.Invoice, u models.User) { h.declined = append(h.declined, i) }
	return h
}

func (h *harness) get(t *testing.T, step string, query url.Values) Result {
	t.Helper()
	res, err := h.controller.Handle(context.Background(), Request{
		Step: step, Method: http.MethodGet, Query: query, User: h.user, Session: h.session,
	})
	require.NoError(t, err)
	return res
}

func (h *harness) post(t *testing.T, step string, fields url.Values) Result {
	t.Helper()
	res, err := h.controller.Handle(context.Background(), Request{
		Step: step, Method: http.MethodPost, Fields: fields, Query: url.Values{}, User: h.user, Session: h.session,
	})
	require.NoError(t, err)
	return res
}

func (h *harness) state() State {
	return LoadState(h.session, StepCruise)
}

func cruiseFields() url.Values {
	return url.Values{"cruises": {"1"}, "excursion_type": {"5"}, "date": {"2030-06-01"}}
}

func excursionFields() url.Values {
	return url.Values{"excursion": {"10"}, "adults": {"2"}, "kids": {"1"}}
}

func newCardFields() url.Values {
	return url.Values{
		"card_holder_name": {"Ada Lovelace"},
		"card_number":      {"4242 4242 4242 4242"},
		"expiration_month": {"12"},
		"expiration_year":  {"2031"},
		"card_code":        {"123"},
		"agrees":           {"on"},
	}
}

func (h *harness) throughExcursion(t *testing.T) {
	t.Helper()
	require.Equal(t, "/api/v1/booking/excursion", h.post(t, StepCruise, cruiseFields()).Location)
	require.Equal(t, "/api/v1/booking/payment", h.post(t, StepExcursion, excursionFields()).Location)
}

func TestHandleWithoutStepRedirectsToFirst(t *testing.T) {
	h := newHarness()
	res := h.get(t, "", url.Values{})

	assert.Equal(t, OutcomeRedirect, res.Outcome)
	assert.Equal(t, "/api/v1/booking/cruise", res.Location)
}

func TestHandleResetClearsState(t *testing.T) {
	h := newHarness()
	h.throughExcursion(t)

	res := h.get(t, StepExcursion, url.Values{"reset": {""}})

	assert.Equal(t, "/api/v1/booking/cruise", res.Location)
	assert.False(t, h.state().HasStep(StepCruise))
}

func TestHandleUnknownStep(t *testing.T) {
	h := newHarness()
	_, err := h.controller.Handle(context.Background(), Request{Step: "upsell", Method: http.MethodGet, Session: h.session})
	assert.ErrorIs(t, err, ErrUnknownStep)
}

func TestExcursionWithoutCruiseRedirectsToCruise(t *testing.T) {
	submissions := []url.Values{
		excursionFields(),
		{},
		{"excursion": {"999"}, "adults": {"-1"}},
	}

	for _, fields := range submissions {
		h := newHarness()
		res := h.post(t, StepExcursion, fields)

		assert.Equal(t, OutcomeRedirect, res.Outcome)
		assert.Equal(t, "/api/v1/booking/cruise", res.Location)
		assert.Equal(t, StepCruise, h.state().CurrentStep)
	}
}

func TestAnonymousPaymentRedirectsToSignup(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		h := newHarness()
		res, err := h.controller.Handle(context.Background(), Request{
			Step: StepPayment, Method: method, Fields: newCardFields(), Session: h.session,
		})
		require.NoError(t, err)

		assert.Equal(t, OutcomeRedirect, res.Outcome)
		assert.Equal(t, "/api/v1/auth/signup", res.Location)
		assert.Equal(t, StepPayment, h.session[ResumeStepKey])
		assert.Empty(t, h.authorizer.charges)
	}
}

func TestGetCruiseSeedsAllowedQueryValues(t *testing.T) {
	h := newHarness()
	res := h.get(t, StepCruise, url.Values{"excursion_type": {"5"}, "date": {"2030-06-01"}, "evil": {"x"}})

	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.Equal(t, "booking/cruise.html", res.Template)
	assert.Equal(t, url.Values{"excursion_type": {"5"}, "date": {"2030-06-01"}}, res.Values)
	assert.Equal(t, []string{"2030-06-01"}, res.Context["excursions_dates"])
}

func TestInitialValuesForKeepsOnlyAllowList(t *testing.T) {
	h := newHarness()
	got := h.controller.InitialValuesFor(StepCruise, url.Values{"excursion_type": {"5"}, "date": {"2024-01-01"}, "evil": {"x"}})
	assert.Equal(t, url.Values{"excursion_type": {"5"}, "date": {"2024-01-01"}}, got)

	assert.Empty(t, h.controller.InitialValuesFor(StepExcursion, url.Values{"excursion_type": {"5"}}))
}

func TestCruiseValidationErrorsRerender(t *testing.T) {
	h := newHarness()
	res := h.post(t, StepCruise, url.Values{"cruises": {"1"}, "excursion_type": {"5"}})

	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.Equal(t, StepCruise, res.Step)
	assert.Contains(t, res.Errors, "date")
	assert.False(t, h.state().HasStep(StepCruise))
}

func TestCruiseRejectsUnknownChoices(t *testing.T) {
	h := newHarness()
	res := h.post(t, StepCruise, url.Values{"cruises": {"1", "77"}, "excursion_type": {"6"}, "date": {"2030-06-01"}})

	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.Contains(t, res.Errors, "cruises")
}

func TestStepPrefixIsStripped(t *testing.T) {
	h := newHarness()
	res := h.post(t, StepCruise, url.Values{"cruise-cruises": {"1"}, "cruise-excursion_type": {"5"}, "cruise-date": {"2030-06-01"}})

	assert.Equal(t, "/api/v1/booking/excursion", res.Location)
	assert.Equal(t, url.Values{"cruises": {"1"}, "excursion_type": {"5"}, "date": {"2030-06-01"}}, h.state().StepData[StepCruise])
}

func TestExcursionMustMatchCruiseSelection(t *testing.T) {
	h := newHarness()
	h.post(t, StepCruise, url.Values{"cruises": {"2"}, "excursion_type": {"5"}, "date": {"2030-06-01"}})

	res := h.post(t, StepExcursion, excursionFields())
	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.Contains(t, res.Errors, "excursion")

	res = h.get(t, StepExcursion, nil)
	assert.Equal(t, false, res.Context["excursions_exists"])
}

func TestExcursionNeedsSomeone(t *testing.T) {
	h := newHarness()
	h.post(t, StepCruise, cruiseFields())

	res := h.post(t, StepExcursion, url.Values{"excursion": {"10"}, "adults": {"0"}, "kids": {"0"}})
	assert.Contains(t, res.Errors, NonFieldErrors)
}

func TestPaymentContext(t *testing.T) {
	h := newHarness()
	h.throughExcursion(t)

	res := h.get(t, StepPayment, nil)
	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.Equal(t, "111.00", res.Context["booking_total"])
	assert.Equal(t, "Booking for 2 adult(s) 1 kid(s) on June 1, 2030 at 09:30", res.Context["booking_description"])
}

func TestCompleteBookingWithNewCard(t *testing.T) {
	h := newHarness()
	h.throughExcursion(t)

	res := h.post(t, StepPayment, newCardFields())

	require.Equal(t, OutcomeComplete, res.Outcome)
	assert.Equal(t, "/api/v1/dashboard", res.Location)
	require.Len(t, h.records.bookings, 1)

	booking := h.records.bookings[0]
	assert.Equal(t, res.BookingID, booking.ID)
	assert.Equal(t, models.Money(11100), booking.TotalPrice)
	assert.Equal(t, 2, booking.Adults)
	assert.Equal(t, 1, booking.Kids)
	assert.Equal(t, uint(10), booking.ExcursionID)
	assert.True(t, booking.IsPartner)
	assert.Len(t, booking.Cruises, 1)

	require.Len(t, h.authorizer.charges, 1)
	assert.Equal(t, "4242424242424242", h.authorizer.charges[0].Card.Number)
	assert.Equal(t, 1, h.authorizer.authorizations)
	require.Len(t, h.records.cards, 1)
	assert.Equal(t, "4242", h.records.cards[0].Last4)

	assert.Nil(t, h.session[StateKey])
	assert.Len(t, h.confirmed, 1)
}

func TestCompleteBookingWithSavedCard(t *testing.T) {
	h := newHarness()
	h.records.cards = []models.CreditCard{{ID: 3, UserID: h.user.ID, Last4: "4242", GatewayToken: "tok_saved"}}
	h.throughExcursion(t)

	res := h.post(t, StepPayment, url.Values{"payment-cards": {"3"}, "payment-agrees": {"true"}})

	require.Equal(t, OutcomeComplete, res.Outcome)
	require.Len(t, h.authorizer.charges, 1)
	assert.Equal(t, "tok_saved", h.authorizer.charges[0].CardToken)
	assert.Nil(t, h.authorizer.charges[0].Card)
	assert.Zero(t, h.authorizer.authorizations)
}

func TestUnparsableCardIDIsIgnored(t *testing.T) {
	h := newHarness()
	h.throughExcursion(t)

	res := h.post(t, StepPayment, url.Values{"cards": {"not-a-number"}, "agrees": {"on"}})

	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.NotContains(t, res.Errors, "cards")
	assert.Contains(t, res.Errors, "card_number")
	assert.Empty(t, h.authorizer.charges)
}

func TestCardOfAnotherUserIsRejected(t *testing.T) {
	h := newHarness()
	h.records.cards = []models.CreditCard{{ID: 3, UserID: uuid.New(), GatewayToken: "tok_other"}}
	h.throughExcursion(t)

	res := h.post(t, StepPayment, url.Values{"cards": {"3"}, "agrees": {"on"}})

	assert.Contains(t, res.Errors, "cards")
	assert.Empty(t, h.authorizer.charges)
}

func TestTermsMustBeAccepted(t *testing.T) {
	h := newHarness()
	h.throughExcursion(t)

	fields := newCardFields()
	fields.Del("agrees")
	res := h.post(t, StepPayment, fields)

	assert.Contains(t, res.Errors, "agrees")
	assert.NotContains(t, res.Values, "card_number")
	assert.NotContains(t, res.Values, "card_code")
}

func TestDeclinedPaymentNeverBooks(t *testing.T) {
	h := newHarness()
	h.authorizer.decline = map[string]string{"card_number": "Your card was declined."}
	h.throughExcursion(t)

	res := h.post(t, StepPayment, newCardFields())

	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.Equal(t, StepPayment, res.Step)
	assert.Equal(t, "Your card was declined.", res.Errors["card_number"])
	assert.Empty(t, h.records.bookings)
	assert.Empty(t, h.confirmed)
	require.Len(t, h.declined, 1)
	assert.Equal(t, models.InvoiceStatusDeclined, h.declined[0].Status)

	state := h.state()
	assert.Equal(t, StepPayment, state.CurrentStep)
	assert.Nil(t, state.InvoiceID)
}

func TestDoneRefusesUnpaidInvoice(t *testing.T) {
	h := newHarness()
	data := CleanedData{
		Cruise:    &CruiseData{Cruises: []models.Cruise{{ID: 1}}, ExcursionType: models.ExcursionType{ID: 5}, Date: excursionDate},
		Excursion: &ExcursionData{Excursion: h.records.excursions[0], Adults: 1},
		Payment:   &PaymentData{Agrees: true},
	}

	_, err := h.controller.done(context.Background(), *h.user, data, models.Invoice{ID: uuid.New(), IsPaid: false}, true)

	assert.ErrorIs(t, err, ErrInvoiceUnpaid)
	assert.Empty(t, h.records.bookings)
}

func TestCachedPaidInvoiceIsNotChargedTwice(t *testing.T) {
	h := newHarness()
	h.throughExcursion(t)

	paid := models.Invoice{ID: uuid.New(), UserID: h.user.ID, Amount: 11100, IsPaid: true, Status: models.InvoiceStatusPaid}
	h.records.invoices[paid.ID] = paid
	state := h.state()
	state.InvoiceID = &paid.ID
	require.NoError(t, SaveState(h.session, state))

	res := h.post(t, StepPayment, newCardFields())

	require.Equal(t, OutcomeComplete, res.Outcome)
	assert.Empty(t, h.authorizer.charges)
	assert.Zero(t, h.records.createdInvoices)
	assert.Equal(t, res.BookingID, *h.records.invoices[paid.ID].BookingID)
}

func TestCachedInvoiceWithDifferentAmountIsReplaced(t *testing.T) {
	h := newHarness()
	h.throughExcursion(t)

	stale := models.Invoice{ID: uuid.New(), UserID: h.user.ID, Amount: 4550, IsPaid: true}
	h.records.invoices[stale.ID] = stale
	state := h.state()
	state.InvoiceID = &stale.ID
	require.NoError(t, SaveState(h.session, state))

	res := h.post(t, StepPayment, newCardFields())

	require.Equal(t, OutcomeComplete, res.Outcome)
	require.Len(t, h.authorizer.charges, 1)
	assert.Equal(t, models.Money(11100), h.authorizer.charges[0].Amount)
	assert.Nil(t, h.records.invoices[stale.ID].BookingID)
}

func TestCardStorageFailureStillBooks(t *testing.T) {
	h := newHarness()
	h.authorizer.authErr = errors.New("gateway down")
	h.throughExcursion(t)

	res := h.post(t, StepPayment, newCardFields())

	assert.Equal(t, OutcomeComplete, res.Outcome)
	assert.Len(t, h.records.bookings, 1)
	assert.Empty(t, h.records.cards)
}

func TestPaymentRevalidatesEarlierSteps(t *testing.T) {
	h := newHarness()
	h.throughExcursion(t)
	h.records.excursions = nil

	res := h.post(t, StepPayment, newCardFields())

	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.Equal(t, StepExcursion, res.Step)
	assert.Contains(t, res.Errors, "excursion")
	assert.Empty(t, h.authorizer.charges)
}

func TestLookupFailureIsFatal(t *testing.T) {
	h := newHarness()
	h.records.err = errors.New("connection refused")

	_, err := h.controller.Handle(context.Background(), Request{
		Step: StepCruise, Method: http.MethodPost, Fields: cruiseFields(), Session: h.session,
	})
	assert.Error(t, err)
}

func TestFreePartyIsRejectedBeforePayment(t *testing.T) {
	h := newHarness()
	h.records.excursions[0].KidPrice = 0
	require.Equal(t, "/api/v1/booking/excursion", h.post(t, StepCruise, cruiseFields()).Location)

	res := h.post(t, StepExcursion, url.Values{"excursion": {"10"}, "adults": {"0"}, "kids": {"2"}})

	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.Equal(t, StepExcursion, res.Step)
	assert.Contains(t, res.Errors, NonFieldErrors)
	assert.False(t, h.state().HasStep(StepExcursion))
}

func TestPaymentRevalidationRejectsFreeParty(t *testing.T) {
	h := newHarness()
	h.records.excursions[0].KidPrice = 0
	require.Equal(t, "/api/v1/booking/excursion", h.post(t, StepCruise, cruiseFields()).Location)
	require.Equal(t, "/api/v1/booking/payment", h.post(t, StepExcursion, url.Values{"excursion": {"10"}, "adults": {"1"}, "kids": {"2"}}).Location)
	h.records.excursions[0].AdultPrice = 0

	res := h.post(t, StepPayment, newCardFields())

	assert.Equal(t, OutcomeRender, res.Outcome)
	assert.Equal(t, StepExcursion, res.Step)
	assert.Empty(t, h.authorizer.charges)
	assert.Zero(t, h.records.createdInvoices)
}

func TestRetryAfterFailedBookingDoesNotStoreCardTwice(t *testing.T) {
	h := newHarness()
	h.throughExcursion(t)
	h.records.completeErr = errors.New("deadlock detected")

	_, err := h.controller.Handle(context.Background(), Request{
		Step: StepPayment, Method: http.MethodPost, Fields: newCardFields(), Query: url.Values{}, User: h.user, Session: h.session,
	})
	require.Error(t, err)
	require.Len(t, h.records.cards, 1)
	require.NotNil(t, h.state().InvoiceID)

	h.records.completeErr = nil
	res := h.post(t, StepPayment, newCardFields())

	require.Equal(t, OutcomeComplete, res.Outcome)
	assert.Len(t, h.authorizer.charges, 1)
	assert.Equal(t, 1, h.authorizer.authorizations)
	assert.Len(t, h.records.cards, 1)
	assert.Len(t, h.records.bookings, 1)
}
