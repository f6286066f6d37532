package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/anjiri1684/excursion_booking/payments"
	"github.com/google/uuid"
)

type Outcome int

const (
	OutcomeRender Outcome = iota + 1
	OutcomeRedirect
	OutcomeComplete
)

// Result is what a wizard request resolves to.
type Result struct {
	Outcome Outcome

	// Render
	Step     string
	Template string
	Values   url.Values
	Errors   map[string]string
	Context  map[string]interface{}

	// Redirect and Complete
	Location  string
	BookingID uuid.UUID
}

type Request struct {
	Step    string
	Method  string
	Fields  url.Values
	Query   url.Values
	User    *models.User
	Session Session
}

// Routes are the locations the wizard redirects to.
type Routes struct {
	Step      func(step string) string
	Signup    string
	Dashboard string
}

func DefaultRoutes() Routes {
	return Routes{
		Step:      func(step string) string { return "/api/v1/booking/" + step },
		Signup:    "/api/v1/auth/signup",
		Dashboard: "/api/v1/dashboard",
	}
}

type Controller struct {
	Registry *Registry
	Records  Records
	Payments payments.Authorizer
	Routes   Routes
	Currency string
	Now      func() time.Time

	// OnConfirmed runs after a booking is stored and the wizard state is cleared.
	OnConfirmed func(booking models.Booking, user models.User)
	// OnDeclined runs after a charge is declined and the invoice saved.
	OnDeclined func(invoice models.Invoice, user models.User)
}

func NewController(records Records, authorizer payments.Authorizer) *Controller {
	return &Controller{
		Registry: DefaultRegistry(),
		Records:  records,
		Payments: authorizer,
		Routes:   DefaultRoutes(),
		Currency: "USD",
		Now:      time.Now,
	}
}

func (w *Controller) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func (w *Controller) redirectTo(step string) Result {
	return Result{Outcome: OutcomeRedirect, Location: w.Routes.Step(step)}
}

// Handle runs one wizard request against the visitor's session.
func (w *Controller) Handle(ctx context.Context, req Request) (Result, error) {
	first := w.Registry.First()
	state := LoadState(req.Session, first)

	if req.Step == "" || req.Query.Has("reset") {
		if err := SaveState(req.Session, NewState(first)); err != nil {
			return Result{}, err
		}
		return w.redirectTo(first), nil
	}

	if !w.Registry.Has(req.Step) {
		return Result{}, ErrUnknownStep
	}

	if req.Step == StepPayment && req.User == nil {
		req.Session.Set(ResumeStepKey, req.Step)
		state.CurrentStep = req.Step
		if err := SaveState(req.Session, state); err != nil {
			return Result{}, err
		}
		return Result{Outcome: OutcomeRedirect, Location: w.Routes.Signup}, nil
	}

	for _, earlier := range w.Registry.Before(req.Step) {
		if !state.HasStep(earlier) {
			state.CurrentStep = earlier
			if err := SaveState(req.Session, state); err != nil {
				return Result{}, err
			}
			return w.redirectTo(earlier), nil
		}
	}

	state.CurrentStep = req.Step

	if req.Method != http.MethodPost {
		if err := SaveState(req.Session, state); err != nil {
			return Result{}, err
		}
		return w.render(ctx, req, req.Step, w.storedValues(state, req), nil)
	}
	return w.post(ctx, state, req)
}

func (w *Controller) storedValues(state State, req Request) url.Values {
	if state.HasStep(req.Step) {
		return state.StepData[req.Step]
	}
	if req.Step == w.Registry.First() {
		return w.InitialValuesFor(req.Step, req.Query)
	}
	return url.Values{}
}

func (w *Controller) post(ctx context.Context, state State, req Request) (Result, error) {
	step := req.Step
	values := w.Registry.StepValues(step, req.Fields)

	prior, failed, failedErrs, err := w.revalidate(ctx, state, step, req.User)
	if err != nil {
		return Result{}, err
	}
	if failed != "" {
		state.CurrentStep = failed
		if err := SaveState(req.Session, state); err != nil {
			return Result{}, err
		}
		return w.render(ctx, req, failed, state.StepData[failed], failedErrs)
	}

	data, errs, err := w.clean(ctx, step, values, prior, req.User)
	if err != nil {
		return Result{}, err
	}
	if len(errs) > 0 {
		if err := SaveState(req.Session, state); err != nil {
			return Result{}, err
		}
		return w.render(ctx, req, step, redisplay(step, values), errs)
	}

	next, ok := w.Registry.Next(step)
	if ok {
		state.StepData[step] = values
		state.CurrentStep = next
		if err := SaveState(req.Session, state); err != nil {
			return Result{}, err
		}
		return w.redirectTo(next), nil
	}
	return w.finish(ctx, state, req, values, data)
}

// finish charges the booking total and, once paid, stores the booking.
func (w *Controller) finish(ctx context.Context, state State, req Request, values url.Values, data CleanedData) (Result, error) {
	user := *req.User

	invoice, reused, err := w.payInvoice(ctx, &state, user, data)
	if err != nil {
		return Result{}, err
	}

	if !invoice.IsPaid {
		state.CurrentStep = StepPayment
		state.InvoiceID = nil
		if err := SaveState(req.Session, state); err != nil {
			return Result{}, err
		}
		if w.OnDeclined != nil {
			w.OnDeclined(invoice, user)
		}
		return w.render(ctx, req, StepPayment, redisplay(StepPayment, values), InvoiceErrors(invoice))
	}

	state.InvoiceID = &invoice.ID
	if err := SaveState(req.Session, state); err != nil {
		return Result{}, err
	}

	// a reused invoice means an earlier attempt already stored the card
	booking, err := w.done(ctx, user, data, invoice, !reused)
	if err != nil {
		return Result{}, err
	}

	ClearState(req.Session)
	if w.OnConfirmed != nil {
		w.OnConfirmed(booking, user)
	}
	return Result{Outcome: OutcomeComplete, Location: w.Routes.Dashboard, BookingID: booking.ID}, nil
}

// payInvoice returns a paid invoice for the booking total, or the declined
// one. A cached invoice is reused only while it still matches; reused
// reports whether that happened.
func (w *Controller) payInvoice(ctx context.Context, state *State, user models.User, data CleanedData) (invoice models.Invoice, reused bool, err error) {
	total := ComputeTotal(data)
	if total <= 0 {
		return models.Invoice{}, false, fmt.Errorf("invoice total must be positive, got %s", total)
	}

	if state.InvoiceID != nil {
		cached, err := w.Records.Invoice(ctx, *state.InvoiceID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return models.Invoice{}, false, fmt.Errorf("load cached invoice: %w", err)
		}
		if err == nil && reusable(cached, user, total) {
			return cached, true, nil
		}
		state.InvoiceID = nil
	}

	invoice = models.Invoice{
		UserID:      user.ID,
		Amount:      total,
		Currency:    w.Currency,
		Description: ComputeDescription(data),
		Status:      models.InvoiceStatusPending,
	}
	if err := w.Records.CreateInvoice(ctx, &invoice); err != nil {
		return models.Invoice{}, false, fmt.Errorf("create invoice: %w", err)
	}

	charge := payments.ChargeRequest{
		InvoiceID:   invoice.ID,
		User:        user,
		Amount:      total,
		Currency:    invoice.Currency,
		Description: invoice.Description,
	}
	if data.Payment.SavedCard != nil {
		charge.CardToken = data.Payment.SavedCard.GatewayToken
	} else {
		charge.Card = data.Payment.Card
	}

	result, err := w.Payments.Charge(ctx, charge)
	if err != nil {
		return models.Invoice{}, false, fmt.Errorf("charge invoice %s: %w", invoice.ID, err)
	}

	if result.Paid {
		invoice.IsPaid = true
		invoice.Status = models.InvoiceStatusPaid
		if result.TransactionID != "" {
			txn := result.TransactionID
			invoice.GatewayTxnID = &txn
		}
	} else {
		invoice.Status = models.InvoiceStatusDeclined
		reasons, err := json.Marshal(result.Reasons)
		if err != nil {
			return models.Invoice{}, false, fmt.Errorf("encode decline reasons: %w", err)
		}
		invoice.FailureReasons = string(reasons)
	}

	if err := w.Records.SaveInvoice(ctx, &invoice); err != nil {
		return models.Invoice{}, false, fmt.Errorf("save invoice: %w", err)
	}
	return invoice, false, nil
}

func reusable(invoice models.Invoice, user models.User, total models.Money) bool {
	return invoice.IsPaid && invoice.BookingID == nil && invoice.UserID == user.ID && invoice.Amount == total
}

// done stores the booking for a paid invoice. saveCard stores a newly
// entered card first.
func (w *Controller) done(ctx context.Context, user models.User, data CleanedData, invoice models.Invoice, saveCard bool) (models.Booking, error) {
	if !invoice.IsPaid {
		return models.Booking{}, ErrInvoiceUnpaid
	}
	if data.Cruise == nil || data.Excursion == nil || data.Payment == nil {
		return models.Booking{}, errors.New("booking steps are incomplete")
	}

	if saveCard && data.Payment.SavedCard == nil && data.Payment.Card != nil {
		w.storeCard(ctx, user, *data.Payment.Card)
	}

	booking := bookingFromSteps(data, user)
	if err := w.Records.CompleteBooking(ctx, &booking, invoice.ID); err != nil {
		return models.Booking{}, fmt.Errorf("complete booking: %w", err)
	}
	return booking, nil
}

// storeCard keeps a newly used card for later bookings. The charge already
// went through, so failures only get logged.
func (w *Controller) storeCard(ctx context.Context, user models.User, details payments.CardDetails) {
	auth, err := w.Payments.AuthorizeCard(ctx, user, details)
	if err != nil {
		log.Printf("⚠️ Could not authorize card for user %s: %v", user.ID, err)
		return
	}
	if !auth.Approved {
		log.Printf("⚠️ Card for user %s was not approved for storage: %v", user.ID, auth.Reasons)
		return
	}

	card := models.CreditCard{
		UserID:          user.ID,
		HolderName:      details.HolderName,
		Brand:           auth.Brand,
		Last4:           auth.Last4,
		ExpirationMonth: details.ExpirationMonth,
		ExpirationYear:  details.ExpirationYear,
		GatewayToken:    auth.Token,
	}
	if err := w.Records.CreateCreditCard(ctx, &card); err != nil {
		log.Printf("🔥 Failed to save credit card for user %s: %v", user.ID, err)
	}
}

// InvoiceErrors turns an invoice's failure reasons into form errors.
func InvoiceErrors(invoice models.Invoice) map[string]string {
	errs := map[string]string{}
	if invoice.FailureReasons != "" {
		if err := json.Unmarshal([]byte(invoice.FailureReasons), &errs); err != nil {
			log.Printf("⚠️ Unreadable failure reasons on invoice %s: %v", invoice.ID, err)
		}
	}
	if len(errs) == 0 {
		errs[NonFieldErrors] = "Your payment was declined."
	}
	return errs
}

func (w *Controller) render(ctx context.Context, req Request, step string, values url.Values, errs map[string]string) (Result, error) {
	state := LoadState(req.Session, w.Registry.First())
	prior, _, _, err := w.revalidate(ctx, state, step, req.User)
	if err != nil {
		return Result{}, err
	}

	extra, err := w.ContextFor(ctx, step, prior, req.User)
	if err != nil {
		return Result{}, err
	}
	if values == nil {
		values = url.Values{}
	}
	return Result{
		Outcome:  OutcomeRender,
		Step:     step,
		Template: w.Registry.TemplateFor(step),
		Values:   values,
		Errors:   errs,
		Context:  extra,
	}, nil
}
