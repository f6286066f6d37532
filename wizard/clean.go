package wizard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/anjiri1684/excursion_booking/payments"
)

// clean validates one step's values against the steps before it. Form
// errors are returned as a map; a non-nil error is a lookup failure.
func (w *Controller) clean(ctx context.Context, step string, values url.Values, prior CleanedData, user *models.User) (CleanedData, map[string]string, error) {
	data := prior
	switch step {
	case StepCruise:
		cruise, errs, err := w.cleanCruise(ctx, values)
		if err != nil || len(errs) > 0 {
			return data, errs, err
		}
		data.Cruise = cruise
	case StepExcursion:
		if prior.Cruise == nil {
			return data, map[string]string{NonFieldErrors: "Select a cruise first."}, nil
		}
		excursion, errs, err := w.cleanExcursion(ctx, values, *prior.Cruise)
		if err != nil || len(errs) > 0 {
			return data, errs, err
		}
		data.Excursion = excursion
	case StepPayment:
		if user == nil {
			return data, map[string]string{NonFieldErrors: "Sign in to pay for your booking."}, nil
		}
		payment, errs, err := w.cleanPayment(ctx, values, *user)
		if err != nil || len(errs) > 0 {
			return data, errs, err
		}
		data.Payment = payment
	default:
		return data, nil, ErrUnknownStep
	}
	return data, nil, nil
}

func (w *Controller) cleanCruise(ctx context.Context, values url.Values) (*CruiseData, map[string]string, error) {
	var form cruiseForm
	if errs := decodeForm(&form, values); errs != nil {
		return nil, errs, nil
	}
	if errs := validateForm(form); errs != nil {
		return nil, errs, nil
	}

	date, err := time.Parse(dateLayout, form.Date)
	if err != nil {
		return nil, map[string]string{"date": "Enter a valid date."}, nil
	}

	ids := uniqueIDs(form.Cruises)
	cruises, err := w.Records.Cruises(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load cruises: %w", err)
	}
	if len(cruises) != len(ids) {
		return nil, map[string]string{"cruises": "Select a valid choice."}, nil
	}

	excursionType, err := w.Records.ExcursionType(ctx, form.ExcursionType)
	if errors.Is(err, ErrNotFound) {
		return nil, map[string]string{"excursion_type": "Select a valid choice."}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load excursion type: %w", err)
	}

	return &CruiseData{Cruises: cruises, ExcursionType: excursionType, Date: date}, nil, nil
}

func (w *Controller) cleanExcursion(ctx context.Context, values url.Values, cruise CruiseData) (*ExcursionData, map[string]string, error) {
	var form excursionForm
	if errs := decodeForm(&form, values); errs != nil {
		return nil, errs, nil
	}
	if errs := validateForm(form); errs != nil {
		return nil, errs, nil
	}
	if form.Adults+form.Kids == 0 {
		return nil, map[string]string{NonFieldErrors: "Add at least one adult or kid."}, nil
	}

	available, err := w.Records.FindExcursions(ctx, cruise.CruiseIDs(), cruise.ExcursionType.ID, cruise.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("find excursions: %w", err)
	}

	for _, excursion := range available {
		if excursion.ID != form.Excursion {
			continue
		}
		if excursion.Capacity > 0 && form.Adults+form.Kids > excursion.Capacity {
			return nil, map[string]string{NonFieldErrors: fmt.Sprintf("This excursion takes at most %d people.", excursion.Capacity)}, nil
		}
		data := &ExcursionData{Excursion: excursion, Adults: form.Adults, Kids: form.Kids}
		if ComputeTotal(CleanedData{Excursion: data}) <= 0 {
			return nil, map[string]string{NonFieldErrors: "This excursion cannot be booked online for the selected party."}, nil
		}
		return data, nil, nil
	}
	return nil, map[string]string{"excursion": "Select a valid choice. That excursion is not available."}, nil
}

func (w *Controller) cleanPayment(ctx context.Context, values url.Values, user models.User) (*PaymentData, map[string]string, error) {
	values = normalizeCheckbox(values, "agrees")

	var form paymentForm
	if errs := decodeForm(&form, values); errs != nil {
		return nil, errs, nil
	}
	errs := validateForm(form)
	if errs == nil {
		errs = map[string]string{}
	}

	payment := &PaymentData{Agrees: form.Agrees}

	// an unparsable card id means no saved card was chosen
	if id, err := strconv.ParseUint(strings.TrimSpace(form.Cards), 10, 64); err == nil {
		card, err := w.Records.CreditCard(ctx, user.ID, uint(id))
		switch {
		case errors.Is(err, ErrNotFound):
			errs["cards"] = "Select a valid choice."
		case err != nil:
			return nil, nil, fmt.Errorf("load credit card: %w", err)
		default:
			payment.SavedCard = &card
		}
	}

	if payment.SavedCard == nil && errs["cards"] == "" {
		card, cardErrs := w.cleanCard(values)
		for field, msg := range cardErrs {
			errs[field] = msg
		}
		payment.Card = card
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}
	return payment, nil, nil
}

func (w *Controller) cleanCard(values url.Values) (*payments.CardDetails, map[string]string) {
	var form cardForm
	if errs := decodeForm(&form, values); errs != nil {
		return nil, errs
	}
	form.Number = payments.SanitizeCardNumber(form.Number)
	form.HolderName = strings.TrimSpace(form.HolderName)
	if errs := validateForm(form); errs != nil {
		return nil, errs
	}
	if payments.CardExpired(form.ExpirationMonth, form.ExpirationYear, w.now()) {
		return nil, map[string]string{"expiration_month": "This card has expired."}
	}
	return &payments.CardDetails{
		HolderName:      form.HolderName,
		Number:          form.Number,
		ExpirationMonth: form.ExpirationMonth,
		ExpirationYear:  form.ExpirationYear,
		Code:            form.Code,
	}, nil
}

// revalidate re-cleans the stored steps before step. It reports the first
// stored step that no longer validates.
func (w *Controller) revalidate(ctx context.Context, state State, step string, user *models.User) (CleanedData, string, map[string]string, error) {
	var data CleanedData
	for _, name := range w.Registry.Before(step) {
		cleaned, errs, err := w.clean(ctx, name, state.StepData[name], data, user)
		if err != nil {
			return data, "", nil, err
		}
		if len(errs) > 0 {
			return data, name, errs, nil
		}
		data = cleaned
	}
	return data, "", nil, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
