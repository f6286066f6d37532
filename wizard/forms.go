package wizard

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/anjiri1684/excursion_booking/payments"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

// NonFieldErrors keys errors that belong to the whole form.
const NonFieldErrors = "__all__"

const dateLayout = "2006-01-02"

var (
	validate = validator.New()
	decoder  = schema.NewDecoder()
)

func init() {
	decoder.IgnoreUnknownKeys(true)
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("schema"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

type cruiseForm struct {
	Cruises       []uint `schema:"cruises" validate:"required,min=1,dive,gt=0"`
	ExcursionType uint   `schema:"excursion_type" validate:"required"`
	Date          string `schema:"date" validate:"required,datetime=2006-01-02"`
}

type excursionForm struct {
	Excursion uint `schema:"excursion" validate:"required"`
	Adults    int  `schema:"adults" validate:"gte=0,lte=50"`
	Kids      int  `schema:"kids" validate:"gte=0,lte=50"`
}

type paymentForm struct {
	Cards  string `schema:"cards"`
	Agrees bool   `schema:"agrees" validate:"eq=true"`
}

type cardForm struct {
	HolderName      string `schema:"card_holder_name" validate:"required,min=2,max=100"`
	Number          string `schema:"card_number" validate:"required,credit_card"`
	ExpirationMonth int    `schema:"expiration_month" validate:"required,min=1,max=12"`
	ExpirationYear  int    `schema:"expiration_year" validate:"required,gte=2000,lte=2100"`
	Code            string `schema:"card_code" validate:"required,numeric,min=3,max=4"`
}

// CruiseData is the cleaned cruise step.
type CruiseData struct {
	Cruises       []models.Cruise
	ExcursionType models.ExcursionType
	Date          time.Time
}

func (c CruiseData) CruiseIDs() []uint {
	ids := make([]uint, len(c.Cruises))
	for i, cruise := range c.Cruises {
		ids[i] = cruise.ID
	}
	return ids
}

// ExcursionData is the cleaned excursion step.
type ExcursionData struct {
	Excursion models.Excursion
	Adults    int
	Kids      int
}

// PaymentData is the cleaned payment step. Exactly one of SavedCard or Card is set.
type PaymentData struct {
	SavedCard *models.CreditCard
	Card      *payments.CardDetails
	Agrees    bool
}

// CleanedData accumulates the cleaned steps seen so far.
type CleanedData struct {
	Cruise    *CruiseData
	Excursion *ExcursionData
	Payment   *PaymentData
}

func decodeForm(dst interface{}, values url.Values) map[string]string {
	err := decoder.Decode(dst, values)
	if err == nil {
		return nil
	}

	errs := map[string]string{}
	var multi schema.MultiError
	if errors.As(err, &multi) {
		for key := range multi {
			errs[key] = "Enter a valid value."
		}
		return errs
	}
	errs[NonFieldErrors] = "The submitted form could not be read."
	return errs
}

func validateForm(form interface{}) map[string]string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	errs := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs[NonFieldErrors] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		// dive errors come back as cruises[0]
		field := strings.SplitN(fe.Field(), "[", 2)[0]
		if _, seen := errs[field]; !seen {
			errs[field] = errorMessage(fe)
		}
	}
	return errs
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "gt":
		return "Select a valid choice."
	case "datetime":
		return "Enter a valid date."
	case "credit_card":
		return "Enter a valid card number."
	case "numeric":
		return "Enter digits only."
	case "eq":
		return "You must accept the terms to continue."
	}
	return "Enter a valid value."
}

// StepValues keeps the submitted fields the step declares. Keys may carry a
// "<step>-" prefix.
func (r *Registry) StepValues(step string, submitted url.Values) url.Values {
	allowed := map[string]bool{}
	for _, field := range r.Fields(step) {
		allowed[field] = true
	}

	values := url.Values{}
	prefix := step + "-"
	for key, vals := range submitted {
		name := strings.TrimPrefix(key, prefix)
		if !allowed[name] {
			continue
		}
		for _, v := range vals {
			values.Add(name, v)
		}
	}
	return values
}

// redisplay drops values that must never be echoed back.
func redisplay(step string, values url.Values) url.Values {
	if step != StepPayment {
		return values
	}
	out := url.Values{}
	for key, vals := range values {
		if key == "card_number" || key == "card_code" {
			continue
		}
		out[key] = vals
	}
	return out
}

// normalizeCheckbox turns HTML checkbox values into something strconv.ParseBool accepts.
func normalizeCheckbox(values url.Values, key string) url.Values {
	vals, ok := values[key]
	if !ok {
		return values
	}
	out := url.Values{}
	for k, v := range values {
		out[k] = v
	}
	normalized := make([]string, len(vals))
	for i, v := range vals {
		if strings.EqualFold(v, "on") {
			v = "true"
		}
		normalized[i] = v
	}
	out[key] = normalized
	return out
}
