package wizard

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
)

// initialFields are the only query parameters that may seed the first step.
var initialFields = []string{"excursion_type", "date"}

// InitialValuesFor seeds the first step from the query string.
func (w *Controller) InitialValuesFor(step string, query url.Values) url.Values {
	values := url.Values{}
	if step != w.Registry.First() {
		return values
	}
	for _, field := range initialFields {
		if v := query.Get(field); v != "" {
			values.Set(field, v)
		}
	}
	return values
}

// ContextFor gathers the read-only data a step needs to render.
func (w *Controller) ContextFor(ctx context.Context, step string, data CleanedData, user *models.User) (map[string]interface{}, error) {
	extra := map[string]interface{}{}

	switch step {
	case StepCruise:
		now := w.now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		excursions, err := w.Records.UpcomingExcursions(ctx, today)
		if err != nil {
			return nil, fmt.Errorf("load upcoming excursions: %w", err)
		}
		extra["excursions_dates"] = excursionDates(excursions)

	case StepExcursion:
		if data.Cruise == nil {
			break
		}
		excursions, err := w.Records.FindExcursions(ctx, data.Cruise.CruiseIDs(), data.Cruise.ExcursionType.ID, data.Cruise.Date)
		if err != nil {
			return nil, fmt.Errorf("find excursions: %w", err)
		}
		extra["excursions"] = excursions
		extra["excursions_exists"] = len(excursions) > 0

	case StepPayment:
		if data.Excursion != nil {
			extra["excursion"] = data.Excursion.Excursion
			extra["booking_description"] = ComputeDescription(data)
			extra["booking_total"] = ComputeTotal(data).String()
			extra["currency"] = w.Currency
		}
		if user != nil {
			cards, err := w.Records.CreditCards(ctx, user.ID)
			if err != nil {
				return nil, fmt.Errorf("load credit cards: %w", err)
			}
			extra["cards"] = cards
		}
	}
	return extra, nil
}

func excursionDates(excursions []models.Excursion) []string {
	seen := map[string]bool{}
	dates := []string{}
	for _, excursion := range excursions {
		d := excursion.Date.Format(dateLayout)
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	return dates
}
