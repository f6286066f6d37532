package wizard

import (
	"fmt"
	"strings"

	"github.com/anjiri1684/excursion_booking/models"
)

// ComputeTotal is adults*adult price plus kids*kid price, in cents.
func ComputeTotal(data CleanedData) models.Money {
	if data.Excursion == nil {
		return 0
	}
	ex := data.Excursion
	return ex.Excursion.AdultPrice.Times(ex.Adults) + ex.Excursion.KidPrice.Times(ex.Kids)
}

// ComputeDescription summarises the party and the excursion date, leaving out
// empty categories.
func ComputeDescription(data CleanedData) string {
	if data.Excursion == nil {
		return ""
	}
	ex := data.Excursion

	var members []string
	if ex.Adults > 0 {
		members = append(members, fmt.Sprintf("%d adult(s)", ex.Adults))
	}
	if ex.Kids > 0 {
		members = append(members, fmt.Sprintf("%d kid(s)", ex.Kids))
	}
	if len(members) == 0 {
		return fmt.Sprintf("Booking on %s", ex.Excursion.StringDateTime())
	}
	return fmt.Sprintf("Booking for %s on %s", strings.Join(members, " "), ex.Excursion.StringDateTime())
}

// bookingFromSteps projects the cleaned steps onto the fields a Booking owns.
// Payment fields never reach it.
func bookingFromSteps(data CleanedData, user models.User) models.Booking {
	cruises := make([]models.Cruise, len(data.Cruise.Cruises))
	copy(cruises, data.Cruise.Cruises)

	return models.Booking{
		UserID:          user.ID,
		ExcursionTypeID: data.Cruise.ExcursionType.ID,
		ExcursionID:     data.Excursion.Excursion.ID,
		Date:            data.Cruise.Date,
		Adults:          data.Excursion.Adults,
		Kids:            data.Excursion.Kids,
		TotalPrice:      ComputeTotal(data),
		IsPartner:       user.IsPartner,
		Cruises:         cruises,
	}
}
