package booking

import (
	"car-rental-booking/internal/domain/car"
)

type PriceCalculator interface {
	CalculatePriceCents(c *car.Car, r DateRange) int64
}

// DailyRateCalculator bills the car's flat daily rate per night.
type DailyRateCalculator struct{}

func NewDailyRateCalculator() *DailyRateCalculator {
	return &DailyRateCalculator{}
}

func (pc *DailyRateCalculator) CalculatePriceCents(c *car.Car, r DateRange) int64 {
	return c.PricePerDayCents() * int64(r.Nights())
}
