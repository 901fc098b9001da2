package calculator

import (
	"errors"

	"FinAnalyst/internal/model"
)

// PercentChange returns (last close - first close) / first close.
func PercentChange(points []model.PricePoint) (float64, error) {
	if len(points) == 0 {
		return 0, errors.New("no price points provided")
	}
	first := points[0].Close
	if first == 0 {
		return 0, errors.New("first close is zero")
	}
	return (points[len(points)-1].Close - first) / first, nil
}

// Trend labels the move over the window. Moves within flatBand (as a fraction) are "flat".
func Trend(change, flatBand float64) string {
	switch {
	case change > flatBand:
		return "up"
	case change < -flatBand:
		return "down"
	default:
		return "flat"
	}
}
