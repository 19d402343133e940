package report

import "github.com/shopspring/decimal"

// RatingCategory groups an employee's average supervisor rating.
type RatingCategory string

const (
	RatingPoor      RatingCategory = "MALO"
	RatingFair      RatingCategory = "Regular"
	RatingGood      RatingCategory = "Bueno"
	RatingVeryGood  RatingCategory = "Muy Bueno"
	RatingExcellent RatingCategory = "Excelente"
	RatingUnrated   RatingCategory = "Sin Calificar"
)

// RatingCategories lists the categories in display order.
var RatingCategories = []RatingCategory{
	RatingPoor, RatingFair, RatingGood, RatingVeryGood, RatingExcellent, RatingUnrated,
}

var (
	three = decimal.NewFromInt(3)
	six   = decimal.NewFromInt(6)
	seven = decimal.NewFromInt(7)
	eight = decimal.NewFromInt(8)
	ten   = decimal.NewFromInt(10)
)

// CategorizeAverage maps an average on the 0-10 scale to its category.
// Bounds are inclusive on the upper side: 3 is MALO, 3.1 is Regular.
func CategorizeAverage(avg decimal.Decimal) RatingCategory {
	switch {
	case avg.IsNegative() || avg.GreaterThan(ten):
		return RatingUnrated
	case avg.LessThanOrEqual(three):
		return RatingPoor
	case avg.LessThanOrEqual(six):
		return RatingFair
	case avg.LessThanOrEqual(seven):
		return RatingGood
	case avg.LessThanOrEqual(eight):
		return RatingVeryGood
	default:
		return RatingExcellent
	}
}
