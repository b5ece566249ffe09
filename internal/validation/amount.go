package validation

import (
	"math"

	validation "github.com/jellydator/validation"
)

// PositiveAmount validates a monetary amount: strictly positive, finite and with
// at most two decimal places.
var PositiveAmount = validation.By(func(value interface{}) error {
	var amount float64
	switch v := value.(type) {
	case float64:
		amount = v
	case *float64:
		if v == nil {
			return nil
		}
		amount = *v
	default:
		return validation.NewError("validation_amount_type", "must be a number")
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return validation.NewError("validation_amount_positive", "must be greater than 0")
	}
	if cents := amount * 100; math.Abs(cents-math.Round(cents)) > 1e-6 {
		return validation.NewError("validation_amount_precision", "must have at most two decimal places")
	}
	return nil
})

// SortOrder accepts "asc" and "desc". Empty values are left to Required.
var SortOrder = validation.In("asc", "desc").Error("must be either asc or desc")
