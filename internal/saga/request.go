package saga

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Domenick1991/tripsaga/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Request starts one saga execution for a trip.
type Request struct {
	TripID        string               `json:"trip_id" validate:"required,max=128,excludesall=#"`
	FlightDetails domain.FlightDetails `json:"flight_details"`
	HotelDetails  domain.HotelDetails  `json:"hotel_details"`
	PaymentAmount decimal.Decimal      `json:"payment_amount"`
	Currency      string               `json:"currency" validate:"required,currency"`
}

// RequestValidator checks the shape of a Request before any step runs.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseCurrency(fl.Field().String())
		return err == nil
	})
	return &RequestValidator{validate: v}
}

// Validate returns an error wrapping domain.ErrValidation that lists every
// offending field.
func (v *RequestValidator) Validate(req Request) error {
	if err := v.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	if req.PaymentAmount.IsNegative() {
		return fmt.Errorf("%w: payment_amount must not be negative", domain.ErrValidation)
	}
	return nil
}
