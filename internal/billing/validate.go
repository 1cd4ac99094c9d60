package billing

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mmynk/billing/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// saveBillInput is the trimmed form input for SaveBill.
type saveBillInput struct {
	Name   string `json:"name" validate:"required,max=255"`
	Email  string `json:"email" validate:"required,max=255"`
	Amount string `json:"amount" validate:"required,max=32"`
}

type deleteCustomerInput struct {
	Email string `json:"email" validate:"required"`
}

// check validates the struct tags and parses the amount. Amounts fit
// models.AmountScale decimal places below models.MaxAmount on every backend.
func (in saveBillInput) check() (decimal.Decimal, error) {
	errs := collect(validate.Struct(in))

	var amount decimal.Decimal
	if in.Amount != "" {
		parsed, err := decimal.NewFromString(in.Amount)
		switch {
		case err != nil:
			errs.Add("amount", "must be a decimal number")
		case parsed.IsNegative():
			errs.Add("amount", "must not be negative")
		case !parsed.Equal(parsed.Truncate(models.AmountScale)):
			errs.Add("amount", fmt.Sprintf("must have at most %d decimal places", models.AmountScale))
		case parsed.GreaterThanOrEqual(models.MaxAmount):
			errs.Add("amount", "must be less than "+models.MaxAmount.String())
		default:
			amount = parsed
		}
	}

	if len(errs) > 0 {
		return decimal.Decimal{}, errs
	}
	return amount, nil
}

func (in deleteCustomerInput) check() error {
	if errs := collect(validate.Struct(in)); len(errs) > 0 {
		return errs
	}
	return nil
}

// collect converts validator failures into ValidationErrors.
func collect(err error) ValidationErrors {
	var out ValidationErrors
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		if err != nil {
			out.Add("input", err.Error())
		}
		return out
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out.Add(fe.Field(), "is required")
		case "max":
			out.Add(fe.Field(), fmt.Sprintf("must be at most %s characters", fe.Param()))
		default:
			out.Add(fe.Field(), "is invalid")
		}
	}
	return out
}
