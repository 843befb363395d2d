// Package validation checks trade payloads before they reach storage.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/viktsys/tradestore/models"
)

// RequiredFields lists the keys every create or update must carry, in the
// order they are reported.
var RequiredFields = []string{"symbol", "quantity", "price", "side"}

// MissingFieldsError reports every required key absent from a payload.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Bounds on quantity and price. A decimal is printed in full, so a large
// exponent turns a tiny request into megabytes of output.
const (
	MaxAmountDigits   = 38
	MaxAmountExponent = 30
)

// AmountRangeError reports a quantity or price outside the storable range.
type AmountRangeError struct {
	Field string
}

func (e *AmountRangeError) Error() string {
	return fmt.Sprintf("%s must have at most %d digits and an exponent within ±%d",
		e.Field, MaxAmountDigits, MaxAmountExponent)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names so the error lines up with what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Validate returns nil or a *MissingFieldsError naming all missing keys at once.
// A key counts as missing when it is absent, null, or a blank string. A
// complete payload can still fail with an *AmountRangeError.
func Validate(p *models.TradePayload) error {
	if p == nil {
		return &MissingFieldsError{Fields: append([]string(nil), RequiredFields...)}
	}

	err := validate.Struct(p)
	if err == nil {
		if err := CheckAmount("quantity", *p.Quantity); err != nil {
			return err
		}
		return CheckAmount("price", *p.Price)
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return &MissingFieldsError{Fields: missing}
}

// CheckAmount rejects values whose coefficient or exponent is out of range.
func CheckAmount(field string, d decimal.Decimal) error {
	exp := d.Exponent()
	if exp > MaxAmountExponent || exp < -MaxAmountExponent || d.NumDigits() > MaxAmountDigits {
		return &AmountRangeError{Field: field}
	}
	return nil
}
