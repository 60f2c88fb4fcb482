// Package validation gates booking and registration input before any network call.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"slotbook/internal/models"

	"github.com/go-playground/validator/v10"
)

const phoneLength = 10

var (
	phonePattern        = regexp.MustCompile(`^\d{10}$`)
	indianMobilePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("field"); name != "" {
			return name
		}
		return fld.Name
	})
	_ = v.RegisterValidation("phone10", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("indian_mobile", func(fl validator.FieldLevel) bool {
		return indianMobilePattern.MatchString(fl.Field().String())
	})
	return v
}

// FieldError names the field and the rule it failed.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists field failures in field order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed any rule.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Form is raw booking input as typed by the customer.
type Form struct {
	Name         string
	Phone        string
	Address      string
	PackagePrice string
	PaymentMode  string
	Screenshot   *models.Upload
}

// Policy carries the variant-dependent rules.
type Policy struct {
	RequireCashProof bool
}

type bookingInput struct {
	Name         string `field:"name" validate:"required"`
	Phone        string `field:"phone" validate:"required,phone10"`
	Address      string `field:"address" validate:"required"`
	PackagePrice string `field:"package" validate:"required"`
	PaymentMode  string `field:"paymentMode" validate:"required,oneof=cash online"`
}

// Request is a validated booking. Its fields cannot change after validation.
type Request struct {
	name         string
	phone        string
	address      string
	packagePrice string
	paymentMode  string
	screenshot   *models.Upload
}

func (r *Request) Name() string {
	return r.name
}

func (r *Request) Phone() string {
	return r.phone
}

func (r *Request) Address() string {
	return r.address
}

func (r *Request) PackagePrice() string {
	return r.packagePrice
}

func (r *Request) PaymentMode() string {
	return r.paymentMode
}

func (r *Request) IsCash() bool {
	return r.paymentMode == models.PaymentModeCash
}

// CashBooking builds the create-booking payload.
func (r *Request) CashBooking() models.CashBookingRequest {
	var shot *models.Upload
	if r.screenshot != nil {
		cp := *r.screenshot
		cp.Data = append([]byte(nil), r.screenshot.Data...)
		shot = &cp
	}
	return models.CashBookingRequest{
		Name:         r.name,
		Phone:        r.phone,
		Address:      r.address,
		PackagePrice: r.packagePrice,
		Screenshot:   shot,
	}
}

// OrderRequest builds the create-order payload.
func (r *Request) OrderRequest() models.OrderRequest {
	return models.OrderRequest{
		Name:         r.name,
		Phone:        r.phone,
		Address:      r.address,
		PackagePrice: r.packagePrice,
	}
}

// Validator checks booking forms under a fixed policy.
type Validator struct {
	policy Policy
}

func New(policy Policy) *Validator {
	return &Validator{policy: policy}
}

func (v *Validator) Policy() Policy {
	return v.policy
}

// Validate returns an immutable request or a *ValidationError. It has no side effects.
func (v *Validator) Validate(form Form) (*Request, error) {
	in := bookingInput{
		Name:         strings.TrimSpace(form.Name),
		Phone:        strings.TrimSpace(form.Phone),
		Address:      strings.TrimSpace(form.Address),
		PackagePrice: strings.TrimSpace(form.PackagePrice),
		PaymentMode:  strings.ToLower(strings.TrimSpace(form.PaymentMode)),
	}

	fields := collect(validate.Struct(in))

	if v.policy.RequireCashProof && in.PaymentMode == models.PaymentModeCash &&
		(form.Screenshot == nil || len(form.Screenshot.Data) == 0) {
		fields = append(fields, FieldError{Field: "screenshot", Rule: "required", Message: "payment screenshot is required for cash bookings"})
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	return &Request{
		name:         in.Name,
		phone:        in.Phone,
		address:      in.Address,
		packagePrice: in.PackagePrice,
		paymentMode:  in.PaymentMode,
		screenshot:   form.Screenshot,
	}, nil
}

// SanitizePhone keeps only digits and caps the result at ten, mirroring as-you-type input.
func SanitizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() == phoneLength {
			break
		}
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidPhone reports whether s is exactly ten digits.
func IsValidPhone(s string) bool {
	return phonePattern.MatchString(s)
}

type studentInput struct {
	StudentName          string `field:"studentName" validate:"required"`
	WhatsappNumber       string `field:"whatsappNumber" validate:"required,indian_mobile"`
	HighestQualification string `field:"highestQualification" validate:"required"`
	WorkingInIT          string `field:"workingInIT" validate:"required,oneof=yes no"`
}

// ValidateStudent checks a certification registration and normalises its fields.
func ValidateStudent(s *models.Student) error {
	in := studentInput{
		StudentName:          strings.TrimSpace(s.StudentName),
		WhatsappNumber:       strings.TrimSpace(s.WhatsappNumber),
		HighestQualification: strings.TrimSpace(s.HighestQualification),
		WorkingInIT:          strings.ToLower(strings.TrimSpace(s.WorkingInIT)),
	}
	if fields := collect(validate.Struct(in)); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	s.StudentName = in.StudentName
	s.WhatsappNumber = in.WhatsappNumber
	s.HighestQualification = in.HighestQualification
	s.WorkingInIT = in.WorkingInIT
	return nil
}

func collect(err error) []FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "form", Rule: "invalid", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "phone10":
		return "phone must be exactly 10 digits"
	case "indian_mobile":
		return "enter a valid 10-digit mobile number starting with 6-9"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
