package validation

import (
	"errors"
	"testing"

	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		Name:         "Asha Rao",
		Phone:        "9876543210",
		Address:      "12 MG Road, Pune",
		PackagePrice: "499",
		PaymentMode:  models.PaymentModeCash,
	}
}

func TestValidatePhone(t *testing.T) {
	v := New(Policy{})

	tests := []struct {
		phone string
		valid bool
	}{
		{"9876543210", true},
		{"0123456789", true},
		{"987654321", false},
		{"98765432100", false},
		{"98765-4321", false},
		{"+919876543", false},
		{"98765432a0", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			form := validForm()
			form.Phone = tt.phone
			req, err := v.Validate(form)
			if tt.valid {
				require.NoError(t, err)
				assert.Equal(t, tt.phone, req.Phone())
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.True(t, verr.Has("phone"))
			assert.Nil(t, req)
		})
	}
}

func TestValidateReportsFieldsInOrder(t *testing.T) {
	v := New(Policy{RequireCashProof: true})

	_, err := v.Validate(Form{Phone: "123", PaymentMode: models.PaymentModeCash, PackagePrice: "499"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"name", "phone", "address", "screenshot"}, fields)
	assert.Equal(t, "required", verr.Fields[0].Rule)
	assert.Equal(t, "phone10", verr.Fields[1].Rule)
}

func TestValidateWhitespaceOnlyName(t *testing.T) {
	form := validForm()
	form.Name = "   "
	_, err := New(Policy{}).Validate(form)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("name"))
}

func TestValidateCashProofPolicy(t *testing.T) {
	form := validForm()

	t.Run("NotRequired", func(t *testing.T) {
		_, err := New(Policy{}).Validate(form)
		assert.NoError(t, err)
	})

	t.Run("RequiredAndMissing", func(t *testing.T) {
		_, err := New(Policy{RequireCashProof: true}).Validate(form)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.True(t, verr.Has("screenshot"))
	})

	t.Run("RequiredAndPresent", func(t *testing.T) {
		withShot := form
		withShot.Screenshot = &models.Upload{FileName: "proof.png", Data: []byte{1, 2, 3}}
		req, err := New(Policy{RequireCashProof: true}).Validate(withShot)
		require.NoError(t, err)
		require.NotNil(t, req.CashBooking().Screenshot)
		assert.Equal(t, "proof.png", req.CashBooking().Screenshot.FileName)
	})

	t.Run("OnlineIgnoresProof", func(t *testing.T) {
		online := form
		online.PaymentMode = models.PaymentModeOnline
		_, err := New(Policy{RequireCashProof: true}).Validate(online)
		assert.NoError(t, err)
	})
}

func TestValidatePaymentMode(t *testing.T) {
	form := validForm()
	form.PaymentMode = "cheque"
	_, err := New(Policy{}).Validate(form)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("paymentMode"))
}

func TestRequestIsDetachedFromForm(t *testing.T) {
	shot := &models.Upload{FileName: "a.png", Data: []byte("abc")}
	form := validForm()
	form.Screenshot = shot

	req, err := New(Policy{}).Validate(form)
	require.NoError(t, err)

	payload := req.CashBooking()
	payload.Screenshot.Data[0] = 'z'
	assert.Equal(t, "abc", string(req.CashBooking().Screenshot.Data))

	order := req.OrderRequest()
	assert.Equal(t, "Asha Rao", order.Name)
	assert.Equal(t, "499", order.PackagePrice)
	assert.True(t, req.IsCash())
}

func TestSanitizePhone(t *testing.T) {
	assert.Equal(t, "9876543210", SanitizePhone("+91 98765-43210"[4:]))
	assert.Equal(t, "9876543210", SanitizePhone("(987) 654-3210"))
	assert.Equal(t, "9876543210", SanitizePhone("98765432109999"))
	assert.Equal(t, "", SanitizePhone("abc"))
	assert.Equal(t, "12", SanitizePhone("١٢12"))
	assert.True(t, IsValidPhone(SanitizePhone("98 76 54 32 10")))
}

func TestValidateStudent(t *testing.T) {
	s := &models.Student{
		StudentName:          "  Ravi ",
		WhatsappNumber:       "9123456789",
		HighestQualification: "B.Tech",
		WorkingInIT:          "YES",
	}
	require.NoError(t, ValidateStudent(s))
	assert.Equal(t, "Ravi", s.StudentName)
	assert.Equal(t, "yes", s.WorkingInIT)

	bad := &models.Student{StudentName: "Ravi", WhatsappNumber: "5123456789", HighestQualification: "BSc", WorkingInIT: "maybe"}
	err := ValidateStudent(bad)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("whatsappNumber"))
	assert.True(t, verr.Has("workingInIT"))
}
