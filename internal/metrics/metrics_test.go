package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(bookingsCreated.WithLabelValues("cash"))
	IncBookingCreated("cash")
	assert.Equal(t, before+1, testutil.ToFloat64(bookingsCreated.WithLabelValues("cash")))

	beforeDeleted := testutil.ToFloat64(bookingsDeleted.WithLabelValues("package"))
	AddBookingsDeleted("package", 3)
	AddBookingsDeleted("package", 0)
	assert.Equal(t, beforeDeleted+3, testutil.ToFloat64(bookingsDeleted.WithLabelValues("package")))

	beforeTransitions := testutil.ToFloat64(submissionTransitions.WithLabelValues("draft", "validating"))
	IncTransition("draft", "validating")
	assert.Equal(t, beforeTransitions+1, testutil.ToFloat64(submissionTransitions.WithLabelValues("draft", "validating")))

	assert.NotPanics(t, func() {
		IncHTTP("bookings.list", "2xx")
		IncVerification("ok")
		AddOrdersAbandoned(2)
	})
}
