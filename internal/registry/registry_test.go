package registry

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"slotbook/internal/auth"
	"slotbook/internal/client"
	"slotbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	bookings []models.Booking
	err      error
	calls    []string
}

func (f *fakeBackend) ListBookings(_ context.Context, token string) ([]models.Booking, error) {
	f.calls = append(f.calls, "list")
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Booking(nil), f.bookings...), nil
}

func (f *fakeBackend) TogglePaid(_ context.Context, _, id string) (*models.Booking, error) {
	f.calls = append(f.calls, "toggle")
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].IsPaid = !f.bookings[i].IsPaid
			b := f.bookings[i]
			return &b, nil
		}
	}
	return nil, &client.APIError{Status: http.StatusNotFound}
}

func (f *fakeBackend) DeleteBooking(_ context.Context, _, id string) error {
	f.calls = append(f.calls, "delete")
	return f.err
}

func (f *fakeBackend) DeleteAllBookings(_ context.Context, _ string) (int64, error) {
	f.calls = append(f.calls, "delete-all")
	if f.err != nil {
		return 0, f.err
	}
	n := int64(len(f.bookings))
	f.bookings = nil
	return n, nil
}

func (f *fakeBackend) DeleteBookingsByPackage(_ context.Context, _, price string) (int64, error) {
	f.calls = append(f.calls, "delete-package")
	if f.err != nil {
		return 0, f.err
	}
	var kept []models.Booking
	var n int64
	for _, b := range f.bookings {
		if b.PackagePrice == price {
			n++
			continue
		}
		kept = append(kept, b)
	}
	f.bookings = kept
	return n, nil
}

type tokenAuthn struct{}

func (tokenAuthn) Login(_ context.Context, email, _ string) (*models.LoginResult, error) {
	return &models.LoginResult{Email: email, Token: "tok"}, nil
}

func loggedIn(t *testing.T) *auth.Session {
	t.Helper()
	s, err := auth.NewSession(auth.NewMemoryStore(), tokenAuthn{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Login(context.Background(), "admin@example.com", "pw"))
	return s
}

func sampleBookings() []models.Booking {
	return []models.Booking{
		{ID: "1", Token: "AB12CD34", Name: "Asha Rao", Phone: "9876543210", Address: "Pune", PackagePrice: "499", PaymentMode: "cash"},
		{ID: "2", Token: "ZX98YU76", Name: "Ravi", Phone: "9123456780", Address: "Delhi", PackagePrice: "999", PaymentMode: "online", IsPaid: true},
		{ID: "3", Token: "QW45ER67", Name: "Meena", Phone: "9988776655", Address: "Asha Nagar", PackagePrice: "499", PaymentMode: "cash", IsPaid: true},
		{ID: "4", Token: "PO09IU87", Name: "Kiran", Phone: "9000000001", Address: "Mumbai", PackagePrice: "1499", PaymentMode: "online", IsPaid: true},
	}
}

func ids(bs []models.Booking) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.ID)
	}
	return out
}

type countingConfirmer struct {
	answers []bool
	prompts []Prompt
}

func (c *countingConfirmer) Confirm(_ context.Context, p Prompt) (bool, error) {
	c.prompts = append(c.prompts, p)
	ans := c.answers[len(c.prompts)-1]
	return ans, nil
}

func TestProject(t *testing.T) {
	records := sampleBookings()

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"empty filter", Filter{}, []string{"1", "2", "3", "4"}},
		{"all literals", Filter{PaymentMode: FilterAll, Package: FilterAll, PaidStatus: FilterAll}, []string{"1", "2", "3", "4"}},
		{"name case insensitive", Filter{Query: "asha"}, []string{"1", "3"}},
		{"token", Filter{Query: "zx98"}, []string{"2"}},
		{"phone digits", Filter{Query: "12345"}, []string{"2"}},
		{"mode", Filter{PaymentMode: "cash"}, []string{"1", "3"}},
		{"package", Filter{Package: "499"}, []string{"1", "3"}},
		{"paid", Filter{PaidStatus: StatusPaid}, []string{"2", "3", "4"}},
		{"pending", Filter{PaidStatus: StatusPending}, []string{"1"}},
		{"combined", Filter{Query: "a", PaymentMode: "online", PaidStatus: StatusPaid}, []string{"2", "4"}},
		{"no match", Filter{Query: "nobody"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Project(records, tt.filter)))
		})
	}
}

func TestProjectIsIdempotent(t *testing.T) {
	records := sampleBookings()
	f := Filter{Query: "a", PaidStatus: StatusPaid}

	once := Project(records, f)
	twice := Project(once, f)
	assert.Equal(t, once, twice)
	assert.Equal(t, sampleBookings(), records)
}

func TestRefreshAndView(t *testing.T) {
	backend := &fakeBackend{bookings: sampleBookings()}
	r := New(backend, nil)
	sess := loggedIn(t)

	require.NoError(t, r.Refresh(context.Background(), sess))
	assert.Len(t, r.Records(), 4)
	assert.Equal(t, []string{"1", "3"}, ids(r.View(Filter{Package: "499"})))
	assert.Equal(t, []string{"1", "3"}, ids(r.View(Filter{Package: "499"})))
}

func TestTogglePaidReplacesInPlace(t *testing.T) {
	backend := &fakeBackend{bookings: sampleBookings()}
	r := New(backend, nil)
	sess := loggedIn(t)
	require.NoError(t, r.Refresh(context.Background(), sess))

	updated, err := r.TogglePaid(context.Background(), sess, "1")
	require.NoError(t, err)
	assert.True(t, updated.IsPaid)

	recs := r.Records()
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(recs))
	assert.True(t, recs[0].IsPaid)
	assert.Equal(t, []string{"list", "toggle"}, backend.calls)
}

func TestToggleMissingBooking(t *testing.T) {
	backend := &fakeBackend{bookings: sampleBookings()}
	r := New(backend, nil)
	_, err := r.TogglePaid(context.Background(), loggedIn(t), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteByPackageNeedsTwoConfirmations(t *testing.T) {
	backend := &fakeBackend{bookings: sampleBookings()}
	r := New(backend, nil)
	sess := loggedIn(t)
	require.NoError(t, r.Refresh(context.Background(), sess))

	c := &countingConfirmer{answers: []bool{true, true}}
	n, err := r.DeleteByPackage(context.Background(), sess, "499", c)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.Len(t, c.prompts, 2)
	assert.Equal(t, Prompt{Step: 1, Scope: "package 499", Count: 2}, c.prompts[0])
	assert.Equal(t, 2, c.prompts[1].Step)

	assert.Equal(t, []string{"2", "4"}, ids(r.Records()))
	assert.Equal(t, []string{"2", "4"}, ids(backend.bookings))
}

func TestBulkDeleteAbortsWithoutSecondConfirmation(t *testing.T) {
	backend := &fakeBackend{bookings: sampleBookings()}
	r := New(backend, nil)
	sess := loggedIn(t)
	require.NoError(t, r.Refresh(context.Background(), sess))

	c := &countingConfirmer{answers: []bool{true, false}}
	_, err := r.DeleteAll(context.Background(), sess, c)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Len(t, c.prompts, 2)
	assert.Equal(t, []string{"list"}, backend.calls)
	assert.Len(t, r.Records(), 4)

	c = &countingConfirmer{answers: []bool{false}}
	_, err = r.DeleteByPackage(context.Background(), sess, "499", c)
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Len(t, c.prompts, 1)

	_, err = r.DeleteAll(context.Background(), sess, nil)
	assert.ErrorIs(t, err, ErrNotConfirmed)
}

func TestDeleteAll(t *testing.T) {
	backend := &fakeBackend{bookings: sampleBookings()}
	r := New(backend, nil)
	sess := loggedIn(t)
	require.NoError(t, r.Refresh(context.Background(), sess))

	yes := ConfirmFunc(func(context.Context, Prompt) (bool, error) { return true, nil })
	n, err := r.DeleteAll(context.Background(), sess, yes)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Empty(t, r.Records())
}

func TestDeleteOne(t *testing.T) {
	backend := &fakeBackend{bookings: sampleBookings()}
	r := New(backend, nil)
	sess := loggedIn(t)
	require.NoError(t, r.Refresh(context.Background(), sess))

	require.NoError(t, r.DeleteOne(context.Background(), sess, "3"))
	assert.Equal(t, []string{"1", "2", "4"}, ids(r.Records()))
}

func TestAuthErrorLogsOutAndClears(t *testing.T) {
	backend := &fakeBackend{bookings: sampleBookings()}
	r := New(backend, nil)
	sess := loggedIn(t)
	require.NoError(t, r.Refresh(context.Background(), sess))

	backend.err = &client.AuthError{Message: "token expired"}
	_, err := r.TogglePaid(context.Background(), sess, "1")
	require.True(t, client.IsAuth(err))
	assert.False(t, sess.LoggedIn())
	assert.Empty(t, r.Records())

	err = r.Refresh(context.Background(), sess)
	assert.ErrorIs(t, err, auth.ErrUnauthenticated)
}

func TestBackendErrorKeepsRecords(t *testing.T) {
	backend := &fakeBackend{bookings: sampleBookings()}
	r := New(backend, nil)
	sess := loggedIn(t)
	require.NoError(t, r.Refresh(context.Background(), sess))

	backend.err = errors.New("boom")
	assert.Error(t, r.Refresh(context.Background(), sess))
	assert.Len(t, r.Records(), 4)
	assert.True(t, sess.LoggedIn())
}

func TestPackageOptions(t *testing.T) {
	r := New(&fakeBackend{bookings: []models.Booking{
		{ID: "a", PackagePrice: "1499"},
		{ID: "b", PackagePrice: "legacy"},
		{ID: "c", PackagePrice: "99"},
		{ID: "d", PackagePrice: "499"},
	}}, nil)
	require.NoError(t, r.Refresh(context.Background(), loggedIn(t)))

	got := r.PackageOptions([]string{"999", "499", "custom"})
	assert.Equal(t, []string{"99", "499", "999", "1499", "custom", "legacy"}, got)
}
