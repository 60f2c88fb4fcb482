package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"slotbook/internal/models"
	"slotbook/internal/validation"

	"github.com/gorilla/mux"
)

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := validation.Form{
		Name:         r.FormValue("name"),
		Phone:        r.FormValue("number"),
		Address:      r.FormValue("address"),
		PackagePrice: r.FormValue("package"),
		PaymentMode:  r.FormValue("paymentMode"),
	}
	shot, err := formFile(r, "screenshot")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	form.Screenshot = shot

	booking, err := s.deps.Bookings.CreateCashBooking(r.Context(), form)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.deps.Bookings.ListBookings(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleTogglePaid(w http.ResponseWriter, r *http.Request) {
	booking, err := s.deps.Bookings.TogglePaid(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Bookings.DeleteBooking(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Booking deleted"})
}

func (s *HTTPServer) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Bookings.DeleteAllBookings(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, models.BookingsDeleted{DeletedCount: n})
}

func (s *HTTPServer) handleDeleteByPackage(w http.ResponseWriter, r *http.Request) {
	n, err := s.deps.Bookings.DeleteBookingsByPackage(r.Context(), mux.Vars(r)["price"])
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, models.BookingsDeleted{DeletedCount: n})
}

// formFile reads an optional multipart file. A missing field yields nil.
func formFile(r *http.Request, field string) (*models.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s upload", field)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s", field)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &models.Upload{FileName: strings.TrimSpace(header.Filename), Data: data}, nil
}
