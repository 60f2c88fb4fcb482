package api

import (
	"encoding/json"
	"net/http"

	"slotbook/internal/models"

	"github.com/gorilla/mux"
)

func (s *HTTPServer) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var in models.OrderRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	order, err := s.deps.Payments.CreateOrder(r.Context(), in)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (s *HTTPServer) handleVerify(w http.ResponseWriter, r *http.Request) {
	var in models.VerifyRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := s.deps.Payments.Verify(r.Context(), in)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) handlePriceBreakdown(w http.ResponseWriter, r *http.Request) {
	bd, err := s.deps.Payments.PriceBreakdown(mux.Vars(r)["amount"])
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bd)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(out)
}
