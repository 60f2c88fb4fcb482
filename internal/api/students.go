package api

import (
	"net/http"

	"slotbook/internal/models"
)

func (s *HTTPServer) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	var in models.Student
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.deps.Students.Register(r.Context(), &in); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, in)
}

func (s *HTTPServer) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.deps.Students.List(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

func (s *HTTPServer) handlePublicStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.deps.Students.Public(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	if students == nil {
		students = []models.PublicStudent{}
	}
	writeJSON(w, http.StatusOK, students)
}
