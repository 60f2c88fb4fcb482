package api

import (
	"bytes"
	"errors"
	"net/http"

	"slotbook/internal/models"
	"slotbook/internal/service"
)

type bannerResponse struct {
	URL string `json:"bannerUrl"`
}

func (s *HTTPServer) handleListPackages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Catalog.Packages())
}

func (s *HTTPServer) handleReplacePackages(w http.ResponseWriter, r *http.Request) {
	var pkgs []models.EventPackage
	if err := decodeJSON(w, r, &pkgs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.deps.Catalog.Replace(r.Context(), pkgs); err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Catalog.Packages())
}

func (s *HTTPServer) handleGetBanner(w http.ResponseWriter, r *http.Request) {
	url, err := s.deps.Site.BannerURL(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bannerResponse{URL: url})
}

func (s *HTTPServer) handleGetWorkshopBanner(w http.ResponseWriter, r *http.Request) {
	url, err := s.deps.Site.WorkshopBannerURL(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bannerResponse{URL: url})
}

func (s *HTTPServer) handleUploadBanner(w http.ResponseWriter, r *http.Request) {
	file, ok := s.readBanner(w, r)
	if !ok {
		return
	}
	url, err := s.deps.Site.SetBanner(r.Context(), file.FileName, bytes.NewReader(file.Data))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bannerResponse{URL: url})
}

func (s *HTTPServer) handleUploadWorkshopBanner(w http.ResponseWriter, r *http.Request) {
	file, ok := s.readBanner(w, r)
	if !ok {
		return
	}
	url, err := s.deps.Site.SetWorkshopBanner(r.Context(), file.FileName, bytes.NewReader(file.Data))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bannerResponse{URL: url})
}

func (s *HTTPServer) readBanner(w http.ResponseWriter, r *http.Request) (*models.Upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	if err := r.ParseMultipartForm(s.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		} else {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
		}
		return nil, false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, err := formFile(r, "banner")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if file == nil {
		writeServiceError(w, s.logger, service.ErrUploadRequired)
		return nil, false
	}
	return file, true
}

func (s *HTTPServer) handleGetWorkshop(w http.ResponseWriter, r *http.Request) {
	workshop, err := s.deps.Site.Workshop(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, workshop)
}

func (s *HTTPServer) handleUpdateWorkshop(w http.ResponseWriter, r *http.Request) {
	var in models.WorkshopContent
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	out, err := s.deps.Site.UpdateWorkshop(r.Context(), in)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
