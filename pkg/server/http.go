package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/razorlong2/epimind-app/pkg/common/logger"
	"github.com/razorlong2/epimind-app/pkg/common/models"
	"github.com/razorlong2/epimind-app/pkg/record"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/evaluations", h.handleEvaluate).Methods(http.MethodPost)
	router.HandleFunc("/patients/{patient}/last", h.handleLastAssessment).Methods(http.MethodGet)
	router.HandleFunc("/extract", h.handleExtract).Methods(http.MethodPost)
	router.HandleFunc("/documents", h.handleDocument).Methods(http.MethodPost)
	router.HandleFunc("/audit", h.handleAuditTrail).Methods(http.MethodGet)
	router.HandleFunc("/catalog/organisms", h.handleOrganisms).Methods(http.MethodGet)
	router.HandleFunc("/catalog/icd10", h.handleICD10).Methods(http.MethodGet)
	router.HandleFunc("/catalog/comorbidities", h.handleComorbidities).Methods(http.MethodGet)
}

func (h *HTTPHandler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	// Decoding over a pre-defaulted record keeps absent fields clinically
	// normal instead of zero.
	rec := record.NewClinicalRecord()
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		logger.Log.WithError(err).Warn("invalid evaluation payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	evaluation, err := h.service.Evaluate(r.Context(), rec)
	if err != nil {
		if record.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to evaluate record")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, evaluation)
}

func (h *HTTPHandler) handleLastAssessment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	patient := vars["patient"]

	evaluation, err := h.service.LastAssessment(r.Context(), patient)
	if err != nil {
		if errors.Is(err, ErrNoResult) {
			http.Error(w, "no assessment for patient", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to load last assessment")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, evaluation)
}

func (h *HTTPHandler) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req models.ExtractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid extraction payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Extract(req)
	if err != nil {
		if record.IsValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to extract values")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) handleDocument(w http.ResponseWriter, r *http.Request) {
	image, filename, err := readDocument(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Processing failures are domain results, not protocol errors.
	result := h.service.ProcessDocument(r.Context(), image, filename)
	writeJSON(w, http.StatusOK, result)
}

func readDocument(r *http.Request) ([]byte, string, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("document")
		if err != nil {
			return nil, "", errors.New("missing document file")
		}
		defer file.Close()

		image, err := io.ReadAll(file)
		if err != nil {
			return nil, "", err
		}
		return image, header.Filename, nil
	}

	image, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", err
	}
	return image, "", nil
}

func (h *HTTPHandler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if val := r.URL.Query().Get("limit"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	entries, err := h.service.AuditTrail(limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to read audit trail")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *HTTPHandler) handleOrganisms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.catalog.Organisms)
}

func (h *HTTPHandler) handleICD10(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.catalog.InfectionTypes)
}

func (h *HTTPHandler) handleComorbidities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.catalog.Comorbidities)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Log.WithError(err).Error("failed to write json response")
	}
}
