package server

import (
	"net/http"
	"strings"

	"github.com/ThiagoRGoveia/contract-features/internal/features"
	"github.com/ThiagoRGoveia/contract-features/internal/models"
	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// FeatureReader is the part of the database the API reads from.
type FeatureReader interface {
	GetFeaturesByApplicationID(applicationID string) ([]models.FeatureRow, error)
}

type FeatureService struct {
	Store      FeatureReader
	Calculator features.Calculator
}

func NewFeatureService(store FeatureReader, calculator features.Calculator) *FeatureService {
	return &FeatureService{Store: store, Calculator: calculator}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

// GetFeatures serves the persisted feature rows of one application.
func (h *FeatureService) GetFeatures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	applicationID := strings.TrimPrefix(r.URL.Path, "/features/")
	if applicationID == "" {
		http.Error(w, "Application id is required in the URL path /features/{id}", http.StatusBadRequest)
		return
	}

	rows, err := h.Store.GetFeaturesByApplicationID(applicationID)
	if err != nil {
		log.Errorf("Failed to retrieve features for application %s: %v", applicationID, err)
		http.Error(w, "Failed to retrieve features", http.StatusInternalServerError)
		return
	}
	if len(rows) == 0 {
		http.Error(w, "No features found for application "+applicationID, http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

// ComputeFeatures derives the features of a posted application without storing anything.
func (h *FeatureService) ComputeFeatures(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var app models.Application
	if err := decoder.Decode(&app); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if app.ID == "" || app.ApplicationDate == "" {
		http.Error(w, "Fields 'id' and 'application_date' are required", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, h.Calculator.Compute(&app))
}
