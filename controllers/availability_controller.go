package controllers

import (
	"encoding/json"
	"net/http"

	"talentlink_server/services"
)

// AvailabilityController struct
type AvailabilityController struct {
	Availability *services.AvailabilityService
}

// NewAvailabilityController initializes the controller
func NewAvailabilityController(service *services.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{Availability: service}
}

// HandleCreateWindow - expert declares a new availability window
func (c *AvailabilityController) HandleCreateWindow(w http.ResponseWriter, r *http.Request) {
	var request struct {
		OwnerID string      `json:"ownerId"`
		Start   interface{} `json:"start"`
		End     interface{} `json:"end"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}
	if request.OwnerID == "" {
		http.Error(w, `{"error": "ownerId is required"}`, http.StatusBadRequest)
		return
	}

	window, err := c.Availability.CreateWindow(r.Context(), request.OwnerID, request.Start, request.End)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, window)
}

// HandleListWindows - list one expert's windows for a date
func (c *AvailabilityController) HandleListWindows(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("ownerId")
	date := r.URL.Query().Get("date")
	if ownerID == "" || date == "" {
		http.Error(w, `{"error": "ownerId and date are required"}`, http.StatusBadRequest)
		return
	}

	windows, err := c.Availability.WindowsForDate(r.Context(), ownerID, date)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, windows)
}
