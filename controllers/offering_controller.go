package controllers

import (
	"encoding/json"
	"net/http"

	"talentlink_server/models"
	"talentlink_server/services"

	"github.com/gorilla/mux"
)

// OfferingController struct
type OfferingController struct {
	Offerings *services.OfferingService
}

// NewOfferingController initializes the controller
func NewOfferingController(service *services.OfferingService) *OfferingController {
	return &OfferingController{Offerings: service}
}

// HandleCreateOffering - expert creates a bookable service
func (c *OfferingController) HandleCreateOffering(w http.ResponseWriter, r *http.Request) {
	var request models.ServiceOffering
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	offering, err := c.Offerings.Create(r.Context(), request)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, offering)
}

// HandleGetOffering - fetch one offering
func (c *OfferingController) HandleGetOffering(w http.ResponseWriter, r *http.Request) {
	offeringID := mux.Vars(r)["offeringId"]

	offering, err := c.Offerings.Get(r.Context(), offeringID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, offering)
}
