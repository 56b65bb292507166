package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"talentlink_server/services"
	"talentlink_server/timegrid"
)

// respondJSON writes a JSON response body
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondError maps service failures onto HTTP statuses. A lost booking
// race gets its own message; it is not a generic failure.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSlotNoLongerAvailable):
		respondJSON(w, http.StatusConflict, map[string]string{
			"error": "someone else just took this slot, please pick another",
		})
	case errors.Is(err, services.ErrInvalidDuration):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, timegrid.ErrMalformedTimeInput):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrItemNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrCandidateFetchFailed):
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "could not load the next page, please retry",
		})
	case errors.Is(err, services.ErrConditionFailed):
		respondJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
