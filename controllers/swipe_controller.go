package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"talentlink_server/services"
)

// SwipeController struct
type SwipeController struct {
	Swipes *services.SwipeService
}

// NewSwipeController initializes the controller
func NewSwipeController(service *services.SwipeService) *SwipeController {
	return &SwipeController{Swipes: service}
}

// HandleSwipe - record one decision; repeats are idempotent successes
func (c *SwipeController) HandleSwipe(w http.ResponseWriter, r *http.Request) {
	var request struct {
		SwiperID  string `json:"swiperId"`
		TargetID  string `json:"targetId"`
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	log.Printf("💖 %s swiped %s on %s", request.SwiperID, request.Direction, request.TargetID)

	result, err := c.Swipes.RecordDecision(r.Context(), request.SwiperID, request.TargetID, request.Direction)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
