package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"talentlink_server/services"

	"github.com/gorilla/mux"
)

// BookingController struct
type BookingController struct {
	Bookings *services.BookingService
	Slots    *services.SlotService
}

// NewBookingController initializes the controller
func NewBookingController(bookings *services.BookingService, slots *services.SlotService) *BookingController {
	return &BookingController{Bookings: bookings, Slots: slots}
}

// HandleListCandidates - enumerate bookable candidate slots for a day
func (c *BookingController) HandleListCandidates(w http.ResponseWriter, r *http.Request) {
	expertID := r.URL.Query().Get("expertId")
	date := r.URL.Query().Get("date")
	offeringID := r.URL.Query().Get("offeringId")
	if expertID == "" || date == "" || offeringID == "" {
		http.Error(w, `{"error": "expertId, date and offeringId are required"}`, http.StatusBadRequest)
		return
	}

	candidates, err := c.Slots.CandidatesForDate(r.Context(), expertID, date, offeringID)
	if err != nil {
		respondError(w, err)
		return
	}
	// An empty list is a valid answer, not an error.
	respondJSON(w, http.StatusOK, candidates)
}

// HandleBookSlot - claim a previously-offered candidate slot
func (c *BookingController) HandleBookSlot(w http.ResponseWriter, r *http.Request) {
	var request services.BookSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	log.Printf("📅 %s booking window %s on %s", request.BookerID, request.WindowID, request.Date)

	booking, err := c.Bookings.Book(r.Context(), request)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, booking)
}

// HandleGetBooking - fetch one booking
func (c *BookingController) HandleGetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := c.Bookings.Get(r.Context(), mux.Vars(r)["bookingId"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

// HandleAcceptBooking - expert accepts a pending booking
func (c *BookingController) HandleAcceptBooking(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ExpertID string `json:"expertId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	booking, err := c.Bookings.Accept(r.Context(), mux.Vars(r)["bookingId"], request.ExpertID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}

// HandleRejectBooking - expert rejects a pending booking, releasing its chunks
func (c *BookingController) HandleRejectBooking(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ExpertID string `json:"expertId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	booking, err := c.Bookings.Reject(r.Context(), mux.Vars(r)["bookingId"], request.ExpertID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, booking)
}
