package routes

import (
	"talentlink_server/controllers"
	"talentlink_server/services"

	"github.com/gorilla/mux"
)

// RegisterBookingRoutes sets up routes for slots and bookings under /api/bookings
func RegisterBookingRoutes(r *mux.Router, bookingService *services.BookingService, slotService *services.SlotService) {
	controller := controllers.NewBookingController(bookingService, slotService)

	bookingRouter := r.PathPrefix("/api/bookings").Subrouter()
	bookingRouter.HandleFunc("/candidates", controller.HandleListCandidates).Methods("GET")
	bookingRouter.HandleFunc("", controller.HandleBookSlot).Methods("POST")
	bookingRouter.HandleFunc("/{bookingId}", controller.HandleGetBooking).Methods("GET")
	bookingRouter.HandleFunc("/{bookingId}/accept", controller.HandleAcceptBooking).Methods("POST")
	bookingRouter.HandleFunc("/{bookingId}/reject", controller.HandleRejectBooking).Methods("POST")
}
