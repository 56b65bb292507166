package routes

import (
	"talentlink_server/controllers"
	"talentlink_server/services"

	"github.com/gorilla/mux"
)

// RegisterAvailabilityRoutes sets up routes for availability windows under /api/availability
func RegisterAvailabilityRoutes(r *mux.Router, availabilityService *services.AvailabilityService) {
	controller := controllers.NewAvailabilityController(availabilityService)

	availabilityRouter := r.PathPrefix("/api/availability").Subrouter()
	availabilityRouter.HandleFunc("", controller.HandleCreateWindow).Methods("POST")
	availabilityRouter.HandleFunc("", controller.HandleListWindows).Methods("GET")
}
