package routes

import (
	"talentlink_server/controllers"
	"talentlink_server/services"

	"github.com/gorilla/mux"
)

// RegisterOfferingRoutes sets up routes for service offerings under /api/offerings
func RegisterOfferingRoutes(r *mux.Router, offeringService *services.OfferingService) {
	controller := controllers.NewOfferingController(offeringService)

	offeringRouter := r.PathPrefix("/api/offerings").Subrouter()
	offeringRouter.HandleFunc("", controller.HandleCreateOffering).Methods("POST")
	offeringRouter.HandleFunc("/{offeringId}", controller.HandleGetOffering).Methods("GET")
}
