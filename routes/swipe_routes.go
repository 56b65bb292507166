package routes

import (
	"talentlink_server/controllers"
	"talentlink_server/services"

	"github.com/gorilla/mux"
)

// RegisterSwipeRoutes sets up routes for swipe decisions under /api/swipes
func RegisterSwipeRoutes(r *mux.Router, swipeService *services.SwipeService) {
	controller := controllers.NewSwipeController(swipeService)

	swipeRouter := r.PathPrefix("/api/swipes").Subrouter()
	swipeRouter.HandleFunc("", controller.HandleSwipe).Methods("POST")
}
