package routes

import (
	"talentlink_server/controllers"
	"talentlink_server/services"

	"github.com/gorilla/mux"
)

// RegisterFeedRoutes sets up routes for the swipe feeds under /api/feed
func RegisterFeedRoutes(r *mux.Router, feedService *services.FeedService) {
	controller := controllers.NewFeedController(feedService)

	feedRouter := r.PathPrefix("/api/feed").Subrouter()
	feedRouter.HandleFunc("/jobs", controller.HandleJobFeed).Methods("GET")
	feedRouter.HandleFunc("/jobs", controller.HandleCreateJobPosting).Methods("POST")
	feedRouter.HandleFunc("/candidates", controller.HandleCandidateFeed).Methods("GET")
	feedRouter.HandleFunc("/candidates", controller.HandleCreateCandidateProfile).Methods("POST")
}
