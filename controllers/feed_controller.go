package controllers

import (
	"encoding/json"
	"net/http"

	"talentlink_server/models"
	"talentlink_server/services"
)

// FeedController struct
type FeedController struct {
	Feed *services.FeedService
}

// NewFeedController initializes the controller
func NewFeedController(service *services.FeedService) *FeedController {
	return &FeedController{Feed: service}
}

// HandleJobFeed - next page of undecided jobs for a candidate
func (c *FeedController) HandleJobFeed(w http.ResponseWriter, r *http.Request) {
	candidateID := r.URL.Query().Get("candidateId")
	if candidateID == "" {
		http.Error(w, `{"error": "candidateId is required"}`, http.StatusBadRequest)
		return
	}

	page, err := c.Feed.JobsForCandidate(r.Context(), candidateID, r.URL.Query().Get("pageToken"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// HandleCandidateFeed - next page of undecided candidates for a company
func (c *FeedController) HandleCandidateFeed(w http.ResponseWriter, r *http.Request) {
	companyID := r.URL.Query().Get("companyId")
	if companyID == "" {
		http.Error(w, `{"error": "companyId is required"}`, http.StatusBadRequest)
		return
	}

	page, err := c.Feed.CandidatesForCompany(r.Context(), companyID, r.URL.Query().Get("pageToken"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// HandleCreateJobPosting - publish a job into the swipe feed
func (c *FeedController) HandleCreateJobPosting(w http.ResponseWriter, r *http.Request) {
	var request models.JobPosting
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	job, err := c.Feed.CreateJobPosting(r.Context(), request)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, job)
}

// HandleCreateCandidateProfile - publish a candidate into the swipe feed
func (c *FeedController) HandleCreateCandidateProfile(w http.ResponseWriter, r *http.Request) {
	var request models.CandidateProfile
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	candidate, err := c.Feed.CreateCandidateProfile(r.Context(), request)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, candidate)
}
