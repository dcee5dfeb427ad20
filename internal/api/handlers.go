package api

import (
	"encoding/json"
	"net/http"

	"github.com/nhle/job-tracker/internal/cache"
	"github.com/nhle/job-tracker/internal/model"
)

// pollRequest is the batch ingestion payload.
type pollRequest struct {
	Events     []model.JobEvent `json:"events"`
	WebhookURL string           `json:"webhook_url"`
}

type pollResponse struct {
	Added int `json:"added"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListEmails serves the deduplicated cache view for the caller.
// With ?refresh=true a stale cache is rebuilt from storage first; a
// failed rebuild still serves whatever the cache holds.
func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request) {
	userID, isTest := userFrom(r.Context())

	if r.URL.Query().Get("refresh") == "true" && s.refresher != nil {
		if err := s.refresher.RefreshIfNeeded(r.Context(), userID, isTest); err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("refresh before read failed")
		}
	}

	entries := s.cache.Snapshot(userID)
	if entries == nil {
		entries = []cache.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handlePoll ingests a batch of classified events for the caller and
// reports how many resolved as new applications or status updates.
func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	userID, isTest := userFrom(r.Context())

	var req pollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	added := s.batcher.AddMany(r.Context(), req.Events, userID, req.WebhookURL, isTest)
	writeJSON(w, http.StatusOK, pollResponse{Added: added})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
