package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sozercan/review-sentiment/internal/app"
)

type predictRequest struct {
	Text     string `json:"text"`
	GameName string `json:"gameName"`
}

type searchRequest struct {
	GameName string `json:"gameName"`
}

type viewRequest struct {
	View app.View `json:"view"`
}

type acceptedResponse struct {
	Accepted bool `json:"accepted"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"apiStatus": string(s.client.APIStatus()),
	})
}

// handleState returns the page view model. The optional reviewText and
// searchGame query parameters carry the renderer's current input values so
// button enablement can be derived.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := s.views.Page(s.client.Snapshot(), q.Get("reviewText"), q.Get("searchGame"))
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleSelectView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}
	if !req.View.Valid() {
		http.Error(w, fmt.Sprintf("Unknown view %q", req.View), http.StatusBadRequest)
		return
	}

	s.client.SelectView(req.View)
	writeJSON(w, http.StatusOK, map[string]app.View{"view": s.client.View()})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	accepted := s.client.Predictions().Submit(r.Context(), req.Text, req.GameName)
	slog.Debug("Prediction submission handled", "accepted", accepted)
	writeAccepted(w, accepted)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	accepted := s.client.Analytics().Search(r.Context(), req.GameName)
	slog.Debug("Analytics search handled", "game", req.GameName, "accepted", accepted)
	writeAccepted(w, accepted)
}

func writeAccepted(w http.ResponseWriter, accepted bool) {
	status := http.StatusOK
	if accepted {
		status = http.StatusAccepted
	}
	writeJSON(w, status, acceptedResponse{Accepted: accepted})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
