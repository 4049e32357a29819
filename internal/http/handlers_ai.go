package http

import (
	"net/http"
)

// handleSuggestChallenges asks the advisor for saving challenges and stores
// the accepted proposals. This is the one AI flow where failures surface to
// the client instead of degrading silently.
func (s *Server) handleSuggestChallenges(w http.ResponseWriter, r *http.Request) {
	created, err := s.store.SuggestChallenges(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGenerateLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := s.store.GenerateLessons(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (s *Server) handleAdvisoryTip(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"tip": s.store.AdvisoryTip(r.Context())})
}
