package handlers

import (
	"net/http"
	"strconv"

	"github.com/porraza/porraza-server/services"
)

type LeaderboardHandler struct {
	scoringService services.ScoringService
}

func NewLeaderboardHandler(ss services.ScoringService) *LeaderboardHandler {
	return &LeaderboardHandler{scoringService: ss}
}

// Global returns the overall standings, ranked by points. ?limit= caps
// the number of rows.
func (h *LeaderboardHandler) Global(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	standings, err := h.scoringService.Leaderboard(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"standings": standings,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
