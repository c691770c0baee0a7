package handlers

import (
	"net/http"

	"github.com/porraza/porraza-server/middleware"
	"github.com/porraza/porraza-server/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// GetView returns the knockout bracket with the caller's predictions
// folded in: rounds, seeds, slots and the match-number index.
func (h *BracketHandler) GetView(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	view, err := h.bracketService.GetBracketView(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"bracket": view,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
