package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/porraza/porraza-server/middleware"
	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
}

func NewPredictionHandler(ps services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: ps}
}

// ListByPhase returns the caller's predictions for every match of the
// phase, seeding blank rows for matches that have none yet.
func (h *PredictionHandler) ListByPhase(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	phase, err := phaseFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	preds, err := h.predictionService.ListForPhase(r.Context(), userID, phase)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"phase":       phase,
		"predictions": preds,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Save persists a batch of predictions for one phase. The whole batch
// is validated before anything is written; one bad entry rejects all.
func (h *PredictionHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	phase, err := phaseFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Predictions []services.PredictionEntry `json:"predictions"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	saved, err := h.predictionService.SavePredictions(r.Context(), userID, phase, input.Predictions)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"phase":       phase,
		"predictions": saved,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func phaseFromURL(r *http.Request) (models.MatchPhase, error) {
	phaseStr := chi.URLParam(r, "phase")
	if phaseStr == "" {
		return "", errors.New("missing phase in URL path")
	}
	phase := models.MatchPhase(phaseStr)
	if !phase.Valid() {
		return "", errors.New("unknown phase: " + phaseStr)
	}
	return phase, nil
}
