package handlers

import (
	"errors"
	"net/http"

	"github.com/porraza/porraza-server/models"
	"github.com/porraza/porraza-server/services"
)

type StadiumHandler struct {
	stadiumService services.StadiumService
}

func NewStadiumHandler(ss services.StadiumService) *StadiumHandler {
	return &StadiumHandler{stadiumService: ss}
}

func (h *StadiumHandler) List(w http.ResponseWriter, r *http.Request) {
	stadiums, err := h.stadiumService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"stadiums": stadiums,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StadiumHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	stadiumID, err := idFromURL(r, "stadiumID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stadium, err := h.stadiumService.GetByID(r.Context(), stadiumID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"stadium": stadium,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StadiumHandler) Create(w http.ResponseWriter, r *http.Request) {
	var stadium models.Stadium

	if err := readJSON(w, r, &stadium); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	created, err := h.stadiumService.Create(r.Context(), &stadium)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"stadium": created,
	}

	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StadiumHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	stadiumID, err := idFromURL(r, "stadiumID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	stadium, err := h.stadiumService.UploadPhoto(r.Context(), stadiumID, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"stadium": stadium,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
