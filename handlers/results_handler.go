package handlers

import (
	"net/http"

	"github.com/Dosada05/footmatch/middleware"
	"github.com/Dosada05/footmatch/models"
	"github.com/Dosada05/footmatch/services"
)

type ResultsHandler struct {
	results services.ResultsService
}

func NewResultsHandler(results services.ResultsService) *ResultsHandler {
	return &ResultsHandler{results: results}
}

// SubmitResults принимает итоги матча от оператора.
func (h *ResultsHandler) SubmitResults(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input models.SubmitResultsPayload
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.results.SubmitResults(r.Context(), profileID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"ok": true, "result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ResultsHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	seed, err := h.results.GetDraftSeed(r.Context(), profileID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": seed.Match, "registrations": seed.Registrations}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.results.GetResults(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DownloadReport редиректит на выгруженный отчёт.
func (h *ResultsHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	url, err := h.results.GetReportURL(r.Context(), profileID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}
