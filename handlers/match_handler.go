package handlers

import (
	"context"
	"net/http"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/services"
)

// matchAction resolves the tournament and match from the URL, checks the
// caller organizes the tournament and writes the resulting match.
func (h *TournamentHandler) matchAction(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, tournamentID string, matchID int) (*models.Match, error)) {
	tournamentID, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getMatchIDFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := authorizeOrganizer(r, h.engine, tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	match, err := op(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartMatchHandler обрабатывает POST /tournaments/{tournamentID}/matches/{matchID}/start
func (h *TournamentHandler) StartMatchHandler(w http.ResponseWriter, r *http.Request) {
	h.matchAction(w, r, h.engine.StartMatch)
}

// ReportResultHandler обрабатывает POST /tournaments/{tournamentID}/matches/{matchID}/result
func (h *TournamentHandler) ReportResultHandler(w http.ResponseWriter, r *http.Request) {
	var input services.MatchResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.matchAction(w, r, func(ctx context.Context, tournamentID string, matchID int) (*models.Match, error) {
		return h.engine.ReportMatchResult(ctx, tournamentID, matchID, input)
	})
}

// ReportBattleRoyaleResultHandler обрабатывает POST /tournaments/{tournamentID}/matches/{matchID}/battle-royale-result
func (h *TournamentHandler) ReportBattleRoyaleResultHandler(w http.ResponseWriter, r *http.Request) {
	var input services.BattleRoyaleResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.matchAction(w, r, func(ctx context.Context, tournamentID string, matchID int) (*models.Match, error) {
		return h.engine.ReportBattleRoyaleResult(ctx, tournamentID, matchID, input)
	})
}

type forfeitRequest struct {
	ParticipantID string `json:"participant_id"`
}

// ForfeitHandler обрабатывает POST /tournaments/{tournamentID}/matches/{matchID}/forfeit
func (h *TournamentHandler) ForfeitHandler(w http.ResponseWriter, r *http.Request) {
	var req forfeitRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	h.matchAction(w, r, func(ctx context.Context, tournamentID string, matchID int) (*models.Match, error) {
		return h.engine.ForfeitMatch(ctx, tournamentID, matchID, req.ParticipantID)
	})
}
