package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/services"
)

// TournamentEngine is the part of services.Registry the HTTP layer uses.
type TournamentEngine interface {
	CreateTournament(ctx context.Context, in services.CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, tournamentID string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, status models.TournamentStatus) ([]services.TournamentSummary, error)
	OpenRegistration(ctx context.Context, tournamentID string) (*models.Tournament, error)
	CloseRegistration(ctx context.Context, tournamentID string) (*models.Tournament, error)
	StartTournament(ctx context.Context, tournamentID string) (*models.Tournament, error)
	CancelTournament(ctx context.Context, tournamentID string) (*models.Tournament, error)
	CompleteTournament(ctx context.Context, tournamentID string) ([]models.PrizeAward, error)

	RegisterPlayer(ctx context.Context, tournamentID string, in services.RegisterPlayerInput) (*services.RegistrationResult, error)
	UnregisterPlayer(ctx context.Context, tournamentID, participantID string) (*services.UnregisterResult, error)
	CheckIn(ctx context.Context, tournamentID, participantID string) (*models.Participant, error)

	GetBracket(ctx context.Context, tournamentID string) (*services.BracketView, error)
	GetStandings(ctx context.Context, tournamentID string) ([]models.StandingEntry, error)
	GetPlayerMatches(ctx context.Context, tournamentID, participantID string) ([]*models.Match, error)

	StartMatch(ctx context.Context, tournamentID string, matchID int) (*models.Match, error)
	ReportMatchResult(ctx context.Context, tournamentID string, matchID int, in services.MatchResultInput) (*models.Match, error)
	ReportBattleRoyaleResult(ctx context.Context, tournamentID string, matchID int, in services.BattleRoyaleResultInput) (*models.Match, error)
	ForfeitMatch(ctx context.Context, tournamentID string, matchID int, participantID string) (*models.Match, error)

	AuthorizeOrganizer(ctx context.Context, tournamentID, actorID string, isAdmin bool) error
}

type TournamentHandler struct {
	engine TournamentEngine
}

func NewTournamentHandler(engine TournamentEngine) *TournamentHandler {
	return &TournamentHandler{engine: engine}
}

type createTournamentRequest struct {
	services.CreateTournamentInput
	Settings json.RawMessage `json:"settings,omitempty"`
}

// CreateHandler godoc
// @Summary Создать турнир
// @Tags tournaments
// @Description Организатор создает турнир в статусе draft. Формат задается полем format, параметры формата - полем settings.
// @Accept json
// @Produce json
// @Param body body services.CreateTournamentInput true "Настройки турнира"
// @Success 201 {object} map[string]interface{} "Турнир создан"
// @Failure 400 {object} map[string]string "Ошибка валидации"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав"
// @Security BearerAuth
// @Router /tournaments [post]
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create tournament")
		return
	}

	var req createTournamentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if req.Format == "" {
		badRequestResponse(w, r, errors.New("format is required"))
		return
	}
	settings, err := models.DecodeSettings(req.Format, req.Settings)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	input := req.CreateTournamentInput
	input.Settings = settings
	input.OrganizerID = currentUserID

	tournament, err := h.engine.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.engine.GetTournament(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /tournaments?status=
func (h *TournamentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	status := models.TournamentStatus(r.URL.Query().Get("status"))
	switch status {
	case "", models.StatusDraft, models.StatusRegistration, models.StatusReady,
		models.StatusInProgress, models.StatusCompleted, models.StatusCancelled:
	default:
		badRequestResponse(w, r, errors.New("invalid status query parameter"))
		return
	}

	tournaments, err := h.engine.ListTournaments(r.Context(), status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// organizerAction runs op after checking the caller organizes the tournament.
func (h *TournamentHandler) organizerAction(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) (any, error)) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := authorizeOrganizer(r, h.engine, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	result, err := op(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) OpenRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	h.organizerAction(w, r, func(ctx context.Context, id string) (any, error) {
		t, err := h.engine.OpenRegistration(ctx, id)
		return jsonResponse{"tournament": t}, err
	})
}

func (h *TournamentHandler) CloseRegistrationHandler(w http.ResponseWriter, r *http.Request) {
	h.organizerAction(w, r, func(ctx context.Context, id string) (any, error) {
		t, err := h.engine.CloseRegistration(ctx, id)
		return jsonResponse{"tournament": t}, err
	})
}

func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	h.organizerAction(w, r, func(ctx context.Context, id string) (any, error) {
		t, err := h.engine.StartTournament(ctx, id)
		return jsonResponse{"tournament": t}, err
	})
}

func (h *TournamentHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	h.organizerAction(w, r, func(ctx context.Context, id string) (any, error) {
		t, err := h.engine.CancelTournament(ctx, id)
		return jsonResponse{"tournament": t}, err
	})
}

func (h *TournamentHandler) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	h.organizerAction(w, r, func(ctx context.Context, id string) (any, error) {
		awards, err := h.engine.CompleteTournament(ctx, id)
		return jsonResponse{"awards": awards}, err
	})
}

type registerPlayerRequest struct {
	ParticipantID string `json:"participant_id,omitempty"`
	DisplayName   string `json:"display_name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	Rating        int    `json:"rating"`
	FeePaid       bool   `json:"fee_paid"`
	AccessCode    string `json:"access_code,omitempty"`
}

// RegisterHandler godoc
// @Summary Зарегистрировать игрока
// @Tags participants
// @Description Игрок регистрирует себя; организатор может зарегистрировать любого. При заполненном турнире игрок попадает в лист ожидания (202).
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 201 {object} services.RegistrationResult "Игрок зарегистрирован"
// @Success 202 {object} services.RegistrationResult "Игрок в листе ожидания"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 402 {object} map[string]string "Взнос не оплачен"
// @Failure 403 {object} map[string]string "Неверный код доступа / нет прав"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Уже зарегистрирован / регистрация закрыта"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/participants [post]
func (h *TournamentHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to register")
		return
	}

	var req registerPlayerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	participantID := req.ParticipantID
	if participantID == "" {
		participantID = currentUserID
	}
	if participantID != currentUserID {
		if err := authorizeOrganizer(r, h.engine, id); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}

	result, err := h.engine.RegisterPlayer(r.Context(), id, services.RegisterPlayerInput{
		ParticipantID: participantID,
		DisplayName:   req.DisplayName,
		AvatarURL:     req.AvatarURL,
		Rating:        req.Rating,
		FeePaid:       req.FeePaid,
		AccessCode:    req.AccessCode,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusCreated
	if !result.Accepted {
		status = http.StatusAccepted
	}
	if err := writeJSON(w, status, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UnregisterHandler обрабатывает DELETE /tournaments/{tournamentID}/participants/{participantID}
func (h *TournamentHandler) UnregisterHandler(w http.ResponseWriter, r *http.Request) {
	h.participantAction(w, r, func(ctx context.Context, tournamentID, participantID string) (any, error) {
		return h.engine.UnregisterPlayer(ctx, tournamentID, participantID)
	})
}

// CheckInHandler обрабатывает POST /tournaments/{tournamentID}/participants/{participantID}/check-in
func (h *TournamentHandler) CheckInHandler(w http.ResponseWriter, r *http.Request) {
	h.participantAction(w, r, func(ctx context.Context, tournamentID, participantID string) (any, error) {
		p, err := h.engine.CheckIn(ctx, tournamentID, participantID)
		return jsonResponse{"participant": p}, err
	})
}

// participantAction allows the participant themselves or the organizer.
func (h *TournamentHandler) participantAction(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, tournamentID, participantID string) (any, error)) {
	tournamentID, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	participantID, err := getStringParam(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}
	if currentUserID != participantID {
		if err := authorizeOrganizer(r, h.engine, tournamentID); err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}

	result, err := op(r.Context(), tournamentID, participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// BracketHandler обрабатывает GET /tournaments/{tournamentID}/bracket
func (h *TournamentHandler) BracketHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.engine.GetBracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StandingsHandler обрабатывает GET /tournaments/{tournamentID}/standings
func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.engine.GetStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PlayerMatchesHandler обрабатывает GET /tournaments/{tournamentID}/participants/{participantID}/matches
func (h *TournamentHandler) PlayerMatchesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getStringParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	participantID, err := getStringParam(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.engine.GetPlayerMatches(r.Context(), tournamentID, participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func authorizeOrganizer(r *http.Request, engine TournamentEngine, tournamentID string) error {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return errors.Join(services.ErrUnauthorized, err)
	}
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		return errors.Join(services.ErrUnauthorized, err)
	}
	return engine.AuthorizeOrganizer(r.Context(), tournamentID, userID, role == middleware.RoleAdmin)
}
