package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/handlers"
	"github.com/Dosada05/tournament-engine/middleware"
	"github.com/Dosada05/tournament-engine/routes"
	"github.com/Dosada05/tournament-engine/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("handler-test-secret")

type testServer struct {
	router *chi.Mux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := services.NewRegistry(nil, logger)
	hub := events.NewHub(logger)

	router := chi.NewRouter()
	routes.SetupRoutes(router, testSecret, []string{"*"},
		handlers.NewTournamentHandler(registry),
		handlers.NewWebSocketHandler(hub, registry, []string{"*"}, logger),
	)
	return &testServer{router: router}
}

func token(t *testing.T, userID string, role middleware.Role) string {
	t.Helper()
	tok, err := middleware.NewToken(testSecret, userID, role, nil)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) createTournament(t *testing.T, organizer string, body map[string]any) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/tournaments", token(t, organizer, middleware.RoleOrganizer), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tour := decode(t, rec)["tournament"].(map[string]any)
	return tour["id"].(string)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateTournamentHandler(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{
		"name":        "Weekend Open",
		"format":      "battle_royale",
		"settings":    map[string]any{"players_per_match": 6},
		"max_players": 32,
	}

	rec := s.do(t, http.MethodPost, "/tournaments", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/tournaments", token(t, "player-1", middleware.RolePlayer), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/tournaments", token(t, "org-1", middleware.RoleOrganizer), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tour := decode(t, rec)["tournament"].(map[string]any)
	assert.Equal(t, "weekend-open", tour["slug"])
	assert.Equal(t, "org-1", tour["organizer_id"])
	assert.Equal(t, "draft", tour["status"])

	bad := map[string]any{"name": "x", "format": "darts", "max_players": 8}
	rec = s.do(t, http.MethodPost, "/tournaments", token(t, "org-1", middleware.RoleOrganizer), bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	invalid := map[string]any{"name": "x", "format": "swiss", "min_players": 5, "max_players": 2}
	rec = s.do(t, http.MethodPost, "/tournaments", token(t, "org-1", middleware.RoleOrganizer), invalid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unknown := map[string]any{"name": "x", "format": "swiss", "max_players": 8, "prize": 1}
	rec = s.do(t, http.MethodPost, "/tournaments", token(t, "org-1", middleware.RoleOrganizer), unknown)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegistrationHandlers(t *testing.T) {
	s := newTestServer(t)
	id := s.createTournament(t, "org-1", map[string]any{
		"name":        "Tiny Cup",
		"format":      "single_elimination",
		"max_players": 2,
	})
	base := "/tournaments/" + id

	rec := s.do(t, http.MethodPost, base+"/registration/open", token(t, "org-2", middleware.RoleOrganizer), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "only the owner may open registration")

	rec = s.do(t, http.MethodPost, base+"/registration/open", token(t, "org-1", middleware.RoleOrganizer), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	player := func(id string) string { return token(t, id, middleware.RolePlayer) }

	rec = s.do(t, http.MethodPost, base+"/participants", player("alice"), map[string]any{"display_name": "Alice", "rating": 1800})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["accepted"])

	rec = s.do(t, http.MethodPost, base+"/participants", player("alice"), map[string]any{"display_name": "Alice"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/participants", player("bob"), map[string]any{"participant_id": "carol"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "players cannot register someone else")

	rec = s.do(t, http.MethodPost, base+"/participants", player("bob"), map[string]any{"display_name": "Bob"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/participants", token(t, "org-1", middleware.RoleOrganizer), map[string]any{"participant_id": "carol"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decode(t, rec)["waitlist_position"])

	rec = s.do(t, http.MethodPost, base+"/participants/alice/check-in", player("bob"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/participants/alice/check-in", player("alice"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["participant"].(map[string]any)["checked_in"])

	rec = s.do(t, http.MethodPost, base+"/start", token(t, "org-1", middleware.RoleOrganizer), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "only one player checked in")

	rec = s.do(t, http.MethodDelete, base+"/participants/bob", player("bob"), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "carol", decode(t, rec)["promoted"].(map[string]any)["id"])

	rec = s.do(t, http.MethodPost, base+"/participants/carol/check-in", player("carol"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/start", token(t, "org-1", middleware.RoleOrganizer), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, base+"/participants/alice/matches", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	matches := decode(t, rec)["matches"].([]any)
	require.Len(t, matches, 1)

	rec = s.do(t, http.MethodPost, base+"/matches/1/result", token(t, "org-1", middleware.RoleOrganizer), map[string]any{"winner_id": "alice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", decode(t, rec)["match"].(map[string]any)["winner_id"])

	rec = s.do(t, http.MethodGet, base+"/standings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	standings := decode(t, rec)["standings"].([]any)
	require.Len(t, standings, 2)
	assert.Equal(t, "alice", standings[0].(map[string]any)["participant_id"])

	rec = s.do(t, http.MethodGet, base, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decode(t, rec)["tournament"].(map[string]any)["status"])
}

func TestMatchHandlersValidation(t *testing.T) {
	s := newTestServer(t)
	id := s.createTournament(t, "org-1", map[string]any{"name": "Cup", "format": "swiss", "max_players": 8})
	org := token(t, "org-1", middleware.RoleOrganizer)

	rec := s.do(t, http.MethodPost, "/tournaments/"+id+"/matches/abc/start", org, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/tournaments/"+id+"/matches/1/start", org, nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "tournament has not started")

	rec = s.do(t, http.MethodPost, "/tournaments/"+id+"/matches/1/forfeit", token(t, "admin", middleware.RoleAdmin), map[string]any{"participant_id": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code, "admins pass the organizer check")
}

func TestQueryHandlers(t *testing.T) {
	s := newTestServer(t)
	s.createTournament(t, "org-1", map[string]any{"name": "A", "format": "round_robin", "max_players": 4})
	id := s.createTournament(t, "org-1", map[string]any{"name": "B", "format": "swiss", "max_players": 4})
	rec := s.do(t, http.MethodPost, "/tournaments/"+id+"/registration/open", token(t, "org-1", middleware.RoleOrganizer), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/tournaments", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["tournaments"].([]any), 2)

	rec = s.do(t, http.MethodGet, "/tournaments?status=registration", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["tournaments"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].(map[string]any)["id"])

	rec = s.do(t, http.MethodGet, "/tournaments?status=paused", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/tournaments/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/tournaments/nope/bracket", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/tournaments/"+id+"/bracket", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "registration", decode(t, rec)["bracket"].(map[string]any)["status"])

	rec = s.do(t, http.MethodGet, "/ws/tournaments/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
