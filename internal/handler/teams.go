package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/middleware"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
)

type TeamsHandler struct {
	teams   repository.TeamRepository
	sports  repository.SportRepository
	players repository.PlayerRepository
	users   repository.UserRepository
	access  *middleware.AccessMiddleware
}

func NewTeamsHandler(
	teams repository.TeamRepository,
	sports repository.SportRepository,
	players repository.PlayerRepository,
	users repository.UserRepository,
	access *middleware.AccessMiddleware,
) *TeamsHandler {
	return &TeamsHandler{teams: teams, sports: sports, players: players, users: users, access: access}
}

func (h *TeamsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	manage := h.access.RequireRole(model.RoleVereinsAdmin, model.RoleTrainer)

	r.Get("/", h.List)
	r.With(h.access.RequireRole(model.RoleVereinsAdmin)).Post("/", h.Create)
	r.Get("/{teamID}", h.Get)
	r.With(manage).Put("/{teamID}", h.Update)
	r.With(h.access.RequireRole(model.RoleVereinsAdmin)).Delete("/{teamID}", h.Delete)

	r.Get("/{teamID}/players", h.ListPlayers)
	r.With(manage).Post("/{teamID}/players", h.AddPlayer)
	r.With(manage).Put("/{teamID}/players/{playerID}", h.UpdatePlayer)
	r.With(manage).Delete("/{teamID}/players/{playerID}", h.RemovePlayer)

	r.Get("/{teamID}/trainers", h.ListTrainers)
	r.With(h.access.RequireRole(model.RoleVereinsAdmin)).Post("/{teamID}/trainers", h.AddTrainer)
	r.With(h.access.RequireRole(model.RoleVereinsAdmin)).Delete("/{teamID}/trainers/{userID}", h.RemoveTrainer)

	return r
}

func (h *TeamsHandler) List(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	teams, err := h.teams.ListByClub(r.Context(), clubID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if teams == nil {
		teams = []model.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}

func (h *TeamsHandler) Create(w http.ResponseWriter, r *http.Request) {
	clubID, _ := middleware.GetClubID(r.Context())

	var body struct {
		Name    string `json:"name"`
		SportID int64  `json:"sportId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Name == "" || body.SportID <= 0 {
		writeError(w, errors.ValidationError("Name und Sportart sind erforderlich."))
		return
	}

	ok, err := h.sports.BelongsToClub(r.Context(), body.SportID, clubID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if !ok {
		writeError(w, errors.NotFound("Sportart nicht gefunden."))
		return
	}

	team, err := h.teams.Create(r.Context(), body.SportID, body.Name)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusCreated, team)
}

func (h *TeamsHandler) resolve(r *http.Request) (*model.Team, error) {
	clubID, _ := middleware.GetClubID(r.Context())

	teamID, err := urlID(r, "teamID")
	if err != nil {
		return nil, err
	}

	ok, err := h.teams.BelongsToClub(r.Context(), teamID, clubID)
	if err != nil {
		return nil, errors.Database(err)
	}
	if !ok {
		return nil, errors.NotFound("Mannschaft nicht gefunden.")
	}

	team, err := h.teams.FindByID(r.Context(), teamID)
	if err != nil {
		return nil, errors.Database(err)
	}
	if team == nil {
		return nil, errors.NotFound("Mannschaft nicht gefunden.")
	}
	return team, nil
}

func (h *TeamsHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *TeamsHandler) Update(w http.ResponseWriter, r *http.Request) {
	team, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Name == "" {
		writeError(w, errors.ValidationError("Der Mannschaftsname ist erforderlich."))
		return
	}

	updated, err := h.teams.UpdateName(r.Context(), team.ID, body.Name)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TeamsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	team, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.teams.Delete(r.Context(), team.ID); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeOK(w, "Mannschaft gelöscht.")
}

func (h *TeamsHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	team, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	players, err := h.players.ListByTeam(r.Context(), team.ID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if players == nil {
		players = []model.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

func (h *TeamsHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	team, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		UserID       int64 `json:"userId"`
		JerseyNumber *int  `json:"jerseyNumber"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.UserID <= 0 {
		writeError(w, errors.ValidationError("Benutzer-ID ist erforderlich."))
		return
	}

	user, err := h.users.FindByID(r.Context(), body.UserID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if user == nil {
		writeError(w, errors.NotFound("Benutzer nicht gefunden."))
		return
	}

	player, err := h.players.Create(r.Context(), team.ID, body.UserID, body.JerseyNumber)
	if err != nil {
		writeError(w, errors.Conflict("Der Spieler ist bereits in dieser Mannschaft."))
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (h *TeamsHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	team, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	playerID, err := urlID(r, "playerID")
	if err != nil {
		writeError(w, err)
		return
	}

	player, err := h.players.FindByID(r.Context(), playerID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if player == nil || player.TeamID != team.ID {
		writeError(w, errors.NotFound("Spieler nicht gefunden."))
		return
	}

	var body struct {
		JerseyNumber *int `json:"jerseyNumber"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.players.UpdateJerseyNumber(r.Context(), playerID, body.JerseyNumber)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *TeamsHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	team, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	playerID, err := urlID(r, "playerID")
	if err != nil {
		writeError(w, err)
		return
	}

	player, err := h.players.FindByID(r.Context(), playerID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if player == nil || player.TeamID != team.ID {
		writeError(w, errors.NotFound("Spieler nicht gefunden."))
		return
	}

	if err := h.players.Delete(r.Context(), playerID); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeOK(w, "Spieler entfernt.")
}

func (h *TeamsHandler) ListTrainers(w http.ResponseWriter, r *http.Request) {
	team, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	trainers, err := h.teams.ListTrainers(r.Context(), team.ID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if trainers == nil {
		trainers = []model.TeamTrainer{}
	}
	writeJSON(w, http.StatusOK, trainers)
}

func (h *TeamsHandler) AddTrainer(w http.ResponseWriter, r *http.Request) {
	team, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		UserID int64 `json:"userId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.UserID <= 0 {
		writeError(w, errors.ValidationError("Benutzer-ID ist erforderlich."))
		return
	}

	user, err := h.users.FindByID(r.Context(), body.UserID)
	if err != nil {
		writeError(w, errors.Database(err))
		return
	}
	if user == nil {
		writeError(w, errors.NotFound("Benutzer nicht gefunden."))
		return
	}

	if err := h.teams.AddTrainer(r.Context(), team.ID, body.UserID); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeOK(w, "Trainer hinzugefügt.")
}

func (h *TeamsHandler) RemoveTrainer(w http.ResponseWriter, r *http.Request) {
	team, err := h.resolve(r)
	if err != nil {
		writeError(w, err)
		return
	}

	userID, err := urlID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.teams.RemoveTrainer(r.Context(), team.ID, userID); err != nil {
		writeError(w, errors.Database(err))
		return
	}
	writeOK(w, "Trainer entfernt.")
}
