package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/battleship/internal/api/middleware"
	"github.com/mcoot/battleship/internal/api/request"
	"github.com/mcoot/battleship/internal/api/response"
	"github.com/mcoot/battleship/internal/model"
	"github.com/mcoot/battleship/internal/services/bot"
	"github.com/mcoot/battleship/internal/services/game"
	"github.com/mcoot/battleship/internal/services/lobby"
)

// MatchHandler handles match lifecycle and firing endpoints
type MatchHandler struct {
	lobbyController *lobby.Controller
	gameController  *game.Controller
	botService      *bot.Service
	logger          *slog.Logger
}

// NewMatchHandler creates a new match handler. botService may be nil,
// in which case bot invitations are unavailable.
func NewMatchHandler(
	lobbyController *lobby.Controller,
	gameController *game.Controller,
	botService *bot.Service,
	logger *slog.Logger,
) *MatchHandler {
	return &MatchHandler{
		lobbyController: lobbyController,
		gameController:  gameController,
		botService:      botService,
		logger:          logger,
	}
}

// Create handles POST /api/v1/matches
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	m, err := h.lobbyController.CreateMatch(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.MatchFromModel(m))
}

// ListOpen handles GET /api/v1/matches
func (h *MatchHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	limit, err := limitFromQuery(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	matches, err := h.lobbyController.ListOpenMatches(r.Context(), player.ID, limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchListFromModel(matches))
}

// Get handles GET /api/v1/matches/{id}
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	matchID, err := matchIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeView(w, r.Context(), http.StatusOK, matchID, player.ID)
}

// Join handles POST /api/v1/matches/{id}/join
func (h *MatchHandler) Join(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	matchID, err := matchIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.lobbyController.JoinMatch(r.Context(), matchID, player.ID); err != nil {
		WriteError(w, err)
		return
	}

	h.writeView(w, r.Context(), http.StatusOK, matchID, player.ID)
}

// Fire handles POST /api/v1/matches/{id}/fire
func (h *MatchHandler) Fire(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	matchID, err := matchIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.FireRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Row == nil || req.Col == nil {
		WriteError(w, NewInvalidRequestError("row and col are required"))
		return
	}

	outcome, err := h.gameController.Fire(r.Context(), matchID, player.ID, model.Position{Row: *req.Row, Col: *req.Col})
	if err != nil {
		WriteError(w, err)
		return
	}

	var actions []bot.BotAction
	if !outcome.MatchOver {
		actions = h.processBotActions(r.Context(), matchID)
	}

	response.JSON(w, http.StatusOK, response.FireResultFromOutcome(outcome, actions))
}

// Forfeit handles POST /api/v1/matches/{id}/forfeit
func (h *MatchHandler) Forfeit(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	matchID, err := matchIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	m, err := h.lobbyController.Forfeit(r.Context(), matchID, player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.MatchFromModel(m))
}

// InviteBot handles POST /api/v1/matches/{id}/bot
func (h *MatchHandler) InviteBot(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	matchID, err := matchIDFromPath(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	if h.botService == nil {
		WriteError(w, NewInvalidRequestError("bots are not enabled on this server"))
		return
	}

	var req request.InviteBotRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	if _, err := h.botService.InviteBot(r.Context(), matchID, player.ID, req.Strategy); err != nil {
		WriteError(w, err)
		return
	}
	h.processBotActions(r.Context(), matchID)

	h.writeView(w, r.Context(), http.StatusCreated, matchID, player.ID)
}

func (h *MatchHandler) writeView(w http.ResponseWriter, ctx context.Context, status int, matchID model.MatchID, playerID model.PlayerID) {
	v, err := h.gameController.View(ctx, matchID, playerID)
	if err != nil {
		WriteError(w, err)
		return
	}
	m, err := h.gameController.GetMatch(ctx, matchID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, status, response.MatchViewFromModel(m, v))
}

// processBotActions lets any CPU opponent take its turn. Failures are logged
// rather than returned since the caller's own action already succeeded.
func (h *MatchHandler) processBotActions(ctx context.Context, matchID model.MatchID) []bot.BotAction {
	if h.botService == nil {
		return nil
	}

	actions, err := h.botService.ProcessBotActions(ctx, matchID)
	if err != nil {
		h.logger.Error("bot turn failed",
			slog.String("match_id", matchID.String()),
			slog.String("error", err.Error()),
		)
	}
	return actions
}
