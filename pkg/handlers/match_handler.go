package handlers

import (
	"encoding/json"
	"fmt"

	"github.com/backsoul/mathtug/pkg/models"
	"github.com/backsoul/mathtug/pkg/services"
	"github.com/valyala/fasthttp"
)

// MatchHandler maneja las peticiones HTTP para el historial de partidas
type MatchHandler struct {
	matchService *services.MatchService
}

// NewMatchHandler crea una nueva instancia del handler
func NewMatchHandler(matchService *services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: matchService,
	}
}

// GetMatches maneja GET /api/matches
func (h *MatchHandler) GetMatches(ctx *fasthttp.RequestCtx) {
	matches, err := h.matchService.GetRecentMatches()
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo partidas: %v", err))
		return
	}

	responseData := models.MatchResponse{
		Matches: matches,
		Count:   len(matches),
	}

	h.respondWithSuccess(ctx, responseData, "Partidas obtenidas exitosamente")
}

// GetMatch maneja GET /api/matches/{id}
func (h *MatchHandler) GetMatch(ctx *fasthttp.RequestCtx) {
	matchID := ctx.UserValue("id").(string)

	match, err := h.matchService.GetMatch(matchID)
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusNotFound, fmt.Sprintf("Partida no encontrada: %v", err))
		return
	}

	responseData := models.MatchResponse{
		Match: match,
	}

	h.respondWithSuccess(ctx, responseData, "Partida obtenida exitosamente")
}

// GetLeaderboard maneja GET /api/leaderboard
func (h *MatchHandler) GetLeaderboard(ctx *fasthttp.RequestCtx) {
	leaderboard, err := h.matchService.GetLeaderboard()
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo tabla de posiciones: %v", err))
		return
	}

	h.respondWithSuccess(ctx, leaderboard, "Tabla de posiciones obtenida exitosamente")
}

// GetPlayerNames maneja GET /api/players
func (h *MatchHandler) GetPlayerNames(ctx *fasthttp.RequestCtx) {
	playerNames, err := h.matchService.GetPlayerNames()
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusInternalServerError, fmt.Sprintf("Error obteniendo jugadores: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"players": playerNames,
		"count":   len(playerNames),
	}, fmt.Sprintf("%d jugadores registrados", len(playerNames)))
}

// HealthCheck maneja GET /api/health
func (h *MatchHandler) HealthCheck(ctx *fasthttp.RequestCtx) {
	err := h.matchService.HealthCheck()
	if err != nil {
		h.respondWithError(ctx, fasthttp.StatusServiceUnavailable, fmt.Sprintf("Servicio no disponible: %v", err))
		return
	}

	h.respondWithSuccess(ctx, map[string]interface{}{
		"status": "healthy",
		"redis":  "connected",
	}, "Servicio funcionando correctamente")
}

// respondWithJSON envía una respuesta JSON
func (h *MatchHandler) respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(statusCode)

	jsonData, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"success": false, "error": "Error al serializar respuesta"}`)
		return
	}

	ctx.SetBody(jsonData)
}

// respondWithError envía una respuesta de error
func (h *MatchHandler) respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	response := models.APIResponse{
		Success: false,
		Error:   message,
	}
	h.respondWithJSON(ctx, statusCode, response)
}

// respondWithSuccess envía una respuesta exitosa
func (h *MatchHandler) respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	response := models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	h.respondWithJSON(ctx, fasthttp.StatusOK, response)
}
