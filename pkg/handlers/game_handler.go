package handlers

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/backsoul/mathtug/pkg/game"
	"github.com/backsoul/mathtug/pkg/models"
	"github.com/backsoul/mathtug/pkg/services"
	websocketHub "github.com/backsoul/mathtug/pkg/websocket"
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
)

// GameHandler maneja las peticiones HTTP de control de la ronda y el puente
// entre los eventos del motor y el hub de WebSocket
type GameHandler struct {
	controller   *game.Controller
	matchService *services.MatchService
	hub          *websocketHub.Hub

	mu          sync.Mutex
	player1Name string
	player2Name string
}

func NewGameHandler(controller *game.Controller, matchService *services.MatchService, hub *websocketHub.Hub) *GameHandler {
	return &GameHandler{
		controller:   controller,
		matchService: matchService,
		hub:          hub,
		player1Name:  "Jugador 1",
		player2Name:  "Jugador 2",
	}
}

var upgrader = websocket.FastHTTPUpgrader{
	CheckOrigin: func(ctx *fasthttp.RequestCtx) bool {
		return true // Permitir conexiones desde cualquier origen en desarrollo
	},
}

// Events construye los callbacks del motor que retransmiten cada transición
// de estado a los clientes conectados
func (gh *GameHandler) Events() game.Events {
	return game.Events{
		OnQuestionChanged: func(question game.Question) {
			gh.hub.BroadcastEvent("questionChanged", question)
		},
		OnFeedback: func(isCorrect bool, expected float64, raw string) {
			sound := "wrong"
			if isCorrect {
				sound = "correct"
			}
			gh.hub.BroadcastEvent("feedback", map[string]interface{}{
				"isCorrect":      isCorrect,
				"expectedAnswer": expected,
				"userAnswer":     raw,
				"sound":          sound,
			})
		},
		OnScoreChanged: func(scores game.Scores) {
			gh.hub.BroadcastEvent("scoreChanged", scores)
		},
		OnRopePositionChanged: func(position int) {
			gh.hub.BroadcastEvent("ropePositionChanged", map[string]interface{}{
				"position": position,
			})
		},
		OnTimerTick: func(remaining int) {
			gh.hub.BroadcastEvent("timerTick", map[string]interface{}{
				"secondsRemaining": remaining,
			})
		},
		OnCurrentPlayerChanged: func(player int) {
			gh.hub.BroadcastEvent("currentPlayerChanged", map[string]interface{}{
				"player": player,
			})
		},
		OnWin: func(winner int, scores game.Scores) {
			gh.hub.BroadcastEvent("win", map[string]interface{}{
				"winner":     winner,
				"winnerName": gh.playerName(winner),
				"scores":     scores,
				"sound":      "win",
			})
			// el callback corre con el candado del motor tomado: la partida
			// se persiste aparte, con un snapshot ya estable (status ended)
			go gh.recordMatch(winner)
		},
	}
}

func (gh *GameHandler) playerName(player int) string {
	gh.mu.Lock()
	defer gh.mu.Unlock()
	if player == 2 {
		return gh.player2Name
	}
	return gh.player1Name
}

func (gh *GameHandler) recordMatch(winner int) {
	snapshot := gh.controller.Snapshot()

	gh.mu.Lock()
	player1 := gh.player1Name
	player2 := gh.player2Name
	gh.mu.Unlock()

	winnerName := player1
	if winner == 2 {
		winnerName = player2
	}

	match := models.MatchRecord{
		Player1Name:    player1,
		Player2Name:    player2,
		Winner:         winner,
		WinnerName:     winnerName,
		ScorePlayer1:   snapshot.Scores.Player1,
		ScorePlayer2:   snapshot.Scores.Player2,
		RopePosition:   snapshot.RopePosition,
		TotalQuestions: snapshot.Stats.TotalQuestions,
		CorrectAnswers: snapshot.Stats.CorrectAnswers,
		WrongAnswers:   snapshot.Stats.WrongAnswers,
		Timeouts:       snapshot.Stats.Timeouts,
		Difficulty:     snapshot.Settings.Difficulty.String(),
		Operation:      snapshot.Settings.Operation.String(),
	}

	if _, err := gh.matchService.RecordMatch(match); err != nil {
		log.Printf("⚠️ Error guardando partida: %v", err)
	}
}

// StartGame maneja POST /api/game/start
func (gh *GameHandler) StartGame(ctx *fasthttp.RequestCtx) {
	var request models.StartGameRequest
	if body := ctx.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &request); err != nil {
			gh.respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
			return
		}
	}

	gh.mu.Lock()
	if request.Player1 != "" {
		gh.player1Name = request.Player1
	}
	if request.Player2 != "" {
		gh.player2Name = request.Player2
	}
	gh.mu.Unlock()

	if !gh.controller.StartGame() {
		gh.respondWithError(ctx, fasthttp.StatusBadRequest, "Ya hay una ronda en curso")
		return
	}

	log.Printf("🟢 Ronda iniciada: %s vs %s", gh.playerName(1), gh.playerName(2))
	gh.respondWithSuccess(ctx, gh.controller.Snapshot(), "Ronda iniciada exitosamente")
}

// SubmitAnswer maneja POST /api/game/answer
func (gh *GameHandler) SubmitAnswer(ctx *fasthttp.RequestCtx) {
	var request models.AnswerRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		gh.respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}

	if !gh.controller.SubmitAnswer(request.Answer) {
		gh.respondWithError(ctx, fasthttp.StatusBadRequest, "No hay pregunta activa para responder")
		return
	}

	gh.respondWithSuccess(ctx, gh.controller.Snapshot(), "Respuesta procesada")
}

// PauseGame maneja POST /api/game/pause
func (gh *GameHandler) PauseGame(ctx *fasthttp.RequestCtx) {
	if !gh.controller.Pause() {
		gh.respondWithError(ctx, fasthttp.StatusBadRequest, "No hay ronda en curso para pausar")
		return
	}

	gh.hub.BroadcastEvent("gamePaused", gh.controller.Snapshot())
	log.Println("⏸️ Ronda pausada")
	gh.respondWithSuccess(ctx, gh.controller.Snapshot(), "Ronda pausada")
}

// ResumeGame maneja POST /api/game/resume
func (gh *GameHandler) ResumeGame(ctx *fasthttp.RequestCtx) {
	if !gh.controller.Resume() {
		gh.respondWithError(ctx, fasthttp.StatusBadRequest, "No hay ronda pausada para reanudar")
		return
	}

	gh.hub.BroadcastEvent("gameResumed", gh.controller.Snapshot())
	log.Println("▶️ Ronda reanudada")
	gh.respondWithSuccess(ctx, gh.controller.Snapshot(), "Ronda reanudada")
}

// ResetGame maneja POST /api/game/reset
func (gh *GameHandler) ResetGame(ctx *fasthttp.RequestCtx) {
	gh.controller.ResetGame()

	gh.hub.BroadcastEvent("gameReset", gh.controller.Snapshot())
	log.Println("🔄 Ronda reiniciada")
	gh.respondWithSuccess(ctx, gh.controller.Snapshot(), "Ronda reiniciada")
}

// GetGameState maneja GET /api/game/state
func (gh *GameHandler) GetGameState(ctx *fasthttp.RequestCtx) {
	gh.respondWithSuccess(ctx, gh.controller.Snapshot(), "Estado del juego obtenido exitosamente")
}

// UpdateSettings maneja POST /api/game/settings
func (gh *GameHandler) UpdateSettings(ctx *fasthttp.RequestCtx) {
	var request models.SettingsRequest
	if err := json.Unmarshal(ctx.PostBody(), &request); err != nil {
		gh.respondWithError(ctx, fasthttp.StatusBadRequest, "JSON inválido")
		return
	}

	patch := game.SettingsPatch{
		TimerEnabled:         request.TimerEnabled,
		TimerSeconds:         request.TimerValue,
		SoundEnabled:         request.SoundEnabled,
		QuestionLimitEnabled: request.QuestionLimitEnabled,
		QuestionLimit:        request.QuestionLimit,
	}
	// los nombres desconocidos se descartan en silencio, igual que los
	// valores fuera de rango
	if request.Difficulty != nil {
		if difficulty, err := game.ParseDifficulty(*request.Difficulty); err == nil {
			patch.Difficulty = &difficulty
		}
	}
	if request.Operation != nil {
		if operation, err := game.ParseOperation(*request.Operation); err == nil {
			patch.Operation = &operation
		}
	}

	settings, ok := gh.controller.UpdateSettings(patch)
	if !ok {
		gh.respondWithError(ctx, fasthttp.StatusBadRequest, "La configuración solo puede cambiarse con la ronda detenida")
		return
	}

	gh.hub.BroadcastEvent("settingsChanged", settings)
	gh.respondWithSuccess(ctx, settings, "Configuración actualizada exitosamente")
}

// HandleWebSocket maneja las conexiones WebSocket
func (gh *GameHandler) HandleWebSocket(ctx *fasthttp.RequestCtx) {
	err := upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		defer ws.Close()

		gh.hub.Register(ws)
		defer gh.hub.Unregister(ws)

		// Enviar el estado actual del juego al conectarse
		message := websocketHub.Message{
			Type: "state",
			Data: gh.controller.Snapshot(),
		}
		data, _ := json.Marshal(message)
		ws.WriteMessage(websocket.TextMessage, data)

		// Escuchar mensajes del cliente
		for {
			_, _, err := ws.ReadMessage()
			if err != nil {
				break
			}
		}
	})

	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		ctx.Error("Error upgrading to WebSocket", fasthttp.StatusInternalServerError)
	}
}

// Métodos auxiliares para respuestas HTTP
func (gh *GameHandler) respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
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

func (gh *GameHandler) respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	response := models.APIResponse{
		Success: false,
		Error:   message,
	}
	gh.respondWithJSON(ctx, statusCode, response)
}

func (gh *GameHandler) respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	response := models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
	gh.respondWithJSON(ctx, fasthttp.StatusOK, response)
}
