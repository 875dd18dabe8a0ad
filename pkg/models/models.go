package models

// APIResponse estructura estándar para respuestas de API
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// StartGameRequest request para iniciar una ronda
type StartGameRequest struct {
	Player1 string `json:"player1,omitempty"`
	Player2 string `json:"player2,omitempty"`
}

// AnswerRequest respuesta cruda enviada por el jugador en turno
type AnswerRequest struct {
	Answer string `json:"answer"`
}

// SettingsRequest actualización parcial de la configuración del juego.
// Los campos ausentes no se modifican.
type SettingsRequest struct {
	Difficulty           *string `json:"difficulty,omitempty"` // easy, medium, hard
	Operation            *string `json:"operation,omitempty"`  // addition, subtraction, multiplication, division, mixed
	TimerEnabled         *bool   `json:"timerEnabled,omitempty"`
	TimerValue           *int    `json:"timerValue,omitempty"` // 5-60 segundos
	SoundEnabled         *bool   `json:"soundEnabled,omitempty"`
	QuestionLimitEnabled *bool   `json:"questionLimitEnabled,omitempty"`
	QuestionLimit        *int    `json:"questionLimit,omitempty"` // 5-100 preguntas
}
