package game

import "encoding/json"

// Status estado de la ronda
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
	StatusEnded
)

var statusNames = map[Status]string{
	StatusIdle:    "idle",
	StatusPlaying: "playing",
	StatusPaused:  "paused",
	StatusEnded:   "ended",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

const (
	// RopeLimit desplazamiento físico máximo de la cuerda
	RopeLimit = 10
	// WinThreshold umbral de victoria, se alcanza antes del extremo físico
	WinThreshold = 8

	correctPull  = 2
	wrongPenalty = 1

	// Límites de configuración válidos
	MinTimerSeconds  = 5
	MaxTimerSeconds  = 60
	MinQuestionLimit = 5
	MaxQuestionLimit = 100
)

// Settings configuración de la ronda; editable solo con estado idle o ended
type Settings struct {
	Difficulty           Difficulty `json:"difficulty"`
	Operation            Operation  `json:"operation"`
	TimerEnabled         bool       `json:"timerEnabled"`
	TimerSeconds         int        `json:"timerValue"`
	SoundEnabled         bool       `json:"soundEnabled"`
	QuestionLimitEnabled bool       `json:"questionLimitEnabled"`
	QuestionLimit        int        `json:"questionLimit"`
}

// DefaultSettings configuración inicial del juego
func DefaultSettings() Settings {
	return Settings{
		Difficulty:           DifficultyEasy,
		Operation:            OpAddition,
		TimerEnabled:         true,
		TimerSeconds:         10,
		SoundEnabled:         true,
		QuestionLimitEnabled: false,
		QuestionLimit:        10,
	}
}

// Scores puntaje por jugador
type Scores struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// Stats estadísticas acumuladas de la ronda.
// TotalQuestions siempre es la suma de las otras tres.
type Stats struct {
	TotalQuestions int `json:"totalQuestions"`
	CorrectAnswers int `json:"correctAnswers"`
	WrongAnswers   int `json:"wrongAnswers"`
	Timeouts       int `json:"timeouts"`
}

// RoundState estado completo de una ronda. Es un contenedor de datos con
// transiciones puras, sin entrada/salida; lo posee en exclusiva el Controller.
type RoundState struct {
	CurrentPlayer   int       `json:"currentPlayer"` // 1 o 2
	RopePosition    int       `json:"ropePosition"`  // [-10,10], negativo favorece al jugador 1
	Scores          Scores    `json:"scores"`
	Status          Status    `json:"status"`
	CurrentQuestion *Question `json:"currentQuestion,omitempty"`
	Stats           Stats     `json:"stats"`
	Settings        Settings  `json:"settings"`
}

// NewRoundState crea el estado inicial de una ronda
func NewRoundState(settings Settings) *RoundState {
	return &RoundState{
		CurrentPlayer: 1,
		RopePosition:  0,
		Status:        StatusIdle,
		Settings:      settings,
	}
}

// Reset reinicia todos los campos a sus valores por defecto conservando la
// configuración
func (rs *RoundState) Reset() {
	settings := rs.Settings
	*rs = *NewRoundState(settings)
}

// UpdateRopePosition mueve la cuerda según el resultado de la respuesta y
// devuelve la nueva posición. Una respuesta correcta tira la cuerda hacia el
// jugador que responde (2 unidades); una incorrecta la cede al rival (1).
func (rs *RoundState) UpdateRopePosition(isCorrect bool) int {
	direction := 1
	if rs.CurrentPlayer == 1 {
		direction = -1
	}

	if isCorrect {
		rs.RopePosition += direction * correctPull
	} else {
		rs.RopePosition -= direction * wrongPenalty
	}

	if rs.RopePosition > RopeLimit {
		rs.RopePosition = RopeLimit
	}
	if rs.RopePosition < -RopeLimit {
		rs.RopePosition = -RopeLimit
	}
	return rs.RopePosition
}

// SwitchPlayer alterna el turno entre los jugadores 1 y 2
func (rs *RoundState) SwitchPlayer() {
	if rs.CurrentPlayer == 1 {
		rs.CurrentPlayer = 2
	} else {
		rs.CurrentPlayer = 1
	}
}

// IncrementScore suma un punto al jugador indicado; ignora ids inválidos
func (rs *RoundState) IncrementScore(player int) {
	switch player {
	case 1:
		rs.Scores.Player1++
	case 2:
		rs.Scores.Player2++
	}
}

// UpdateStats registra una pregunta resuelta. El timeout tiene prioridad
// sobre la bandera de acierto.
func (rs *RoundState) UpdateStats(isCorrect, isTimeout bool) {
	rs.Stats.TotalQuestions++
	switch {
	case isTimeout:
		rs.Stats.Timeouts++
	case isCorrect:
		rs.Stats.CorrectAnswers++
	default:
		rs.Stats.WrongAnswers++
	}
}

// CheckWinCondition devuelve el jugador ganador por umbral de cuerda,
// o 0 si todavía no hay ganador
func (rs *RoundState) CheckWinCondition() int {
	if rs.RopePosition <= -WinThreshold {
		return 1
	}
	if rs.RopePosition >= WinThreshold {
		return 2
	}
	return 0
}

// Transiciones de estado. No validan el estado de origen: el Controller es
// responsable de invocar solo transiciones válidas.

func (rs *RoundState) Start() { rs.Status = StatusPlaying }

func (rs *RoundState) Pause() { rs.Status = StatusPaused }

func (rs *RoundState) Resume() { rs.Status = StatusPlaying }

func (rs *RoundState) End() { rs.Status = StatusEnded }
