package game

import (
	"sync"
	"time"
)

// TimeoutAnswer valor centinela usado como respuesta cruda cuando el
// contador llega a cero
const TimeoutAnswer = "timeout"

// Events callbacks salientes hacia la capa de presentación. Se invocan de
// forma síncrona con el candado del Controller tomado: no deben llamar de
// vuelta a métodos del Controller. Cualquier campo puede quedar en nil.
type Events struct {
	OnQuestionChanged      func(question Question)
	OnFeedback             func(isCorrect bool, expected float64, raw string)
	OnScoreChanged         func(scores Scores)
	OnRopePositionChanged  func(position int)
	OnTimerTick            func(secondsRemaining int)
	OnWin                  func(winner int, scores Scores)
	OnCurrentPlayerChanged func(player int)
}

// Controller orquesta una ronda jugable: inicio, pausa, ciclo
// pregunta→respuesta→resolución y el contador por pregunta. Todas las
// entradas se serializan con un mutex; las llamadas en un estado que no las
// permite son no-ops silenciosos.
type Controller struct {
	mu     sync.Mutex
	state  *RoundState
	gen    *Generator
	events Events

	// Ajustables antes de iniciar la ronda (los tests los acortan)
	QuestionDelay time.Duration // espera entre resolución y siguiente pregunta
	TickInterval  time.Duration // duración de un "segundo" del contador

	// timerGen invalida contadores y esperas pendientes: cualquier goroutine
	// o callback con una generación vieja se vuelve un no-op
	timerGen    int
	nextTimer   *time.Timer
	pendingNext bool // hay una siguiente pregunta pendiente de presentar
}

// NewController crea el controlador de ronda con la configuración dada
func NewController(gen *Generator, settings Settings) *Controller {
	return &Controller{
		state:         NewRoundState(settings),
		gen:           gen,
		QuestionDelay: 1500 * time.Millisecond,
		TickInterval:  time.Second,
	}
}

// SetEvents registra los callbacks de presentación
func (c *Controller) SetEvents(events Events) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = events
}

// Snapshot devuelve una copia del estado actual de la ronda
func (c *Controller) Snapshot() RoundState {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := *c.state
	if snapshot.CurrentQuestion != nil {
		question := *snapshot.CurrentQuestion
		snapshot.CurrentQuestion = &question
	}
	return snapshot
}

// StartGame inicia una ronda nueva desde idle o ended. Devuelve false si ya
// hay una ronda en curso.
func (c *Controller) StartGame() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status == StatusPlaying || c.state.Status == StatusPaused {
		return false
	}

	c.stopTimersLocked()
	c.pendingNext = false
	c.state.Reset()
	c.state.Start()

	if c.events.OnCurrentPlayerChanged != nil {
		c.events.OnCurrentPlayerChanged(c.state.CurrentPlayer)
	}
	c.presentQuestionLocked()
	return true
}

// SubmitAnswer procesa la respuesta del jugador en turno. Acepta exactamente
// una respuesta por pregunta; fuera del estado playing se ignora.
func (c *Controller) SubmitAnswer(raw string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status != StatusPlaying || c.state.CurrentQuestion == nil {
		return false
	}

	question := *c.state.CurrentQuestion
	c.stopTimersLocked()
	isCorrect := Validate(raw, question.Answer)
	c.resolveLocked(question, isCorrect, false, raw)
	return true
}

// Pause suspende la ronda y detiene el contador activo
func (c *Controller) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status != StatusPlaying {
		return false
	}

	c.stopTimersLocked()
	c.state.Pause()
	return true
}

// Resume reanuda la ronda. El contador vuelve a arrancar con la duración
// completa, no con el tiempo restante. Si la espera de siguiente pregunta
// venció durante la pausa, la pregunta se presenta de inmediato.
func (c *Controller) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status != StatusPaused {
		return false
	}

	c.state.Resume()
	if c.pendingNext {
		c.presentQuestionLocked()
	} else if c.state.CurrentQuestion != nil {
		c.startCountdownLocked()
	}
	return true
}

// ResetGame cancela cualquier contador o espera en vuelo y devuelve la ronda
// a su estado inicial con la configuración vigente
func (c *Controller) ResetGame() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimersLocked()
	c.pendingNext = false
	c.state.Reset()

	if c.events.OnScoreChanged != nil {
		c.events.OnScoreChanged(c.state.Scores)
	}
	if c.events.OnRopePositionChanged != nil {
		c.events.OnRopePositionChanged(c.state.RopePosition)
	}
	if c.events.OnCurrentPlayerChanged != nil {
		c.events.OnCurrentPlayerChanged(c.state.CurrentPlayer)
	}
}

// SettingsPatch actualización parcial de la configuración; los campos nil no
// se tocan
type SettingsPatch struct {
	Difficulty           *Difficulty
	Operation            *Operation
	TimerEnabled         *bool
	TimerSeconds         *int
	SoundEnabled         *bool
	QuestionLimitEnabled *bool
	QuestionLimit        *int
}

// UpdateSettings aplica una actualización parcial. Solo se acepta con estado
// idle o ended; los valores fuera de rango se descartan en silencio y se
// conserva el valor anterior. Devuelve la configuración resultante.
func (c *Controller) UpdateSettings(patch SettingsPatch) (Settings, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status != StatusIdle && c.state.Status != StatusEnded {
		return c.state.Settings, false
	}

	settings := &c.state.Settings
	if patch.Difficulty != nil {
		settings.Difficulty = *patch.Difficulty
	}
	if patch.Operation != nil {
		settings.Operation = *patch.Operation
	}
	if patch.TimerEnabled != nil {
		settings.TimerEnabled = *patch.TimerEnabled
	}
	if patch.TimerSeconds != nil {
		if *patch.TimerSeconds >= MinTimerSeconds && *patch.TimerSeconds <= MaxTimerSeconds {
			settings.TimerSeconds = *patch.TimerSeconds
		}
	}
	if patch.SoundEnabled != nil {
		settings.SoundEnabled = *patch.SoundEnabled
	}
	if patch.QuestionLimitEnabled != nil {
		settings.QuestionLimitEnabled = *patch.QuestionLimitEnabled
	}
	if patch.QuestionLimit != nil {
		if *patch.QuestionLimit >= MinQuestionLimit && *patch.QuestionLimit <= MaxQuestionLimit {
			settings.QuestionLimit = *patch.QuestionLimit
		}
	}
	return *settings, true
}

// resolveLocked ejecuta la secuencia de resolución tras una respuesta
// (correcta, incorrecta o timeout). Requiere el candado tomado.
func (c *Controller) resolveLocked(question Question, isCorrect, isTimeout bool, raw string) {
	c.state.CurrentQuestion = nil
	c.state.UpdateStats(isCorrect, isTimeout)

	if isCorrect {
		c.state.IncrementScore(c.state.CurrentPlayer)
		if c.events.OnScoreChanged != nil {
			c.events.OnScoreChanged(c.state.Scores)
		}
	}

	if c.events.OnFeedback != nil {
		c.events.OnFeedback(isCorrect, question.Answer, raw)
	}

	position := c.state.UpdateRopePosition(isCorrect)
	if c.events.OnRopePositionChanged != nil {
		c.events.OnRopePositionChanged(position)
	}

	if winner := c.state.CheckWinCondition(); winner != 0 {
		c.endLocked(winner)
		return
	}

	settings := c.state.Settings
	if settings.QuestionLimitEnabled && c.state.Stats.TotalQuestions >= settings.QuestionLimit {
		scores := c.state.Scores
		if scores.Player1 > scores.Player2 {
			c.endLocked(1)
			return
		}
		if scores.Player2 > scores.Player1 {
			c.endLocked(2)
			return
		}
		// empate al llegar al límite: la ronda continúa
	}

	c.state.SwitchPlayer()
	if c.events.OnCurrentPlayerChanged != nil {
		c.events.OnCurrentPlayerChanged(c.state.CurrentPlayer)
	}
	c.scheduleNextQuestionLocked()
}

func (c *Controller) endLocked(winner int) {
	c.stopTimersLocked()
	c.pendingNext = false
	c.state.End()
	if c.events.OnWin != nil {
		c.events.OnWin(winner, c.state.Scores)
	}
}

// presentQuestionLocked genera la siguiente pregunta, la anuncia y arranca
// el contador si está habilitado
func (c *Controller) presentQuestionLocked() {
	c.pendingNext = false
	settings := c.state.Settings
	question := c.gen.Generate(settings.Operation, settings.Difficulty)
	c.state.CurrentQuestion = &question

	if c.events.OnQuestionChanged != nil {
		c.events.OnQuestionChanged(question)
	}
	c.startCountdownLocked()
}

// scheduleNextQuestionLocked programa la siguiente pregunta tras la espera
// de visualización. Si el estado deja de ser playing mientras tanto, la
// presentación queda pendiente para Resume.
func (c *Controller) scheduleNextQuestionLocked() {
	c.pendingNext = true
	gen := c.timerGen
	c.nextTimer = time.AfterFunc(c.QuestionDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.timerGen || c.state.Status != StatusPlaying {
			return
		}
		c.presentQuestionLocked()
	})
}

// startCountdownLocked arranca un contador nuevo por pregunta. Cualquier
// contador anterior queda invalidado: nunca corren dos a la vez.
func (c *Controller) startCountdownLocked() {
	if !c.state.Settings.TimerEnabled {
		return
	}

	c.timerGen++
	gen := c.timerGen
	remaining := c.state.Settings.TimerSeconds
	if c.events.OnTimerTick != nil {
		c.events.OnTimerTick(remaining)
	}

	go func() {
		ticker := time.NewTicker(c.TickInterval)
		defer ticker.Stop()
		for range ticker.C {
			c.mu.Lock()
			if gen != c.timerGen || c.state.Status != StatusPlaying || c.state.CurrentQuestion == nil {
				c.mu.Unlock()
				return
			}
			remaining--
			if remaining <= 0 {
				question := *c.state.CurrentQuestion
				c.stopTimersLocked()
				c.resolveLocked(question, false, true, TimeoutAnswer)
				c.mu.Unlock()
				return
			}
			if c.events.OnTimerTick != nil {
				c.events.OnTimerTick(remaining)
			}
			c.mu.Unlock()
		}
	}()
}

// stopTimersLocked cancela de forma idempotente el contador activo y la
// espera de siguiente pregunta
func (c *Controller) stopTimersLocked() {
	c.timerGen++
	if c.nextTimer != nil {
		c.nextTimer.Stop()
		c.nextTimer = nil
	}
}
