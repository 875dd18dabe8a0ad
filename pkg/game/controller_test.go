package game

import (
	"fmt"
	"math/rand"
	"testing"
	"time"
)

type feedbackEvent struct {
	isCorrect bool
	expected  float64
	raw       string
}

type winEvent struct {
	winner int
	scores Scores
}

// recorder captura los eventos salientes del controlador en canales con
// buffer para que la emisión nunca bloquee
type recorder struct {
	questions chan Question
	feedbacks chan feedbackEvent
	wins      chan winEvent
	ticks     chan int
	players   chan int
}

func newRecorder() *recorder {
	return &recorder{
		questions: make(chan Question, 256),
		feedbacks: make(chan feedbackEvent, 256),
		wins:      make(chan winEvent, 16),
		ticks:     make(chan int, 1024),
		players:   make(chan int, 256),
	}
}

func (r *recorder) events() Events {
	return Events{
		OnQuestionChanged: func(q Question) { r.questions <- q },
		OnFeedback: func(isCorrect bool, expected float64, raw string) {
			r.feedbacks <- feedbackEvent{isCorrect, expected, raw}
		},
		OnWin:                  func(winner int, scores Scores) { r.wins <- winEvent{winner, scores} },
		OnTimerTick:            func(remaining int) { r.ticks <- remaining },
		OnCurrentPlayerChanged: func(player int) { r.players <- player },
	}
}

func newTestController(settings Settings) (*Controller, *recorder) {
	gen := NewGenerator(rand.New(rand.NewSource(99)))
	ctrl := NewController(gen, settings)
	ctrl.QuestionDelay = 2 * time.Millisecond
	ctrl.TickInterval = 2 * time.Millisecond
	rec := newRecorder()
	ctrl.SetEvents(rec.events())
	return ctrl, rec
}

func settingsNoTimer() Settings {
	settings := DefaultSettings()
	settings.TimerEnabled = false
	return settings
}

func waitQuestion(t *testing.T, rec *recorder) Question {
	t.Helper()
	select {
	case q := <-rec.questions:
		return q
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó ninguna pregunta a tiempo")
		return Question{}
	}
}

func waitFeedback(t *testing.T, rec *recorder) feedbackEvent {
	t.Helper()
	select {
	case fb := <-rec.feedbacks:
		return fb
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó feedback a tiempo")
		return feedbackEvent{}
	}
}

func waitWin(t *testing.T, rec *recorder) winEvent {
	t.Helper()
	select {
	case w := <-rec.wins:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó el evento de victoria a tiempo")
		return winEvent{}
	}
}

// answerCurrent espera la siguiente pregunta y la responde bien o mal
func answerCurrent(t *testing.T, ctrl *Controller, rec *recorder, correct bool) {
	t.Helper()
	q := waitQuestion(t, rec)
	raw := "no soy un número"
	if correct {
		raw = fmt.Sprintf("%v", q.Answer)
	}
	if !ctrl.SubmitAnswer(raw) {
		t.Fatalf("respuesta rechazada para %q", q.Text)
	}
}

func TestStartGamePresentsFirstQuestion(t *testing.T) {
	ctrl, rec := newTestController(settingsNoTimer())

	if !ctrl.StartGame() {
		t.Fatal("StartGame debería aceptarse desde idle")
	}
	if ctrl.StartGame() {
		t.Fatal("StartGame debería ignorarse con una ronda en curso")
	}

	q := waitQuestion(t, rec)
	if q.Text == "" {
		t.Fatal("pregunta vacía")
	}

	snap := ctrl.Snapshot()
	if snap.Status != StatusPlaying || snap.CurrentQuestion == nil || snap.CurrentPlayer != 1 {
		t.Fatalf("estado inesperado tras iniciar: %+v", snap)
	}
}

func TestResolutionSequenceCorrectThenWrong(t *testing.T) {
	ctrl, rec := newTestController(settingsNoTimer())
	ctrl.StartGame()

	// jugador 1 acierta: cuerda a -2, punto para él, turno al jugador 2
	answerCurrent(t, ctrl, rec, true)
	fb := waitFeedback(t, rec)
	if !fb.isCorrect {
		t.Fatalf("feedback incorrecto: %+v", fb)
	}
	snap := ctrl.Snapshot()
	if snap.RopePosition != -2 {
		t.Fatalf("cuerda en %d, esperaba -2", snap.RopePosition)
	}
	if snap.Scores != (Scores{Player1: 1}) {
		t.Fatalf("puntajes %+v, esperaba 1-0", snap.Scores)
	}
	if snap.CurrentPlayer != 2 {
		t.Fatalf("turno de %d, esperaba 2", snap.CurrentPlayer)
	}
	if snap.Stats != (Stats{TotalQuestions: 1, CorrectAnswers: 1}) {
		t.Fatalf("stats %+v", snap.Stats)
	}

	// jugador 2 falla (entrada no numérica): cede una unidad, cuerda a -3
	answerCurrent(t, ctrl, rec, false)
	fb = waitFeedback(t, rec)
	if fb.isCorrect {
		t.Fatalf("feedback incorrecto: %+v", fb)
	}
	snap = ctrl.Snapshot()
	if snap.RopePosition != -3 {
		t.Fatalf("cuerda en %d, esperaba -3", snap.RopePosition)
	}
	if snap.Stats != (Stats{TotalQuestions: 2, CorrectAnswers: 1, WrongAnswers: 1}) {
		t.Fatalf("stats %+v", snap.Stats)
	}
}

func TestSubmitIgnoredOutsidePlaying(t *testing.T) {
	ctrl, _ := newTestController(settingsNoTimer())

	if ctrl.SubmitAnswer("5") {
		t.Fatal("respuesta aceptada sin ronda iniciada")
	}

	ctrl.StartGame()
	ctrl.Pause()
	if ctrl.SubmitAnswer("5") {
		t.Fatal("respuesta aceptada en pausa")
	}
	snap := ctrl.Snapshot()
	if snap.Stats.TotalQuestions != 0 {
		t.Fatalf("la respuesta ignorada no debe tocar el estado: %+v", snap.Stats)
	}
}

func TestSubmitOncePerQuestion(t *testing.T) {
	ctrl, rec := newTestController(settingsNoTimer())
	// espera larga para quedarnos en el hueco entre pregunta y pregunta
	ctrl.QuestionDelay = time.Second
	ctrl.StartGame()

	answerCurrent(t, ctrl, rec, true)
	if ctrl.SubmitAnswer("5") {
		t.Fatal("segunda respuesta aceptada para la misma pregunta")
	}
}

func TestRopeWinEndsRound(t *testing.T) {
	ctrl, rec := newTestController(settingsNoTimer())
	ctrl.StartGame()

	// p1 acierta y p2 falla: -2, -3, -5, -6, -8 → victoria del jugador 1
	for i := 0; i < 5; i++ {
		answerCurrent(t, ctrl, rec, i%2 == 0)
	}

	win := waitWin(t, rec)
	if win.winner != 1 {
		t.Fatalf("ganador %d, esperaba 1", win.winner)
	}
	if win.scores != (Scores{Player1: 3}) {
		t.Fatalf("puntajes finales %+v, esperaba 3-0", win.scores)
	}

	snap := ctrl.Snapshot()
	if snap.Status != StatusEnded || snap.RopePosition != -8 {
		t.Fatalf("estado final inesperado: %+v", snap)
	}
	if ctrl.SubmitAnswer("5") {
		t.Fatal("respuesta aceptada con la ronda terminada")
	}

	// desde ended se puede arrancar una ronda nueva
	if !ctrl.StartGame() {
		t.Fatal("StartGame debería aceptarse desde ended")
	}
}

func TestQuestionLimitDecidesByScore(t *testing.T) {
	settings := settingsNoTimer()
	settings.QuestionLimitEnabled = true
	settings.QuestionLimit = 5
	ctrl, rec := newTestController(settings)
	ctrl.StartGame()

	// solo la primera se acierta: al agotar el límite gana el jugador 1
	answers := []bool{true, false, false, false, false}
	for _, correct := range answers {
		answerCurrent(t, ctrl, rec, correct)
	}

	win := waitWin(t, rec)
	if win.winner != 1 {
		t.Fatalf("ganador %d, esperaba 1 por puntaje", win.winner)
	}
	snap := ctrl.Snapshot()
	if snap.Status != StatusEnded || snap.Stats.TotalQuestions != 5 {
		t.Fatalf("estado final inesperado: %+v", snap)
	}
}

func TestQuestionLimitTieContinues(t *testing.T) {
	settings := settingsNoTimer()
	settings.QuestionLimitEnabled = true
	settings.QuestionLimit = 5
	ctrl, rec := newTestController(settings)
	ctrl.StartGame()

	// 1-1 al llegar al límite: la ronda sigue hasta desempatar
	answers := []bool{true, true, false, false, false}
	for _, correct := range answers {
		answerCurrent(t, ctrl, rec, correct)
	}

	snap := ctrl.Snapshot()
	if snap.Status != StatusPlaying {
		t.Fatalf("con empate la ronda debe continuar: %+v", snap)
	}
	if snap.Scores != (Scores{Player1: 1, Player2: 1}) {
		t.Fatalf("puntajes %+v, esperaba 1-1", snap.Scores)
	}

	// la sexta pregunta desempata y el corte por límite vuelve a aplicar
	answerCurrent(t, ctrl, rec, true)
	win := waitWin(t, rec)
	if win.winner != 2 {
		t.Fatalf("ganador %d, esperaba 2", win.winner)
	}
}

func TestCountdownTimeoutResolvesAsWrong(t *testing.T) {
	settings := DefaultSettings()
	settings.TimerSeconds = 5
	ctrl, rec := newTestController(settings)
	// espera larga para que no se dispare un segundo timeout durante el test
	ctrl.QuestionDelay = time.Second
	ctrl.StartGame()

	fb := waitFeedback(t, rec)
	if fb.raw != TimeoutAnswer || fb.isCorrect {
		t.Fatalf("feedback de timeout inesperado: %+v", fb)
	}

	snap := ctrl.Snapshot()
	if snap.Stats != (Stats{TotalQuestions: 1, Timeouts: 1}) {
		t.Fatalf("stats %+v, esperaba un timeout", snap.Stats)
	}
	// el fallo del jugador 1 cede una unidad hacia el jugador 2
	if snap.RopePosition != 1 {
		t.Fatalf("cuerda en %d, esperaba 1", snap.RopePosition)
	}
	if snap.CurrentPlayer != 2 {
		t.Fatalf("turno de %d, esperaba 2", snap.CurrentPlayer)
	}
}

func TestPauseStopsCountdownResumeRestartsFull(t *testing.T) {
	settings := DefaultSettings()
	settings.TimerSeconds = 30
	ctrl, rec := newTestController(settings)
	ctrl.TickInterval = 5 * time.Millisecond
	ctrl.StartGame()
	waitQuestion(t, rec)

	// dejar correr un par de ticks antes de pausar
	<-rec.ticks
	<-rec.ticks
	if !ctrl.Pause() {
		t.Fatal("Pause debería aceptarse en playing")
	}
	if ctrl.Pause() {
		t.Fatal("Pause debería ignorarse en pausa")
	}

	// en pausa no deben llegar más ticks
	for len(rec.ticks) > 0 {
		<-rec.ticks
	}
	time.Sleep(40 * time.Millisecond)
	if len(rec.ticks) != 0 {
		t.Fatal("el contador siguió corriendo en pausa")
	}

	// al reanudar, el contador arranca de nuevo con la duración completa
	if !ctrl.Resume() {
		t.Fatal("Resume debería aceptarse en pausa")
	}
	select {
	case tick := <-rec.ticks:
		if tick != 30 {
			t.Fatalf("primer tick tras reanudar: %d, esperaba 30", tick)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó ningún tick tras reanudar")
	}
}

func TestPauseDuringDelayPresentsOnResume(t *testing.T) {
	ctrl, rec := newTestController(settingsNoTimer())
	ctrl.QuestionDelay = 30 * time.Millisecond
	ctrl.StartGame()

	answerCurrent(t, ctrl, rec, true)
	if !ctrl.Pause() {
		t.Fatal("Pause debería aceptarse durante la espera")
	}

	// la espera vence en pausa: no debe presentarse ninguna pregunta
	time.Sleep(60 * time.Millisecond)
	if len(rec.questions) != 0 {
		t.Fatal("se presentó una pregunta estando en pausa")
	}

	ctrl.Resume()
	q := waitQuestion(t, rec)
	if q.Text == "" {
		t.Fatal("pregunta vacía tras reanudar")
	}
}

func TestResetGameRestoresDefaults(t *testing.T) {
	ctrl, rec := newTestController(settingsNoTimer())
	ctrl.StartGame()
	answerCurrent(t, ctrl, rec, true)

	ctrl.ResetGame()

	snap := ctrl.Snapshot()
	if snap.Status != StatusIdle {
		t.Fatalf("estado %v, esperaba idle", snap.Status)
	}
	if snap.RopePosition != 0 || snap.Scores != (Scores{}) || snap.Stats != (Stats{}) {
		t.Fatalf("estado no reiniciado: %+v", snap)
	}
	if snap.CurrentQuestion != nil {
		t.Fatal("la pregunta actual debería limpiarse")
	}

	// la espera de siguiente pregunta quedó cancelada
	for len(rec.questions) > 0 {
		<-rec.questions
	}
	time.Sleep(30 * time.Millisecond)
	if len(rec.questions) != 0 {
		t.Fatal("llegó una pregunta después del reset")
	}
}

func TestUpdateSettingsOnlyIdleOrEnded(t *testing.T) {
	ctrl, _ := newTestController(settingsNoTimer())

	hard := DifficultyHard
	if _, ok := ctrl.UpdateSettings(SettingsPatch{Difficulty: &hard}); !ok {
		t.Fatal("la configuración debería aceptarse en idle")
	}

	ctrl.StartGame()
	easy := DifficultyEasy
	if _, ok := ctrl.UpdateSettings(SettingsPatch{Difficulty: &easy}); ok {
		t.Fatal("la configuración debería rechazarse en playing")
	}
	if snap := ctrl.Snapshot(); snap.Settings.Difficulty != DifficultyHard {
		t.Fatalf("la dificultad cambió durante la partida: %v", snap.Settings.Difficulty)
	}
}

func TestUpdateSettingsRejectsOutOfRange(t *testing.T) {
	ctrl, _ := newTestController(settingsNoTimer())

	badTimer := 200
	badLimit := 3
	goodTimer := 30
	settings, ok := ctrl.UpdateSettings(SettingsPatch{
		TimerSeconds:  &badTimer,
		QuestionLimit: &badLimit,
	})
	if !ok {
		t.Fatal("la actualización debería procesarse en idle")
	}
	if settings.TimerSeconds != 10 || settings.QuestionLimit != 10 {
		t.Fatalf("valores fuera de rango aplicados: %+v", settings)
	}

	settings, _ = ctrl.UpdateSettings(SettingsPatch{TimerSeconds: &goodTimer})
	if settings.TimerSeconds != 30 {
		t.Fatalf("valor válido no aplicado: %+v", settings)
	}
}
