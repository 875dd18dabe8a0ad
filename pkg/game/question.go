package game

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Operation tipo de operación aritmética
type Operation int

const (
	OpAddition Operation = iota
	OpSubtraction
	OpMultiplication
	OpDivision
	OpMixed // se resuelve a una operación concreta al generar
)

var operationNames = map[Operation]string{
	OpAddition:       "addition",
	OpSubtraction:    "subtraction",
	OpMultiplication: "multiplication",
	OpDivision:       "division",
	OpMixed:          "mixed",
}

func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "unknown"
}

func (o Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Operation) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	op, err := ParseOperation(name)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// ParseOperation convierte el nombre de una operación a su valor
func ParseOperation(name string) (Operation, error) {
	for op, n := range operationNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("operación desconocida: %q", name)
}

// Difficulty nivel de dificultad del juego
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyMedium
	DifficultyHard
)

var difficultyNames = map[Difficulty]string{
	DifficultyEasy:   "easy",
	DifficultyMedium: "medium",
	DifficultyHard:   "hard",
}

func (d Difficulty) String() string {
	if name, ok := difficultyNames[d]; ok {
		return name
	}
	return "unknown"
}

func (d Difficulty) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Difficulty) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	diff, err := ParseDifficulty(name)
	if err != nil {
		return err
	}
	*d = diff
	return nil
}

// ParseDifficulty convierte el nombre de una dificultad a su valor
func ParseDifficulty(name string) (Difficulty, error) {
	for diff, n := range difficultyNames {
		if n == name {
			return diff, nil
		}
	}
	return 0, fmt.Errorf("dificultad desconocida: %q", name)
}

// Question pregunta generada; inmutable una vez creada
type Question struct {
	Text      string    `json:"text"`
	Answer    float64   `json:"answer"`
	Operation Operation `json:"operation"` // siempre concreta, nunca mixed
}

// Generator genera preguntas aritméticas según operación y dificultad.
// La fuente aleatoria se inyecta para poder fijar la semilla en tests.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator crea un generador; con rng nil usa una semilla de reloj
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng}
}

// Rangos de operandos por dificultad para suma y resta
var addSubRanges = map[Difficulty][2]int{
	DifficultyEasy:   {1, 10},
	DifficultyMedium: {1, 50},
	DifficultyHard:   {1, 100},
}

// Rangos ajustados a mano para multiplicación: {a_min, a_max, b_min, b_max}
var mulRanges = map[Difficulty][4]int{
	DifficultyEasy:   {1, 10, 1, 10},
	DifficultyMedium: {1, 12, 1, 10},
	DifficultyHard:   {1, 20, 1, 20},
}

// Rangos para división: {divisor_min, divisor_max, cociente_min, cociente_max}
var divRanges = map[Difficulty][4]int{
	DifficultyEasy:   {2, 10, 1, 10},
	DifficultyMedium: {2, 10, 1, 20},
	DifficultyHard:   {2, 13, 1, 30},
}

// Generate produce una pregunta para la operación y dificultad dadas.
// Con OpMixed primero sortea una operación concreta.
func (g *Generator) Generate(op Operation, difficulty Difficulty) Question {
	if op == OpMixed {
		op = Operation(g.rng.Intn(4))
	}

	switch op {
	case OpSubtraction:
		r := addSubRanges[difficulty]
		a := g.randInt(r[0], r[1])
		b := g.randInt(r[0], r[1])
		// el minuendo siempre es el mayor: resultado nunca negativo
		if b > a {
			a, b = b, a
		}
		return Question{
			Text:      fmt.Sprintf("%d - %d", a, b),
			Answer:    float64(a - b),
			Operation: OpSubtraction,
		}
	case OpMultiplication:
		r := mulRanges[difficulty]
		a := g.randInt(r[0], r[1])
		b := g.randInt(r[2], r[3])
		return Question{
			Text:      fmt.Sprintf("%d × %d", a, b),
			Answer:    float64(a * b),
			Operation: OpMultiplication,
		}
	case OpDivision:
		// se construye desde divisor y cociente: el resultado siempre es entero
		r := divRanges[difficulty]
		divisor := g.randInt(r[0], r[1])
		quotient := g.randInt(r[2], r[3])
		dividend := divisor * quotient
		return Question{
			Text:      fmt.Sprintf("%d ÷ %d", dividend, divisor),
			Answer:    float64(quotient),
			Operation: OpDivision,
		}
	default:
		r := addSubRanges[difficulty]
		a := g.randInt(r[0], r[1])
		b := g.randInt(r[0], r[1])
		return Question{
			Text:      fmt.Sprintf("%d + %d", a, b),
			Answer:    float64(a + b),
			Operation: OpAddition,
		}
	}
}

func (g *Generator) randInt(min, max int) int {
	return min + g.rng.Intn(max-min+1)
}

// answerTolerance margen para respuestas con decimales de presentación
const answerTolerance = 0.01

// Validate comprueba una respuesta cruda contra el valor esperado.
// Entrada vacía o no numérica cuenta como incorrecta, nunca como error.
func Validate(raw string, expected float64) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return false
	}
	return math.Abs(parsed-expected) < answerTolerance
}
