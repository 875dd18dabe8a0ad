package models

import "time"

// MatchRecord registro de una ronda terminada
type MatchRecord struct {
	ID             string    `json:"id"`
	Player1Name    string    `json:"player1Name"`
	Player2Name    string    `json:"player2Name"`
	Winner         int       `json:"winner"` // 1 o 2
	WinnerName     string    `json:"winnerName"`
	ScorePlayer1   int       `json:"scorePlayer1"`
	ScorePlayer2   int       `json:"scorePlayer2"`
	RopePosition   int       `json:"ropePosition"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	WrongAnswers   int       `json:"wrongAnswers"`
	Timeouts       int       `json:"timeouts"`
	Difficulty     string    `json:"difficulty"`
	Operation      string    `json:"operation"`
	EndTime        time.Time `json:"endTime"`
}

// MatchResponse respuesta de partidas
type MatchResponse struct {
	Match   *MatchRecord  `json:"match,omitempty"`
	Matches []MatchRecord `json:"matches,omitempty"`
	Count   int           `json:"count,omitempty"`
}

// LeaderboardEntry entrada en la tabla de posiciones por victorias
type LeaderboardEntry struct {
	Position   int    `json:"position"`
	PlayerName string `json:"playerName"`
	Wins       int    `json:"wins"`
	Avatar     string `json:"avatar"`
}

// LeaderboardResponse respuesta de la tabla de posiciones
type LeaderboardResponse struct {
	Leaderboard  []LeaderboardEntry `json:"leaderboard"`
	TotalPlayers int                `json:"totalPlayers"`
}
