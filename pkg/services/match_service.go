package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/backsoul/mathtug/pkg/models"
	"github.com/backsoul/mathtug/pkg/redis"
	"github.com/google/uuid"
)

// MatchService maneja la persistencia de las partidas terminadas
type MatchService struct {
	redisClient *redis.RedisClient
	matchTTL    time.Duration
}

// NewMatchService crea una nueva instancia del servicio de partidas
func NewMatchService(redisClient *redis.RedisClient, matchTTL time.Duration) *MatchService {
	return &MatchService{
		redisClient: redisClient,
		matchTTL:    matchTTL,
	}
}

// RecordMatch guarda una partida terminada y suma la victoria al ganador
func (s *MatchService) RecordMatch(match models.MatchRecord) (*models.MatchRecord, error) {
	if match.ID == "" {
		match.ID = uuid.New().String()
	}
	if match.EndTime.IsZero() {
		match.EndTime = time.Now()
	}

	matchJSON, err := json.Marshal(match)
	if err != nil {
		return nil, fmt.Errorf("error serializando partida: %v", err)
	}

	key := fmt.Sprintf("mathtug:match:%s", match.ID)
	if err := s.redisClient.Set(key, string(matchJSON), s.matchTTL); err != nil {
		return nil, fmt.Errorf("error guardando partida: %v", err)
	}

	// Agregar al índice de partidas
	if err := s.redisClient.AddToSet("mathtug:matches", match.ID); err != nil {
		log.Printf("⚠️ Error agregando partida al índice: %v", err)
	}

	// Sumar la victoria en la tabla de posiciones
	if err := s.redisClient.IncrementWins(match.WinnerName); err != nil {
		log.Printf("⚠️ Error actualizando tabla de posiciones: %v", err)
	}

	log.Printf("✅ Partida guardada: %s ganó %d-%d (ID: %s)",
		match.WinnerName, match.ScorePlayer1, match.ScorePlayer2, match.ID)
	return &match, nil
}

// GetMatch obtiene una partida por ID
func (s *MatchService) GetMatch(matchID string) (*models.MatchRecord, error) {
	matchJSON, err := s.redisClient.Get(fmt.Sprintf("mathtug:match:%s", matchID))
	if err != nil {
		return nil, fmt.Errorf("partida no encontrada: %v", err)
	}

	var match models.MatchRecord
	if err := json.Unmarshal([]byte(matchJSON), &match); err != nil {
		return nil, fmt.Errorf("error parsing partida: %v", err)
	}

	return &match, nil
}

// GetRecentMatches obtiene las partidas más recientes
func (s *MatchService) GetRecentMatches() ([]models.MatchRecord, error) {
	matchIDs, err := s.redisClient.GetSetMembers("mathtug:matches")
	if err != nil {
		return nil, fmt.Errorf("error obteniendo índice de partidas: %v", err)
	}

	var matches []models.MatchRecord
	for _, matchID := range matchIDs {
		match, err := s.GetMatch(matchID)
		if err != nil {
			// la partida expiró: sacarla del índice
			s.redisClient.RemoveFromSet("mathtug:matches", matchID)
			continue
		}
		matches = append(matches, *match)
	}

	// Ordenar por fecha de fin (más reciente primero)
	for i := 0; i < len(matches)-1; i++ {
		for j := i + 1; j < len(matches); j++ {
			if matches[i].EndTime.Before(matches[j].EndTime) {
				matches[i], matches[j] = matches[j], matches[i]
			}
		}
	}

	// Limitar a las primeras 20 para no sobrecargar
	if len(matches) > 20 {
		matches = matches[:20]
	}

	return matches, nil
}

// GetLeaderboard obtiene la tabla de posiciones por victorias
func (s *MatchService) GetLeaderboard() (*models.LeaderboardResponse, error) {
	winners, err := s.redisClient.GetTopWinners(20)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo tabla de posiciones: %v", err)
	}

	avatars := []string{"🎯", "⭐", "🔥", "💎", "🌟", "🎪", "🚀", "👤", "🎨", "🎵", "🌊", "⚡", "🎭", "🦄", "🔮"}

	var leaderboard []models.LeaderboardEntry
	for i, winner := range winners {
		entry := models.LeaderboardEntry{
			Position:   i + 1,
			PlayerName: winner.PlayerName,
			Wins:       winner.Wins,
			Avatar:     avatars[i%len(avatars)],
		}
		leaderboard = append(leaderboard, entry)
	}

	response := &models.LeaderboardResponse{
		Leaderboard:  leaderboard,
		TotalPlayers: len(leaderboard),
	}

	return response, nil
}

// GetPlayerNames obtiene todos los jugadores registrados en la tabla
func (s *MatchService) GetPlayerNames() ([]string, error) {
	names, err := s.redisClient.GetPlayerNames()
	if err != nil {
		return nil, fmt.Errorf("error obteniendo nombres de jugadores: %v", err)
	}
	return names, nil
}

// HealthCheck verifica que el servicio esté funcionando
func (s *MatchService) HealthCheck() error {
	if err := s.redisClient.HealthCheck(); err != nil {
		return fmt.Errorf("error en health check de Redis: %v", err)
	}
	return nil
}
