package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/backsoul/mathtug/pkg/config"
	"github.com/backsoul/mathtug/pkg/game"
	"github.com/backsoul/mathtug/pkg/handlers"
	"github.com/backsoul/mathtug/pkg/redis"
	"github.com/backsoul/mathtug/pkg/services"
	"github.com/backsoul/mathtug/pkg/websocket"
	"github.com/valyala/fasthttp"
)

var (
	redisClient  *redis.RedisClient
	matchService *services.MatchService
	controller   *game.Controller
	gameHandler  *handlers.GameHandler
	matchHandler *handlers.MatchHandler
	hub          *websocket.Hub
)

func main() {
	log.Println("🚀 Iniciando servidor Tira y Afloja Matemático")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error cargando configuración: %v", err)
	}

	// Inicializar Redis
	log.Printf("🔌 Conectando a Redis en %s...", cfg.RedisAddr)
	redisClient = redis.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	// Inicializar servicios y el motor del juego
	initServices(cfg)

	// Configurar el servidor
	server := &fasthttp.Server{
		Handler: requestHandler,
		Name:    "MathTug Server",
	}

	log.Println("🎮 Servidor Tira y Afloja Matemático iniciado")
	log.Printf("📱 Juego principal: http://localhost%s", cfg.Addr)
	log.Printf("🔧 API Health: http://localhost%s/api/health", cfg.Addr)
	log.Println("🔄 Presiona Ctrl+C para detener el servidor")

	if err := server.ListenAndServe(cfg.Addr); err != nil {
		log.Fatalf("Error al iniciar el servidor: %v", err)
	}
}

func initServices(cfg *config.Config) {
	log.Println("⚙️  Inicializando servicios...")
	matchService = services.NewMatchService(redisClient, cfg.MatchTTL)

	// Inicializar WebSocket Hub
	hub = websocket.NewHub()
	go hub.Run()

	// Motor del juego: el controlador posee el estado de la ronda y emite
	// los eventos que el handler retransmite por WebSocket
	controller = game.NewController(game.NewGenerator(nil), game.DefaultSettings())
	gameHandler = handlers.NewGameHandler(controller, matchService, hub)
	controller.SetEvents(gameHandler.Events())

	matchHandler = handlers.NewMatchHandler(matchService)
}

func requestHandler(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	// Log de la petición
	log.Printf("📡 %s %s", method, path)

	// Configurar headers de respuesta
	ctx.Response.Header.Set("Server", "MathTug-FastHTTP/1.0")
	ctx.Response.Header.Set("Cache-Control", "no-cache")

	// Headers CORS para desarrollo
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	// Manejar preflight requests
	if method == "OPTIONS" {
		ctx.SetStatusCode(fasthttp.StatusOK)
		return
	}

	// Enrutamiento
	switch {
	// Página principal
	case path == "/":
		serveFile(ctx, "index.html")
	case path == "/favicon.ico":
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetBodyString("🎮")

	// API Routes - Health
	case path == "/api/health":
		matchHandler.HealthCheck(ctx)

	// API Routes - Control del juego
	case path == "/api/game/start" && method == "POST":
		gameHandler.StartGame(ctx)
	case path == "/api/game/answer" && method == "POST":
		gameHandler.SubmitAnswer(ctx)
	case path == "/api/game/pause" && method == "POST":
		gameHandler.PauseGame(ctx)
	case path == "/api/game/resume" && method == "POST":
		gameHandler.ResumeGame(ctx)
	case path == "/api/game/reset" && method == "POST":
		gameHandler.ResetGame(ctx)
	case path == "/api/game/state" && method == "GET":
		gameHandler.GetGameState(ctx)
	case path == "/api/game/settings" && method == "POST":
		gameHandler.UpdateSettings(ctx)

	// API Routes - Partidas y tabla de posiciones
	case path == "/api/matches" && method == "GET":
		matchHandler.GetMatches(ctx)
	case path == "/api/leaderboard" && method == "GET":
		matchHandler.GetLeaderboard(ctx)
	case path == "/api/players" && method == "GET":
		matchHandler.GetPlayerNames(ctx)

	// WebSocket Route
	case path == "/ws":
		gameHandler.HandleWebSocket(ctx)

	// API Routes - Partidas individuales (con parámetros)
	case strings.HasPrefix(path, "/api/matches/") && method == "GET":
		// Manejar /api/matches/{id}
		parts := strings.Split(path, "/")
		if len(parts) == 4 && parts[1] == "api" && parts[2] == "matches" {
			ctx.SetUserValue("id", parts[3])
			matchHandler.GetMatch(ctx)
		} else {
			serve404(ctx)
		}

	default:
		serve404(ctx)
	}
}

func serveFile(ctx *fasthttp.RequestCtx, filename string) {
	filePath := filepath.Join(".", filename)

	// Verificar si el archivo existe
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetContentType("text/html; charset=utf-8")
		ctx.SetBodyString(`
			<!DOCTYPE html>
			<html>
			<head>
				<title>Archivo no encontrado</title>
				<style>
					body {
						font-family: Arial, sans-serif;
						background: linear-gradient(135deg, #0f0f0f 0%, #1a1a2e 50%, #16213e 100%);
						color: white;
						text-align: center;
						padding: 50px;
					}
					h1 { color: #f44336; }
					p { font-size: 1.1rem; color: #ccc; }
				</style>
			</head>
			<body>
				<h1>⚠️ Archivo no encontrado</h1>
				<p>El archivo <strong>` + filename + `</strong> no existe en el servidor.</p>
				<p>Asegúrate de que el archivo esté en el directorio correcto.</p>
			</body>
			</html>
		`)
		return
	}

	if filepath.Ext(filename) == ".html" {
		ctx.SetContentType("text/html; charset=utf-8")
	}

	fasthttp.ServeFile(ctx, filePath)
	log.Printf("✅ Archivo servido: %s", filename)
}

func serve404(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBodyString(`
		<!DOCTYPE html>
		<html>
		<head>
			<title>404 - Página no encontrada</title>
			<style>
				body {
					font-family: Arial, sans-serif;
					background: linear-gradient(135deg, #0f0f0f 0%, #1a1a2e 50%, #16213e 100%);
					color: white;
					text-align: center;
					padding: 50px;
				}
				h1 {
					font-size: 3rem;
					background: linear-gradient(45deg, #ffd700, #ffed4e);
					-webkit-background-clip: text;
					background-clip: text;
					-webkit-text-fill-color: transparent;
				}
				p { font-size: 1.2rem; color: #ccc; }
				.api-info {
					background: rgba(255, 255, 255, 0.1);
					border-radius: 10px;
					padding: 20px;
					margin-top: 20px;
					text-align: left;
				}
				.endpoint {
					background: rgba(0, 0, 0, 0.3);
					padding: 5px 10px;
					border-radius: 5px;
					margin: 5px 0;
					font-family: monospace;
				}
			</style>
		</head>
		<body>
			<h1>🎮 404 - Página no encontrada</h1>
			<p>La página que buscas no existe en este servidor.</p>
			<div class="api-info">
				<h3>🔧 Endpoints API disponibles:</h3>
				<h4>🪢 Juego:</h4>
				<div class="endpoint">GET /api/health</div>
				<div class="endpoint">POST /api/game/start</div>
				<div class="endpoint">POST /api/game/answer</div>
				<div class="endpoint">POST /api/game/pause</div>
				<div class="endpoint">POST /api/game/resume</div>
				<div class="endpoint">POST /api/game/reset</div>
				<div class="endpoint">GET /api/game/state</div>
				<div class="endpoint">POST /api/game/settings</div>
				<h4>🏆 Partidas:</h4>
				<div class="endpoint">GET /api/matches</div>
				<div class="endpoint">GET /api/matches/{id}</div>
				<div class="endpoint">GET /api/leaderboard</div>
				<div class="endpoint">GET /api/players</div>
			</div>
		</body>
		</html>
	`)
}
