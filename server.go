package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JakobPriesner/GeoGuesser/internal/gateway"
	"github.com/gin-contrib/cors"
	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"
)

func (app *App) allowAllOrigins() bool {
	return len(app.Config.AllowedOrigins) == 0 || lo.Contains(app.Config.AllowedOrigins, "*")
}

func (app *App) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || app.allowAllOrigins() || lo.Contains(app.Config.AllowedOrigins, origin)
		},
	}
}

func (app *App) wsHandler() gin.HandlerFunc {
	upgrader := app.upgrader()
	pongWait := 2 * app.Config.PingInterval
	if pongWait <= 0 {
		pongWait = time.Minute
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			app.Log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		app.Hub.Serve(gateway.NewWebsocketConnection(conn, pongWait))
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.Request.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Header("X-Request-Id", reqID)
		c.Next()
	}
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetString("request_id")).
			Msg("request")
	}
}

func setupRouter(app *App) *gin.Engine {
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(requestLogger(app.Log.With().Str("component", "http").Logger()))
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	if app.allowAllOrigins() {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = app.Config.AllowedOrigins
		corsConfig.AllowCredentials = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/ws", app.wsHandler())

	api := router.Group("/api")
	api.Use(ginGzip.Gzip(ginGzip.DefaultCompression))
	api.Use(cachecontrol.New(cachecontrol.Config{
		Public: true,
		MaxAge: cachecontrol.Duration(app.Config.APICacheAge),
	}))
	api.GET("/gamemodes", app.gameModesHandler)
	api.GET("/locations", app.locationsHandler)

	router.GET("/healthz", cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	}), app.healthzHandler)

	return router
}

func (app *App) startServer(router *gin.Engine) {
	srv := &http.Server{
		Addr:              ":" + app.Config.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		app.Log.Info().Msg("🛑 shutdown signal received, shutting down gracefully")

		ctx, cancel := context.WithTimeout(context.Background(), app.Config.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			app.Log.Warn().Err(err).Msg("http server shutdown")
		}
		// hijacked websocket connections are not tracked by srv
		app.Hub.CloseAll()
		close(idleConnsClosed)
	}()

	app.Log.Info().Str("port", app.Config.Port).Msg("🚀 server starting")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		app.Log.Fatal().Err(err).Msg("server failed to start")
	}
	<-idleConnsClosed
	app.Log.Info().Msg("server shutdown complete")
}
