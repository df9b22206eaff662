package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shellstorm/server/pkg/config"
	"github.com/shellstorm/server/pkg/game"
	"github.com/shellstorm/server/pkg/logger"
	"github.com/shellstorm/server/pkg/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the game server",
	Long:  `Start the websocket game server with a live helicopter population`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfigOrDefault(cfgFile)
	if err != nil {
		return err
	}

	// Config log level applies unless the flag overrode it
	if !cmd.Flags().Changed("log-level") {
		logger.SetLevel(logger.ParseLevel(cfg.Server.LogLevel))
	}

	logger.Info("Starting shellstorm server")
	logger.Debugf("Configuration:\n%s", cfg.String())

	var session *game.Session
	hub := transport.NewHub(func(gameID string) []transport.Envelope {
		if session == nil || session.ID != gameID {
			return nil
		}
		return []transport.Envelope{{
			Type: game.EventExistingHelicopters,
			Data: session.Helicopters.Snapshot(),
		}}
	})

	session = game.NewSession(cfg, hub)
	session.Start()

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/games", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": session.ID})
	})
	mux.HandleFunc("/fire", handleFire(session))

	server := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s (game %s)", cfg.Server.ListenAddr, session.ID)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		session.Close()
		return err
	case sig := <-sigChan:
		logger.Warnf("Received %v, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown: %v", err)
	}
	hub.Close()

	logger.Success("Server stopped")
	return nil
}

// fireRequest is the body of POST /fire
type fireRequest struct {
	Game     string       `json:"game"`
	Origin   game.Vector3 `json:"origin"`
	Velocity game.Vector3 `json:"velocity"`
}

func handleFire(session *game.Session) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req fireRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Game != "" && req.Game != session.ID {
			http.Error(w, "unknown game", http.StatusNotFound)
			return
		}

		result := session.Projectiles.Fire(req.Origin, req.Velocity)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"projectileId": result.ProjectileID,
			"hits":         result.HitIDs,
			"destroyed":    result.Destroyed,
		})
	}
}
