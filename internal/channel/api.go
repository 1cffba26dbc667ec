package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"buddybot/internal/agent"
)

const (
	apiMaxBodySize    = 1 << 20 // 1MB
	apiRequestTimeout = 120 * time.Second
)

// API is the thin HTTP boundary: one endpoint that feeds a message to the
// agent and returns the turn result.
type API struct {
	host   string
	port   int
	buddy  *agent.Buddy
	logger *slog.Logger
	server *http.Server
}

type APIConfig struct {
	Host   string
	Port   int
	Buddy  *agent.Buddy
	Logger *slog.Logger
}

func NewAPI(cfg APIConfig) *API {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &API{
		host:   cfg.Host,
		port:   cfg.Port,
		buddy:  cfg.Buddy,
		logger: cfg.Logger,
	}
}

// Handler returns the API's routes.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/message", a.handleMessage)
	return mux
}

// Start serves until ctx is done, then shuts down gracefully.
func (a *API) Start(ctx context.Context) error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.host, a.port),
		Handler:      a.Handler(),
		ReadTimeout:  apiRequestTimeout,
		WriteTimeout: apiRequestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("api listening", "addr", a.server.Addr)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type messageRequest struct {
	Content string `json:"content"`
}

func (a *API) handleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST only")
		return
	}

	var req messageRequest
	body := http.MaxBytesReader(w, r.Body, apiMaxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	resp, err := a.buddy.Reply(r.Context(), req.Content)
	if err != nil {
		a.logger.Error("turn failed", "err", err)
		writeError(w, http.StatusBadGateway, "turn failed: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
