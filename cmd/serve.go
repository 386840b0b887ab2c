package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandsight/rank-tracker/internal/model"
	"github.com/brandsight/rank-tracker/internal/rank"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the rank and scoring API over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/businesses/{businessID}/ingest", func(w http.ResponseWriter, req *http.Request) {
			businessID, ok := pathUUID(w, req, "businessID")
			if !ok {
				return
			}

			var body struct {
				Devices []string `json:"devices"`
			}
			if req.Body != nil {
				_ = json.NewDecoder(req.Body).Decode(&body)
			}
			var devices []model.Device
			for _, d := range body.Devices {
				devices = append(devices, model.Device(d))
			}

			ingestor := rank.NewIngestor(env.RankStore, env.Registry, env.SERP,
				rank.WithRateLimit(cfg.Ingest.RatePerSecond))
			result, err := ingestor.IngestDaily(req.Context(), businessID, devices)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/keywords/{keywordID}/change", func(w http.ResponseWriter, req *http.Request) {
			keywordID, ok := pathUUID(w, req, "keywordID")
			if !ok {
				return
			}

			period := model.RankPeriod(req.URL.Query().Get("period"))
			if period == "" {
				period = model.PeriodDaily
			}
			device := model.Device(req.URL.Query().Get("device"))

			calc := rank.NewChangeCalculator(env.RankStore)
			change, err := calc.ComputeChange(req.Context(), keywordID, period, device)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, change)
		})

		r.Post("/businesses/{businessID}/scores", func(w http.ResponseWriter, req *http.Request) {
			businessID, ok := pathUUID(w, req, "businessID")
			if !ok {
				return
			}

			var body struct {
				PeriodStart string `json:"period_start"`
				PeriodEnd   string `json:"period_end"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			start, err := time.ParseInLocation("2006-01-02", body.PeriodStart, time.UTC)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid period_start"})
				return
			}
			end, err := time.ParseInLocation("2006-01-02", body.PeriodEnd, time.UTC)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid period_end"})
				return
			}

			score, err := env.Scoring.SaveScores(req.Context(), businessID, start, end)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, score)
		})

		r.Get("/businesses/{businessID}/competitors", func(w http.ResponseWriter, req *http.Request) {
			businessID, ok := pathUUID(w, req, "businessID")
			if !ok {
				return
			}
			competitors, err := env.Registry.ListByBusiness(req.Context(), businessID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, competitors)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func pathUUID(w http.ResponseWriter, req *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(req, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	zap.L().Error("request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
