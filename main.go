package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	scalargo "github.com/bdpiprava/scalar-go"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"quickprice/pkg/api"
	"quickprice/pkg/compare"
	"quickprice/pkg/config"
	"quickprice/pkg/gemini"
	"quickprice/pkg/logger"
	"quickprice/pkg/metrics"
	"quickprice/pkg/models"
	"quickprice/pkg/ranking"
	"quickprice/pkg/session"
)

// priceComparer is what the handlers need from the query service.
type priceComparer interface {
	Compare(ctx context.Context, productName string, loc *models.Location) (*models.ComparisonResult, error)
}

var (
	comparer          priceComparer
	sessions          *session.Store
	mtr               *metrics.Metrics
	providerSemaphore chan struct{}
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	addr := flag.String("addr", cfg.ListenAddr, "HTTP listen address")
	model := flag.String("model", cfg.Model, "Provider model name")
	maxConcurrent := flag.Int("max-concurrent", cfg.MaxConcurrent, "Maximum concurrent provider calls")
	sessionCapacity := flag.Int("sessions", cfg.SessionCapacity, "Maximum live session slots")
	timeoutSeconds := flag.Int("timeout", int(cfg.ProviderTimeout/time.Second), "Provider call timeout (seconds)")
	verbose := flag.Bool("v", cfg.Verbose, "Enable verbose logging")
	flag.Parse()

	cfg.ListenAddr = *addr
	cfg.Model = *model
	cfg.MaxConcurrent = *maxConcurrent
	cfg.SessionCapacity = *sessionCapacity
	cfg.ProviderTimeout = time.Duration(*timeoutSeconds) * time.Second
	cfg.Verbose = *verbose

	log := logger.New(cfg.Verbose)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.APIKey == "" {
		log.Warn("no provider API key configured; queries will fail with CONFIG_MISSING until one is set")
	}

	mtr = metrics.New()
	client := gemini.NewClient(cfg.ProviderBaseURL, cfg.Model, cfg.APIKey, cfg.ProviderTimeout)
	comparer = compare.NewService(cfg.APIKey, client, mtr, log)

	sessions, err = session.NewStore(cfg.SessionCapacity)
	if err != nil {
		log.Error("initialising session store", slog.Any("error", err))
		os.Exit(1)
	}
	providerSemaphore = make(chan struct{}, cfg.MaxConcurrent)

	http.HandleFunc("/compare", compareHandler)
	http.HandleFunc("/sessions/", sessionResultHandler)
	http.HandleFunc("/healthz", healthHandler)
	http.Handle("/metrics", promhttp.HandlerFor(mtr.Registry, promhttp.HandlerOpts{}))
	http.HandleFunc("/", rootHandler)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           nil,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening",
			slog.String("addr", cfg.ListenAddr),
			slog.String("model", cfg.Model),
			slog.Int("max_concurrent", cfg.MaxConcurrent),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, draining in-flight requests")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", slog.Any("error", err))
	}
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		api.WriteNotFound(w, "Unknown path. See API docs at /.", r.URL.Path)
		return
	}

	// Serve Scalar docs on root path
	html, err := scalargo.NewV2(
		scalargo.WithSpecDir("./"),
		scalargo.WithMetaDataOpts(
			scalargo.WithTitle("QuickPrice Compare API"),
		),
	)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

// comparisonResponse is the UI-facing payload for one ranked result.
type comparisonResponse struct {
	Query         string               `json:"query"`
	SessionID     string               `json:"sessionId"`
	RequestID     string               `json:"requestId,omitempty"`
	Sort          string               `json:"sort"`
	Items         []ranking.RankedItem `json:"items"`
	CheapestPrice *float64             `json:"cheapestPrice"`
	Summary       string               `json:"summary"`
	Sources       []models.Source      `json:"sources"`
}

func buildComparisonResponse(query, sessionID, requestID string, result *models.ComparisonResult, mode ranking.Mode) comparisonResponse {
	resp := comparisonResponse{
		Query:     query,
		SessionID: sessionID,
		RequestID: requestID,
		Sort:      string(mode),
		Items:     ranking.Rank(result.Items, mode),
		Summary:   result.Summary,
		Sources:   result.Sources,
	}
	if cheapest, ok := ranking.CheapestPrice(result.Items); ok {
		resp.CheapestPrice = &cheapest
	}
	return resp
}

func compareHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.WriteBadRequest(w, "Method not allowed. Use GET.", r.URL.Path)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		api.WriteBadRequest(w, "Query parameter 'q' must not be empty.", r.URL.Path)
		return
	}

	mode, err := ranking.ParseMode(r.URL.Query().Get("sort"))
	if err != nil {
		api.WriteBadRequest(w, err.Error(), r.URL.Path)
		return
	}

	loc, err := parseLocation(r.URL.Query().Get("lat"), r.URL.Query().Get("lng"))
	if err != nil {
		api.WriteBadRequest(w, err.Error(), r.URL.Path)
		return
	}

	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	requestID := uuid.NewString()
	seq := sessions.Begin(sessionID)

	// Bound concurrent provider calls across all sessions.
	select {
	case providerSemaphore <- struct{}{}:
	case <-r.Context().Done():
		return
	}
	defer func() { <-providerSemaphore }()

	result, err := comparer.Compare(r.Context(), query, loc)
	if err != nil {
		// The session's previous result stays in place on failure.
		mtr.IncComparison(compare.KindLabel(err))
		slog.Warn("comparison failed",
			slog.String("request_id", requestID),
			slog.String("query", query),
			slog.String("kind", compare.KindLabel(err)),
		)
		api.WriteCompareError(w, err, r.URL.Path)
		return
	}
	mtr.IncComparison("success")

	if !sessions.Complete(sessionID, seq, query, result) {
		// A newer request owns the slot; this reply is not stored.
		slog.Info("superseded result discarded",
			slog.String("request_id", requestID),
			slog.String("session_id", sessionID),
		)
	}
	mtr.SetSessions(sessions.Len())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Session-ID", sessionID)
	if err := json.NewEncoder(w).Encode(buildComparisonResponse(query, sessionID, requestID, result, mode)); err != nil {
		slog.Error("encoding response", slog.Any("error", err))
	}
}

func sessionResultHandler(w http.ResponseWriter, r *http.Request) {
	// Path expected: /sessions/{id}/result
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) != 4 || parts[1] != "sessions" || parts[3] != "result" || parts[2] == "" {
		api.WriteBadRequest(w, "Invalid path. Expected /sessions/{id}/result", r.URL.Path)
		return
	}
	if r.Method != http.MethodGet {
		api.WriteBadRequest(w, "Method not allowed. Use GET.", r.URL.Path)
		return
	}

	mode, err := ranking.ParseMode(r.URL.Query().Get("sort"))
	if err != nil {
		api.WriteBadRequest(w, err.Error(), r.URL.Path)
		return
	}

	sessionID := parts[2]
	result, query, ok := sessions.Current(sessionID)
	if !ok {
		api.WriteNotFound(w, "No result for this session.", r.URL.Path)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(buildComparisonResponse(query, sessionID, "", result, mode)); err != nil {
		slog.Error("encoding response", slog.Any("error", err))
	}
}

// parseLocation reads the optional lat/lng hint. Both must be present
// together and inside valid coordinate ranges.
func parseLocation(latStr, lngStr string) (*models.Location, error) {
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, fmt.Errorf("lat and lng must be provided together")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat: %q", latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lng: %q", lngStr)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("coordinates out of range")
	}
	return &models.Location{Lat: lat, Lng: lng}, nil
}
