package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"lg/weight-planner-api/internal/advisor"
	"lg/weight-planner-api/internal/llm"
	"lg/weight-planner-api/internal/mealplan"
	"lg/weight-planner-api/internal/weightplan"
)

// recipeSource supplies the recipe table for meal selection.
type recipeSource interface {
	List(ctx context.Context) ([]mealplan.RawRecipe, error)
}

// Handler holds shared dependencies for all route handlers. Planning state
// is never kept here; each request builds its own allocator and advisor.
type Handler struct {
	db             *pgxpool.Pool
	ai             *llm.Client
	recipes        recipeSource
	searcher       advisor.Searcher
	scoreThreshold float64
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Error().Err(err).Msg("[queryOne] query error")
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Error().Err(err).Msg("[queryOne] scan error")
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, c *gin.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(c, sql, args)
	if err != nil {
		log.Error().Err(err).Msg("[queryMany] query error")
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Error().Err(err).Msg("[queryMany] scan error")
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// planError maps planning and upstream failures onto HTTP statuses.
// Invalid input is 400, a failed LLM or search call is 502 with its message,
// and anything else is a 500.
func planError(c *gin.Context, tag string, err error) {
	var upstream *llm.UpstreamError
	switch {
	case errors.Is(err, weightplan.ErrInvalidConfiguration):
		apiError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &upstream):
		log.Warn().Err(err).Str("op", upstream.Op).Int("status", upstream.Status).Msgf("[%s] upstream failure", tag)
		apiError(c, http.StatusBadGateway, "upstream service failed: "+upstream.Error())
	default:
		log.Error().Err(err).Msgf("[%s] request failed", tag)
		apiError(c, http.StatusInternalServerError, "request failed")
	}
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// Neon closes idle connections after ~5 minutes.
func getDBPool(url string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse DB URL: %w", err)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from Neon's server-side prepared statement cache after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	log.Info().Msg("[db] pool ready")
	return pool, nil
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.putProfile)
	api.POST("/plan", h.createPlan)
	api.POST("/plan/summary", h.createPlanSummary)
	api.POST("/meals", h.createMealPlan)
	api.POST("/guidance", h.createGuidance)
	api.POST("/ask", h.ask)
	api.GET("/chat/history", h.getChatHistory)
}
