package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"lg/weight-planner-api/internal/advisor"
	"lg/weight-planner-api/internal/llm"
	"lg/weight-planner-api/internal/weightplan"
)

// askRequest is the body for POST /api/ask.
type askRequest struct {
	Profile   *profileRequest `json:"profile"`
	Question  string          `json:"question"`
	SessionID string          `json:"session_id"`
}

// newAdvisor builds a per-request advisor around the given prompter.
func (h *Handler) newAdvisor(p llm.Prompter) *advisor.Advisor {
	threshold := h.scoreThreshold
	if threshold == 0 {
		threshold = advisor.DefaultScoreThreshold
	}
	return advisor.New(h.searcher, advisor.StuffAnswerer{Completer: p}, advisor.WithScoreThreshold(threshold))
}

// advisorError is planError for retrieval calls. A failed search that is not
// an LLM error still comes from an upstream collaborator, so it is a 502.
func advisorError(c *gin.Context, tag string, err error) {
	var upstream *llm.UpstreamError
	if errors.Is(err, weightplan.ErrInvalidConfiguration) || errors.As(err, &upstream) {
		planError(c, tag, err)
		return
	}
	log.Warn().Err(err).Msgf("[%s] retrieval failure", tag)
	apiError(c, http.StatusBadGateway, "upstream service failed: "+err.Error())
}

// metricsFor resolves the profile and turns it into advisor metrics.
func (h *Handler) metricsFor(c *gin.Context, req *profileRequest) (advisor.Metrics, bool) {
	p, _, ok := h.resolveProfile(c, req)
	if !ok {
		return advisor.Metrics{}, false
	}
	t, err := weightplan.ComputeCalorieTargets(p)
	if err != nil {
		planError(c, "metrics", err)
		return advisor.Metrics{}, false
	}
	return advisor.MetricsFor(p, t), true
}

// createGuidance returns a weekly exercise and nutrition plan.
// POST /api/guidance.
func (h *Handler) createGuidance(c *gin.Context) {
	var req planRequest
	if !bindOptional(c, &req) {
		return
	}
	m, ok := h.metricsFor(c, req.Profile)
	if !ok {
		return
	}

	ans, err := h.newAdvisor(h.ai.GuidancePrompter()).Guidance(c.Request.Context(), m)
	if err != nil {
		advisorError(c, "createGuidance", err)
		return
	}
	c.JSON(http.StatusOK, ans)
}

// ask answers a free-form nutrition question. When nothing relevant is found
// the response is a 200 with no_match set, not an error.
// POST /api/ask.
func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		apiError(c, http.StatusBadRequest, "question is required")
		return
	}

	sess := advisor.NewSession()
	if req.SessionID != "" {
		id, err := uuid.Parse(req.SessionID)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid session_id")
			return
		}
		sess.ID = id
	}

	m, ok := h.metricsFor(c, req.Profile)
	if !ok {
		return
	}

	ans, err := h.newAdvisor(h.ai.AskPrompter()).Ask(c.Request.Context(), req.Question, m, sess)
	noMatch := errors.Is(err, advisor.ErrNoMatchingContent)
	if err != nil && !noMatch {
		advisorError(c, "ask", err)
		return
	}
	h.saveTurn(c, sess)

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"no_match":   noMatch,
		"answer":     ans.Text,
		"prompt":     ans.Prompt,
		"sources":    ans.Sources,
	})
}

// saveTurn stores the session's latest turn. Failures are logged only; the
// answer has already been produced.
func (h *Handler) saveTurn(c *gin.Context, sess *advisor.Session) {
	turn, ok := sess.Last()
	if !ok || h.db == nil {
		return
	}
	_, err := h.db.Exec(c,
		`INSERT INTO chat_turns (user_id, session_id, question, answer, no_match)
		 VALUES (@userID, @sessionID, @question, @answer, @noMatch)`,
		pgx.NamedArgs{
			"userID":    c.GetInt("user_id"),
			"sessionID": sess.ID,
			"question":  turn.Question,
			"answer":    turn.Answer,
			"noMatch":   turn.NoMatch,
		})
	if err != nil {
		log.Error().Err(err).Str("session", sess.ID.String()).Msg("[ask] failed to save chat turn")
	}
}

// getChatHistory lists the authenticated user's past questions, oldest first,
// optionally for one session.
// GET /api/chat/history?session_id=...
func (h *Handler) getChatHistory(c *gin.Context) {
	args := pgx.NamedArgs{"userID": c.GetInt("user_id")}
	query := "SELECT * FROM chat_turns WHERE user_id = @userID"
	if s := c.Query("session_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid session_id")
			return
		}
		query += " AND session_id = @sessionID"
		args["sessionID"] = id
	}

	turns, err := queryMany[chatTurn](h.db, c, query+" ORDER BY created_at, id", args)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to load chat history")
		return
	}
	if turns == nil {
		turns = []chatTurn{}
	}
	c.JSON(http.StatusOK, gin.H{"turns": turns})
}
