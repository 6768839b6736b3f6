package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/weight-planner-api/internal/weightplan"
)

// planRequest is the body for the plan endpoints. Profile may be omitted to
// use the stored profile.
type planRequest struct {
	Profile *profileRequest `json:"profile"`
}

// bindOptional binds a JSON body when one was sent. An empty body leaves
// dst untouched.
func bindOptional(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// createPlan computes calorie targets and the weekly trajectory.
// POST /api/plan.
func (h *Handler) createPlan(c *gin.Context) {
	var req planRequest
	if !bindOptional(c, &req) {
		return
	}
	p, _, ok := h.resolveProfile(c, req.Profile)
	if !ok {
		return
	}

	plan, err := weightplan.BuildPlan(p)
	if err != nil {
		planError(c, "createPlan", err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// createPlanSummary builds the plan and asks the model for a short
// encouraging summary of it.
// POST /api/plan/summary.
func (h *Handler) createPlanSummary(c *gin.Context) {
	var req planRequest
	if !bindOptional(c, &req) {
		return
	}
	p, _, ok := h.resolveProfile(c, req.Profile)
	if !ok {
		return
	}

	plan, err := weightplan.BuildPlan(p)
	if err != nil {
		planError(c, "createPlanSummary", err)
		return
	}
	summary, err := weightplan.Summarize(c.Request.Context(), h.ai.SummaryPrompter(), p, plan.Trajectory)
	if err != nil {
		planError(c, "createPlanSummary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan": plan, "summary": summary})
}
