// Package mcp exposes the planner as Model Context Protocol tools over stdio.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"lg/weight-planner-api/internal/advisor"
	"lg/weight-planner-api/internal/mealplan"
)

// RecipeSource supplies the recipe table.
type RecipeSource interface {
	List(ctx context.Context) ([]mealplan.RawRecipe, error)
}

// Server wraps the MCP server with the planner's collaborators.
type Server struct {
	mcpServer *mcp.Server
	recipes   RecipeSource
	advisor   *advisor.Advisor
}

// NewServer registers all tools. adv may be nil, in which case
// ask_nutrition reports that it is not configured.
func NewServer(recipes RecipeSource, adv *advisor.Advisor) *Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "weight-planner",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		recipes:   recipes,
		advisor:   adv,
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdin/stdout until ctx is done or the client
// disconnects.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
