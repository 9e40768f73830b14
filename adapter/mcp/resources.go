package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/studybuddy/internal/planning/application/queries"
	studyQueries "github.com/felixgeelhaar/studybuddy/internal/study/application/queries"
)

// RegisterResources registers MCP resources that expose StudyBuddy data.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	app := deps.App
	if app == nil {
		return fmt.Errorf("app is required")
	}

	jsonResource(srv, "studybuddy://tasks", "Tasks", "Open study tasks", func(ctx context.Context) (any, error) {
		return app.ListTasksHandler.Handle(ctx, studyQueries.ListTasksQuery{})
	})
	jsonResource(srv, "studybuddy://schedule", "Schedule", "The latest study schedule", func(ctx context.Context) (any, error) {
		return app.GetScheduleHandler.Handle(ctx, queries.GetScheduleQuery{})
	})
	jsonResource(srv, "studybuddy://session", "Focus Session", "The focus tracker state", func(ctx context.Context) (any, error) {
		return app.GetSessionHandler.Handle(ctx)
	})
	return nil
}

func jsonResource(srv *mcp.Server, uri, name, description string, load func(context.Context) (any, error)) {
	srv.Resource(uri).
		Name(name).
		Description(description).
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			v, err := load(ctx)
			if err != nil {
				return nil, err
			}
			data, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return nil, err
			}
			return &mcp.ResourceContent{
				URI:      uri,
				MimeType: "application/json",
				Text:     string(data),
			}, nil
		})
}
