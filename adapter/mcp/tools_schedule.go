package mcp

import (
	"context"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/studybuddy/internal/planning/application/commands"
	"github.com/felixgeelhaar/studybuddy/internal/planning/application/queries"
)

type scheduleBuildInput struct {
	StartDate     string `json:"start_date,omitempty"`
	DailyCapacity string `json:"daily_capacity,omitempty"`
}

type scheduleShowInput struct {
	Day int `json:"day,omitempty"`
}

type rankedTask struct {
	TaskID  string  `json:"task_id"`
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
}

type scheduleBuildResult struct {
	Schedule *queries.ScheduleDTO `json:"schedule"`
	Ranked   []rankedTask         `json:"ranked"`
	Rejected []string             `json:"rejected,omitempty"`
}

func registerScheduleTools(srv *mcp.Server, deps ToolDependencies) {
	app := deps.App

	srv.Tool("schedule.build").
		Description("Rank open tasks and lay them out into daily study blocks; replaces the latest schedule").
		Handler(func(ctx context.Context, input scheduleBuildInput) (*scheduleBuildResult, error) {
			start, err := parseDate(input.StartDate, time.Time{})
			if err != nil {
				return nil, err
			}
			capacity, err := parseDuration(input.DailyCapacity)
			if err != nil {
				return nil, err
			}
			result, err := app.BuildScheduleHandler.Handle(ctx, commands.BuildScheduleCommand{
				StartDate:     start,
				DailyCapacity: capacity,
				Actor:         actor,
			})
			if err != nil {
				return nil, err
			}

			out := &scheduleBuildResult{
				Schedule: queries.ToDTO(result.Schedule),
				Ranked:   make([]rankedTask, 0, len(result.Ranked)),
			}
			for _, st := range result.Ranked {
				out.Ranked = append(out.Ranked, rankedTask{
					TaskID:  st.Task.ID().String(),
					Subject: st.Task.Subject(),
					Score:   st.Score,
				})
			}
			for _, r := range result.Rejected {
				out.Rejected = append(out.Rejected, r.Error())
			}
			return out, nil
		})

	srv.Tool("schedule.show").
		Description("Show the latest schedule, optionally one day (1-based)").
		Handler(func(ctx context.Context, input scheduleShowInput) (*queries.ScheduleDTO, error) {
			return app.GetScheduleHandler.Handle(ctx, queries.GetScheduleQuery{Day: input.Day})
		})

	srv.Tool("schedule.export").
		Description("Push the latest schedule's study blocks to the configured CalDAV calendar").
		Handler(func(ctx context.Context, _ emptyInput) (*commands.ExportScheduleResult, error) {
			return app.ExportScheduleHandler.Handle(ctx, commands.ExportScheduleCommand{})
		})
}
