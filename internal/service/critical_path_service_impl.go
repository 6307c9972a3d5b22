package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/parada/internal/app"
	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/importer"
	"github.com/alexanderramin/parada/internal/repository"
	"github.com/alexanderramin/parada/internal/scheduler"
)

const hoursPerDay = 8

type criticalPathService struct {
	snapshots repository.SnapshotRepo
	observer  UseCaseObserver
}

func NewCriticalPathService(snapshots repository.SnapshotRepo, observers ...UseCaseObserver) CriticalPathService {
	return &criticalPathService{
		snapshots: snapshots,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *criticalPathService) CriticalPath(ctx context.Context, req app.CriticalPathRequest) (resp *app.CriticalPathResponse, err error) {
	format := req.Format
	if format == "" {
		format = domain.FormatPreparation
	}
	fields := map[string]any{"format": string(format)}
	defer observe(ctx, s.observer, "critical-path", fields, &err)()

	if _, err = app.ParseFormat(string(format)); err != nil {
		return nil, err
	}
	snap, err := latestOrNil(ctx, s.snapshots, format)
	if err != nil {
		return nil, err
	}
	if snap == nil || snap.Schedule == nil {
		return nil, noData(format)
	}

	tasks, warnings := tasksFromRecords(snap.Schedule.Records)
	cp, err := scheduler.Analyze(tasks)
	if err != nil {
		return nil, fmt.Errorf("analysing %s schedule: %w", format, err)
	}
	for _, ref := range cp.MissingRefs {
		warnings = append(warnings, "predecessor not found among leaf tasks: "+ref)
	}

	resp = &app.CriticalPathResponse{
		Format:       format,
		SnapshotID:   snap.ID,
		ProjectHours: cp.ProjectHours,
		ProjectDays:  cp.ProjectHours / hoursPerDay,
		Path:         cp.Path,
		Tasks:        cp.Tasks,
		Warnings:     warnings,
	}
	if req.OnlyCritical {
		resp.Tasks = make([]scheduler.TaskTiming, 0, len(cp.Path))
		for _, t := range cp.Tasks {
			if t.Critical {
				resp.Tasks = append(resp.Tasks, t)
			}
		}
	}
	fields["tasks"] = len(cp.Tasks)
	fields["critical"] = len(cp.Path)
	return resp, nil
}

// tasksFromRecords keeps leaf records only; summary rows roll up their
// children's span and would otherwise dominate the network.
func tasksFromRecords(records []domain.ScheduleRecord) ([]scheduler.Task, []string) {
	var (
		tasks    []scheduler.Task
		warnings []string
	)
	for i, rec := range records {
		if i+1 < len(records) && records[i+1].Level > rec.Level {
			continue
		}
		t := scheduler.Task{ID: rec.ID, Name: rec.DisplayName()}
		if d, ok := importer.ParseDuration(rec.Duration); ok {
			t.Hours = d.Hours()
		} else if rec.Duration != "" {
			warnings = append(warnings, fmt.Sprintf("task %s: unreadable duration %q, counted as zero", rec.ID, rec.Duration))
		}
		for _, ref := range rec.PredecessorRefs() {
			if id, ok := scheduler.PredecessorID(ref); ok {
				t.Predecessors = append(t.Predecessors, id)
			}
		}
		tasks = append(tasks, t)
	}
	return tasks, warnings
}
