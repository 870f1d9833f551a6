package runs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"airecruiter-backend/internal/analysis"
	"airecruiter-backend/internal/fanout"
	"airecruiter-backend/internal/questions"
	"airecruiter-backend/internal/shared/telemetry"
)

var (
	// ErrNoResumes is returned when a run is requested without any resume.
	ErrNoResumes = errors.New("at least one resume is required")
	// ErrNoJobDescription is returned when the job description is empty.
	ErrNoJobDescription = errors.New("job description is required")
)

// Input carries everything one analysis run needs.
type Input struct {
	JobDescription string
	QuestionBlock  string
	Resumes        []fanout.Resume
}

// Service runs the full pipeline and stores the resulting snapshot.
type Service struct {
	engine *fanout.Engine
	repo   Repo
}

// NewService constructs a Service.
func NewService(engine *fanout.Engine, repo Repo) *Service {
	return &Service{engine: engine, repo: repo}
}

// Analyze validates the input, fans every (resume, question) pair out to the
// workflow engine one request at a time, normalizes and scores each answer,
// groups the records by candidate identity, and stores the snapshot.
func (s *Service) Analyze(ctx context.Context, in Input) (Run, error) {
	if len(in.Resumes) == 0 {
		return Run{}, ErrNoResumes
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		return Run{}, ErrNoJobDescription
	}

	qs := questions.Parse(in.QuestionBlock)
	if len(qs) == 0 {
		// A run with no custom questions still sends one upload per resume
		// so the engine produces its default evaluation.
		qs = []string{""}
	}

	total := len(in.Resumes) * len(qs)
	records := make([]analysis.Record, 0, total)
	succeeded, failed := 0, 0

	done := 0
	for _, resume := range in.Resumes {
		results := s.engine.Run(ctx, resume, in.JobDescription, qs, done, total)
		done += len(qs)

		meta := analysis.ResumeMeta{ID: resume.ID, FileName: resume.FileName}
		for _, res := range results {
			rec := analysis.Normalize(res.Payload, meta)
			if rec.Question == "" && res.Question != "" {
				rec.Question = res.Question
				if rec.Q1Question == "" {
					rec.Q1Question = res.Question
				}
			}
			if rec.Score == nil {
				question := res.Question
				if question == "" {
					question = rec.Question
				}
				rec.Score = analysis.ExtractScore(rec.Answer, question)
			}
			if rec.Error != "" {
				failed++
			} else {
				succeeded++
			}
			records = append(records, rec)
		}
	}

	run := Run{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		JobDescription: in.JobDescription,
		ResumeCount:    len(in.Resumes),
		QuestionCount:  len(qs),
		SuccessCount:   succeeded,
		FailureCount:   failed,
		Records:        records,
		Groups:         analysis.GroupRecords(records),
	}
	if err := s.repo.Create(ctx, run); err != nil {
		return Run{}, err
	}

	telemetry.Info("runs.completed", map[string]any{
		"run_id":    run.ID,
		"resumes":   run.ResumeCount,
		"questions": run.QuestionCount,
		"succeeded": succeeded,
		"failed":    failed,
	})
	return run, nil
}

// Get returns a stored run snapshot.
func (s *Service) Get(ctx context.Context, id string) (Run, error) {
	return s.repo.GetByID(ctx, id)
}

// SelectGroups returns the run's candidate groups, restricted to the given
// identity keys. An empty key list selects every group.
func (s *Service) SelectGroups(ctx context.Context, runID string, keys []string) ([]analysis.Group, error) {
	run, err := s.repo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return run.Groups, nil
	}
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[strings.ToLower(strings.TrimSpace(k))] = true
	}
	var out []analysis.Group
	for _, g := range run.Groups {
		if wanted[g.Key] {
			out = append(out, g)
		}
	}
	return out, nil
}
