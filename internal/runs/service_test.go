package runs

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"airecruiter-backend/internal/fanout"
)

func newService(target string) (*Service, *MemoryRepo) {
	repo := NewMemoryRepo()
	return NewService(&fanout.Engine{Target: target, Timeout: 30 * time.Second}, repo), repo
}

func TestAnalyzeCountsFailuresAsData(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.FormValue("question") == "Broken question?" {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"message":"workflow crashed"}`)
			return
		}
		fmt.Fprint(w, `{"candidate_name":"Alice","resume_file":"alice.pdf","q1_answer":"yes"}`)
	}))
	defer upstream.Close()

	svc, _ := newService(upstream.URL)
	run, err := svc.Analyze(context.Background(), Input{
		JobDescription: "Go engineer",
		QuestionBlock:  "Good question?, Broken question?",
		Resumes:        []fanout.Resume{{ID: "r1", FileName: "alice.pdf", Data: []byte("x")}},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if run.SuccessCount != 1 || run.FailureCount != 1 {
		t.Fatalf("expected 1 success and 1 failure, got %d/%d", run.SuccessCount, run.FailureCount)
	}
	var failed int
	for _, rec := range run.Records {
		if rec.Error != "" {
			failed++
			if rec.Error != "workflow crashed" {
				t.Fatalf("unexpected error message: %q", rec.Error)
			}
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly one failed record, got %d", failed)
	}
}

func TestAnalyzeBackfillsQuestionFromRequest(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidate_name":"Alice","resume_file":"alice.pdf","q1_answer":"Score: 90"}`)
	}))
	defer upstream.Close()

	svc, _ := newService(upstream.URL)
	run, err := svc.Analyze(context.Background(), Input{
		JobDescription: "Go engineer",
		QuestionBlock:  "What is the candidate score?",
		Resumes:        []fanout.Resume{{ID: "r1", FileName: "alice.pdf", Data: []byte("x")}},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	rec := run.Records[0]
	if rec.Question != "What is the candidate score?" {
		t.Fatalf("question not backfilled: %q", rec.Question)
	}
	if rec.Score == nil || *rec.Score != 90 {
		t.Fatalf("expected score 90, got %v", rec.Score)
	}
}

func TestAnalyzeDefaultsToOneUploadPerResume(t *testing.T) {
	var calls int
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"candidate_name":"Alice","resume_file":"alice.pdf","q1_answer":"ok"}`)
	}))
	defer upstream.Close()

	svc, _ := newService(upstream.URL)
	run, err := svc.Analyze(context.Background(), Input{
		JobDescription: "Go engineer",
		Resumes:        []fanout.Resume{{ID: "r1", FileName: "alice.pdf", Data: []byte("x")}},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one upload, got %d", calls)
	}
	if run.QuestionCount != 1 {
		t.Fatalf("expected question count 1, got %d", run.QuestionCount)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	svc, _ := newService("http://unused.invalid")

	if _, err := svc.Analyze(context.Background(), Input{JobDescription: "jd"}); err != ErrNoResumes {
		t.Fatalf("expected ErrNoResumes, got %v", err)
	}
	in := Input{Resumes: []fanout.Resume{{ID: "r1", FileName: "a.pdf", Data: []byte("x")}}}
	if _, err := svc.Analyze(context.Background(), in); err != ErrNoJobDescription {
		t.Fatalf("expected ErrNoJobDescription, got %v", err)
	}
}

func TestSelectGroups(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		name := r.MultipartForm.File["files[]"][0].Filename
		fmt.Fprintf(w, `{"resume_file":%q,"q1_answer":"ok"}`, name)
	}))
	defer upstream.Close()

	svc, _ := newService(upstream.URL)
	run, err := svc.Analyze(context.Background(), Input{
		JobDescription: "Go engineer",
		QuestionBlock:  "Anything?",
		Resumes: []fanout.Resume{
			{ID: "r1", FileName: "alice.pdf", Data: []byte("x")},
			{ID: "r2", FileName: "bob.pdf", Data: []byte("y")},
		},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	all, err := svc.SelectGroups(context.Background(), run.ID, nil)
	if err != nil {
		t.Fatalf("select all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(all))
	}

	some, err := svc.SelectGroups(context.Background(), run.ID, []string{"  Bob  "})
	if err != nil {
		t.Fatalf("select bob: %v", err)
	}
	if len(some) != 1 || some[0].Key != "bob" {
		t.Fatalf("expected only bob, got %+v", some)
	}

	if _, err := svc.SelectGroups(context.Background(), "missing", nil); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
