// Command analyze runs one analysis batch from the command line: it fans a
// set of resume files and a question block out to the workflow engine, groups
// and scores the answers, and writes the result spreadsheet.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"airecruiter-backend/internal/analysis"
	"airecruiter-backend/internal/export"
	"airecruiter-backend/internal/extract"
	"airecruiter-backend/internal/fanout"
	"airecruiter-backend/internal/runs"
	"airecruiter-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	resumeDir := flag.String("resumes", "", "Directory of resume files, or a single file path")
	jdPath := flag.String("jd", "", "Path to job description file")
	jdText := flag.String("jd-text", "", "Job description text (overrides -jd)")
	questionsPath := flag.String("questions", "", "Path to question block file (optional)")
	questionText := flag.String("question", "", "Question block text (overrides -questions)")
	minScore := flag.Int("min-score", -1, "Only export candidates at or above this score (-1 keeps all)")
	outPath := flag.String("out", "", "Spreadsheet output path (default: timestamped name in cwd)")
	target := flag.String("webhook", cfg.UpstreamWebhookURL, "Workflow engine webhook URL")
	flag.Parse()

	if strings.TrimSpace(*target) == "" {
		exitErr("webhook URL is required (flag -webhook or UPSTREAM_WEBHOOK_URL)")
	}

	resumes, err := loadResumes(*resumeDir)
	if err != nil {
		exitErr(err.Error())
	}

	jobDescription := *jdText
	if jobDescription == "" && strings.TrimSpace(*jdPath) != "" {
		data, err := os.ReadFile(*jdPath)
		if err != nil {
			exitErr(fmt.Sprintf("read job description: %v", err))
		}
		text, err := extract.Text(data, "", filepath.Base(*jdPath))
		if err != nil {
			exitErr(fmt.Sprintf("extract job description: %v", err))
		}
		jobDescription = text
	}

	questionBlock := *questionText
	if questionBlock == "" && strings.TrimSpace(*questionsPath) != "" {
		data, err := os.ReadFile(*questionsPath)
		if err != nil {
			exitErr(fmt.Sprintf("read questions: %v", err))
		}
		questionBlock = string(data)
	}

	engine := &fanout.Engine{
		Target:  *target,
		Timeout: cfg.UploadTimeout,
		OnProgress: func(p fanout.Progress) {
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", p.Done, p.Total, p.Resume)
		},
	}
	svc := runs.NewService(engine, runs.NewMemoryRepo())

	run, err := svc.Analyze(context.Background(), runs.Input{
		JobDescription: jobDescription,
		QuestionBlock:  questionBlock,
		Resumes:        resumes,
	})
	if err != nil {
		exitErr(err.Error())
	}

	summary := run.Summary()
	fmt.Fprintf(os.Stderr, "processed %d answers (%d ok, %d failed) across %d candidates\n",
		summary.Processed, summary.Succeeded, summary.Failed, len(run.Groups))

	groups := run.Groups
	if *minScore >= 0 {
		groups = analysis.FilterByMinScore(groups, minScore)
		fmt.Fprintf(os.Stderr, "%d candidates at or above score %d\n", len(groups), *minScore)
	}

	name := *outPath
	if name == "" {
		name = export.FileName(time.Now())
	}
	f, err := os.Create(name)
	if err != nil {
		exitErr(fmt.Sprintf("create output: %v", err))
	}
	defer f.Close()

	if err := export.Write(f, groups); err != nil {
		exitErr(fmt.Sprintf("write spreadsheet: %v", err))
	}
	fmt.Println(name)
}

func loadResumes(path string) ([]fanout.Resume, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("resume path is required (flag -resumes)")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat resumes: %w", err)
	}

	var files []string
	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read resume dir: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(entry.Name())) {
			case ".pdf", ".docx", ".doc", ".txt":
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	} else {
		files = []string{path}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no resume files found in %s", path)
	}

	resumes := make([]fanout.Resume, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		resumes = append(resumes, fanout.Resume{
			ID:       "res-" + uuid.NewString(),
			FileName: filepath.Base(file),
			Data:     data,
		})
	}
	return resumes, nil
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, "error: "+msg)
	os.Exit(1)
}
