// Package export flattens resume groups into the spreadsheet report.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"airecruiter-backend/internal/analysis"
)

const sheetName = "Response Data"

var headers = []string{"Candidate Name", "Resume File", "Question/Criteria", "Score/Answer", "Explanation"}

// Row is one flattened (group x question entry) line of the report.
type Row struct {
	CandidateName string
	ResumeFile    string
	Question      string
	ScoreOrAnswer string
	Explanation   string
}

// Rows flattens every group into one row per question entry. Object values
// are stringified; when an answer carries an explicit "Score:" match only the
// number is exported, not the surrounding free text.
func Rows(groups []analysis.Group) []Row {
	var out []Row
	for _, g := range groups {
		name := g.ResumeName
		file := stripExtension(g.ResumeFile)
		for _, q := range g.Questions {
			out = append(out, Row{
				CandidateName: name,
				ResumeFile:    file,
				Question:      q.Question,
				ScoreOrAnswer: scoreOrAnswer(q),
				Explanation:   analysis.AnswerText(q.Explanation),
			})
		}
	}
	return out
}

func scoreOrAnswer(q analysis.QuestionEntry) string {
	text := analysis.AnswerText(q.Answer)
	if score := analysis.ExplicitScoreText(text); score != "" {
		return score
	}
	if text == "" && q.Error != "" {
		return "Error: " + q.Error
	}
	return text
}

func stripExtension(name string) string {
	name = strings.TrimSpace(name)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx]
	}
	return name
}

// Write renders the report workbook for the given groups to w.
func Write(w io.Writer, groups []analysis.Group) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheetName, "A", "B", 25)
	_ = f.SetColWidth(sheetName, "C", "C", 40)
	_ = f.SetColWidth(sheetName, "D", "E", 60)

	for i, row := range Rows(groups) {
		values := []string{row.CandidateName, row.ResumeFile, row.Question, row.ScoreOrAnswer, row.Explanation}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// FileName builds the report file name, suffixed with an ISO-derived
// timestamp with ":" and "." flattened out.
func FileName(now time.Time) string {
	ts := now.UTC().Format("2006-01-02T15-04-05")
	return "webhook-response-" + ts + ".xlsx"
}
