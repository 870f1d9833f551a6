package runs

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"airecruiter-backend/internal/analysis"
	"airecruiter-backend/internal/export"
	"airecruiter-backend/internal/extract"
	"airecruiter-backend/internal/fanout"
	"airecruiter-backend/internal/shared/server/respond"
	"airecruiter-backend/internal/shared/util"
)

const maxUploadSize = 50 << 20 // 50MB across all resumes

// Handler wires HTTP handlers to the run service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches run routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.GET("/runs/:id", h.get)
	rg.GET("/runs/:id/export", h.export)
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	form, err := c.MultipartForm()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart form is required", nil)
		return
	}

	files := form.File["files[]"]
	if len(files) == 0 {
		files = form.File["files"]
	}
	if len(files) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "at least one resume file is required", nil)
		return
	}

	jobDescription, err := h.jobDescription(c, form)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	if strings.TrimSpace(jobDescription) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "job description is required", nil)
		return
	}

	resumes := make([]fanout.Resume, 0, len(files))
	for _, header := range files {
		name, err := util.SanitizeFileName(header.Filename)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		data, err := readUpload(header)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read "+name, nil)
			return
		}
		resumes = append(resumes, fanout.Resume{
			ID:       "res-" + uuid.NewString(),
			FileName: name,
			Data:     data,
		})
	}

	run, err := h.Svc.Analyze(c.Request.Context(), Input{
		JobDescription: jobDescription,
		QuestionBlock:  c.PostForm("question"),
		Resumes:        resumes,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoResumes), errors.Is(err, ErrNoJobDescription):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis run failed", util.SanitizeError(err))
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"runId":   run.ID,
		"summary": run.Summary(),
		"groups":  run.Groups,
	})
}

// jobDescription resolves the run's job description from the plain form field
// or, when absent, from an uploaded document.
func (h *Handler) jobDescription(c *gin.Context, form *multipart.Form) (string, error) {
	if text := c.PostForm("job_description"); strings.TrimSpace(text) != "" {
		return text, nil
	}
	headers := form.File["job_description_file"]
	if len(headers) == 0 {
		return "", nil
	}
	header := headers[0]
	data, err := readUpload(header)
	if err != nil {
		return "", errors.New("unable to read job description file")
	}
	text, err := extract.Text(data, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (h *Handler) get(c *gin.Context) {
	run, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch run", nil)
		return
	}
	respond.JSON(c, http.StatusOK, run)
}

func (h *Handler) export(c *gin.Context) {
	run, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "run not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch run", nil)
		return
	}

	var minScore *int
	if raw := c.Query("min_score"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "min_score must be an integer", nil)
			return
		}
		minScore = &n
	}

	groups := analysis.FilterByMinScore(run.Groups, minScore)
	name := export.FileName(time.Now())
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := export.Write(c.Writer, groups); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build spreadsheet", nil)
	}
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
