package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"anovalab/adapters/excel"
	"anovalab/adapters/report"
	"anovalab/app"
	"anovalab/domain/core"
	"anovalab/domain/experiment"
	"anovalab/internal"
	"anovalab/internal/config"
	"anovalab/internal/errors"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes bounds CSV/XLSX request bodies
const maxUploadBytes = 32 << 20

var contentTypes = map[string]string{
	config.FormatText:     "text/plain; charset=utf-8",
	config.FormatMarkdown: "text/markdown; charset=utf-8",
	config.FormatHTML:     "text/html; charset=utf-8",
}

// Handler serves the analysis endpoints
type Handler struct {
	service  *app.AnalysisService
	readOpts excel.ReadOptions
	alpha    float64
	logger   *internal.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *app.AnalysisService, readOpts excel.ReadOptions, alpha float64, logger *internal.Logger) *Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Handler{
		service:  service,
		readOpts: readOpts,
		alpha:    alpha,
		logger:   logger.With("api"),
	}
}

// Analyze runs the ANOVA over the request body. JSON bodies carry
// observations; text/csv and xlsx bodies are parsed as study files.
// ?format=text|markdown|html returns a rendered report instead of JSON.
func (h *Handler) Analyze(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()

	format := strings.ToLower(c.DefaultQuery("format", config.FormatJSON))
	var renderer report.Renderer
	if format != config.FormatJSON {
		r, err := report.New(format, report.Options{Alpha: h.alpha})
		if err != nil {
			h.fail(c, errors.InvalidInput(err.Error()))
			return
		}
		renderer = r
	}

	var (
		source       = c.DefaultQuery("source", "upload")
		measureKeys  = c.QueryArray("measure")
		observations []experiment.Observation
		input        = "json"
	)

	if upload, ok := excel.FormatForContentType(c.ContentType()); ok {
		input = string(upload)
		body := http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
		parsed, err := excel.Read(ctx, body, upload, h.readOpts, h.logger)
		if err != nil {
			if !core.IsInputError(err) {
				err = errors.WithCode(errors.CodeInvalidInput, err)
			}
			h.fail(c, errors.Wrap(err, "failed to parse upload"))
			return
		}
		observations = parsed
	} else {
		var req AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error(), Code: errors.CodeInvalidInput})
			return
		}
		for _, o := range req.Observations {
			if err := o.Validate(); err != nil {
				h.fail(c, errors.Wrap(err, "invalid observation"))
				return
			}
		}
		if req.Source != "" {
			source = req.Source
		}
		measureKeys = append(measureKeys, req.Measures...)
		observations = req.Observations
	}

	measures := make([]experiment.Measure, 0, len(measureKeys))
	for _, key := range measureKeys {
		m, err := experiment.ParseMeasure(key)
		if err != nil {
			h.fail(c, errors.Wrap(err, "invalid measure"))
			return
		}
		measures = append(measures, m)
	}

	run, err := h.service.Analyze(ctx, source, observations, measures...)
	if run == nil {
		h.fail(c, err)
		return
	}
	if err != nil {
		// the analysis itself completed; only storing it failed
		h.logger.Warn("run %s not stored: %v", run.ID, err)
		c.Header("X-Run-Stored", "false")
	}

	analysisDuration.WithLabelValues(input).Observe(time.Since(start).Seconds())
	datasetObservations.Observe(float64(run.Observations))
	for _, o := range run.Outcomes {
		result := "ok"
		if o.Err != nil {
			result = "failed"
		}
		measureOutcomes.WithLabelValues(o.Measure.Key(), result).Inc()
	}

	if renderer == nil {
		c.JSON(http.StatusOK, run)
		return
	}
	var buf bytes.Buffer
	if err := renderer.RenderRun(&buf, run); err != nil {
		h.fail(c, errors.Wrap(err, "failed to render report"))
		return
	}
	c.Data(http.StatusOK, contentTypes[format], buf.Bytes())
}

// GetRun returns a stored run
func (h *Handler) GetRun(c *gin.Context) {
	id, err := core.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid run id", Code: errors.CodeInvalidInput})
		return
	}

	run, err := h.service.GetRun(c.Request.Context(), core.RunID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// ListRuns returns the most recent runs
func (h *Handler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit", Code: errors.CodeInvalidInput})
		return
	}

	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Persistent: h.service.Persistent()})
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		h.logger.Debug("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}
