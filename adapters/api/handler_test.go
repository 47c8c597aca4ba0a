package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"anovalab/adapters/excel"
	"anovalab/app"
	"anovalab/domain/anova"
	"anovalab/domain/core"
	"anovalab/domain/experiment"
	"anovalab/internal"
	engine "anovalab/internal/anova"
	"anovalab/internal/testkit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, persistent bool) *gin.Engine {
	t.Helper()
	logger := internal.NewLoggerTo(&bytes.Buffer{}, internal.LogLevelError)
	analyzer := engine.NewAnalyzer(engine.NewEngine(engine.Options{}), 4, logger)

	var svc *app.AnalysisService
	if persistent {
		svc = app.NewAnalysisService(analyzer, testkit.NewInMemoryResultRepository(), logger)
	} else {
		svc = app.NewAnalysisService(analyzer, nil, logger)
	}
	return NewRouter(NewHandler(svc, excel.ReadOptions{}, 0.05, logger), logger)
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyze_JSONStudy(t *testing.T) {
	router := newTestRouter(t, true)

	w := postJSON(t, router, "/v1/anova", AnalyzeRequest{Source: "study", Observations: testkit.StudyObservations()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var run anova.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	assert.Equal(t, "study", run.Source)
	assert.Equal(t, 20, run.Observations)
	require.Len(t, run.Outcomes, 4)
	assert.InDelta(t, 76.531994, run.Outcomes[0].Result.Tutorial.F, 1e-3)

	w = get(router, "/v1/runs/"+run.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	var stored anova.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, run.ID, stored.ID)

	w = get(router, "/v1/runs?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), run.ID.String())
}

func TestAnalyze_SelectedMeasures(t *testing.T) {
	router := newTestRouter(t, false)

	w := postJSON(t, router, "/v1/anova?measure=rsvpTime", AnalyzeRequest{
		Measures:     []string{"2"},
		Observations: testkit.StudyObservations(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var run anova.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &run))
	require.Len(t, run.Outcomes, 2)
	assert.Equal(t, experiment.RSVP, run.Outcomes[0].Measure)
	assert.Equal(t, experiment.FindGame, run.Outcomes[1].Measure)
}

func TestAnalyze_CSVBodyAsText(t *testing.T) {
	router := newTestRouter(t, false)

	var body strings.Builder
	body.WriteString("subject,createGameTime,findGameTime,rsvpTime,updateProfileTime,filtersOn,tutorialGiven\n")
	for _, o := range testkit.StudyObservations() {
		fmt.Fprintf(&body, "%d,%g,%g,%g,%g,%t,%t\n", o.Subject, o.CreateGameTime, o.FindGameTime,
			o.RSVPTime, o.UpdateProfileTime, o.FiltersOn, o.TutorialGiven)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/anova?format=text", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", "text/csv")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "Two-way ANOVA Results for Task #1: Create Game:")
	assert.Contains(t, w.Body.String(), "- Main effect of Tutorial: SIGNIFICANT (p < 0.05)")
}

func TestAnalyze_Errors(t *testing.T) {
	router := newTestRouter(t, false)

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"empty dataset", "/v1/anova", AnalyzeRequest{}, http.StatusUnprocessableEntity, "EMPTY_DATASET"},
		{"unknown measure", "/v1/anova", AnalyzeRequest{Measures: []string{"typing"}, Observations: testkit.StudyObservations()}, http.StatusUnprocessableEntity, "INVALID_INPUT"},
		{"bad observation", "/v1/anova", AnalyzeRequest{Observations: []experiment.Observation{{Subject: 1}}}, http.StatusUnprocessableEntity, "MALFORMED_RECORD"},
		{"unknown format", "/v1/anova?format=pdf", AnalyzeRequest{Observations: testkit.StudyObservations()}, http.StatusUnprocessableEntity, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/anova", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyze_MalformedCSV(t *testing.T) {
	router := newTestRouter(t, false)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/anova", strings.NewReader("header\n1,x,2,3,4,yes,no\n"))
	req.Header.Set("Content-Type", "text/csv")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "MALFORMED_RECORD")
}

func TestGetRun(t *testing.T) {
	router := newTestRouter(t, true)

	w := get(router, "/v1/runs/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(router, "/v1/runs/"+core.NewRunID().String())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(newTestRouter(t, false), "/v1/runs/"+core.NewRunID().String())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, true)

	w := get(router, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	var health HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.Persistent)

	postJSON(t, router, "/v1/anova", AnalyzeRequest{Observations: testkit.StudyObservations()})

	w = get(router, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "anova_http_requests_total")
	assert.Contains(t, w.Body.String(), "anova_measure_outcomes_total")
}
