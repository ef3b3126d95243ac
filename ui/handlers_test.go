package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"autopipe/adapters/crypt"
	"autopipe/adapters/filestore"
	"autopipe/adapters/narrative/heuristic"
	"autopipe/app"
	"autopipe/domain/dataset"
	"autopipe/domain/pipeline"
	"autopipe/internal/testkit"
)

const handlerCSV = `age,income,city,target
25,50000,austin,yes
31,62000,boston,no
47,,austin,yes
52,88000,chicago,no
39,71000,boston,yes
28,45000,austin,no
`

func newTestApp(t *testing.T, apiKey string) *App {
	t.Helper()
	enc, err := crypt.NewEncryptor("test-master-key")
	if err != nil {
		t.Fatal(err)
	}
	files, err := filestore.NewLocalStore(t.TempDir(), enc)
	if err != nil {
		t.Fatal(err)
	}
	service := app.NewAnalysisService(app.AnalysisServiceDeps{
		Datasets:      testkit.NewInMemoryDatasetRepository(),
		Pipelines:     testkit.NewInMemoryPipelineRepository(),
		Metrics:       testkit.NewInMemoryMetricsRepository(),
		Files:         files,
		Narrative:     heuristic.NewExplainer(),
		MaxConcurrent: 2,
	})
	return NewApp(service, Config{APIKey: apiKey, MaxUploadMB: 4})
}

func uploadCSV(t *testing.T, a *App, csv string) dataset.Record {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "data.csv")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(csv))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var rec dataset.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	return rec
}

func analyze(t *testing.T, a *App, datasetID, target string) app.AnalysisResult {
	t.Helper()
	body := fmt.Sprintf(`{"target_column":%q}`, target)
	req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+datasetID+"/analyze", strings.NewReader(body))
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("analyze status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var result app.AnalysisResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	return result
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, "")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestUploadAnalyzeFetchFlow(t *testing.T) {
	a := newTestApp(t, "")
	rec := uploadCSV(t, a, handlerCSV)
	if rec.RowCount != 6 {
		t.Errorf("row count = %d, want 6", rec.RowCount)
	}

	result := analyze(t, a, rec.ID.String(), "target")
	if result.Tier != 1 {
		t.Errorf("tier = %d, want 1", result.Tier)
	}

	// Latest pipeline for the dataset matches the analysis result.
	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+rec.ID.String()+"/pipeline", nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("latest pipeline status = %d", rr.Code)
	}
	var latest pipeline.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &latest); err != nil {
		t.Fatal(err)
	}
	if latest.ID != result.Pipeline.ID {
		t.Errorf("latest = %s, want %s", latest.ID, result.Pipeline.ID)
	}

	// Explanation endpoint returns the heuristic narrative.
	req = httptest.NewRequest(http.MethodGet, "/api/pipelines/"+latest.ID.String()+"/explanation", nil)
	rr = httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("explanation status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Pipeline Generation Report") {
		t.Error("explanation missing report header")
	}
}

func TestReportRendersHTML(t *testing.T) {
	a := newTestApp(t, "")
	rec := uploadCSV(t, a, handlerCSV)
	result := analyze(t, a, rec.ID.String(), "target")

	req := httptest.NewRequest(http.MethodGet, "/pipelines/"+result.Pipeline.ID.String()+"/report", nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("report status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %s", ct)
	}
	if !strings.Contains(rr.Body.String(), "<h2") {
		t.Error("report body has no rendered heading")
	}
}

func TestAnalyzeValidation(t *testing.T) {
	a := newTestApp(t, "")
	rec := uploadCSV(t, a, handlerCSV)

	cases := map[string]string{
		"missing target": `{}`,
		"bad json":       `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/datasets/"+rec.ID.String()+"/analyze", strings.NewReader(body))
			rr := httptest.NewRecorder()
			a.Router().ServeHTTP(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestUnknownDatasetReturns404(t *testing.T) {
	a := newTestApp(t, "")
	req := httptest.NewRequest(http.MethodGet, "/api/datasets/no-such-id", nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestAPIKeyEnforcement(t *testing.T) {
	a := newTestApp(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("without key: status = %d, want 401", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	req.Header.Set("X-API-Key", "secret")
	rr = httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("with key: status = %d, want 200", rr.Code)
	}
}

func TestRecordAndListRuns(t *testing.T) {
	a := newTestApp(t, "")
	rec := uploadCSV(t, a, handlerCSV)
	result := analyze(t, a, rec.ID.String(), "target")

	runBody := `{"results":{"RandomForest":{"name":"RandomForest","metrics":{"accuracy":0.91}}},"best_model":"RandomForest","started_at":"2026-08-29T10:00:00Z","finished_at":"2026-08-29T10:05:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/pipelines/"+result.Pipeline.ID.String()+"/runs", strings.NewReader(runBody))
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("record run status = %d, body = %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/pipelines/"+result.Pipeline.ID.String()+"/runs", nil)
	rr = httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("list runs status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "RandomForest") {
		t.Error("recorded run not returned")
	}
}

func TestPreprocessPreview(t *testing.T) {
	a := newTestApp(t, "")
	rec := uploadCSV(t, a, handlerCSV)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets/"+rec.ID.String()+"/preprocess", nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var result struct {
		Rows  int `json:"rows"`
		Steps []struct {
			Column    string `json:"column"`
			Operation string `json:"operation"`
		} `json:"steps"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Rows != 6 {
		t.Errorf("rows = %d, want 6", result.Rows)
	}
	if len(result.Steps) != 1 || result.Steps[0].Operation != "impute" || result.Steps[0].Column != "income" {
		t.Errorf("steps = %+v, want one impute step for income", result.Steps)
	}
}

func TestDeleteDataset(t *testing.T) {
	a := newTestApp(t, "")
	rec := uploadCSV(t, a, handlerCSV)

	req := httptest.NewRequest(http.MethodDelete, "/api/datasets/"+rec.ID.String(), nil)
	rr := httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/datasets/"+rec.ID.String(), nil)
	rr = httptest.NewRecorder()
	a.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", rr.Code)
	}
}
