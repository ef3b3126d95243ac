package ui

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"autopipe/domain/core"
	"autopipe/domain/dataset"
	"autopipe/internal/errors"
	"autopipe/ports"
)

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDatasetUpload accepts a multipart upload with a "file" part.
func (a *App) handleDatasetUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	if err := r.ParseMultipartForm(a.maxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, errors.CodeInvalidInput,
			fmt.Sprintf("upload exceeds %d MB limit", a.maxUploadBytes>>20))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, "failed to read upload")
		return
	}

	userID := core.UserID(r.FormValue("user_id"))
	rec, err := a.service.UploadDataset(r.Context(), userID, header.Filename, data)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (a *App) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", 20)
	offset := intQuery(r, "offset", 0)
	records, err := a.service.ListDatasets(r.Context(), limit, offset)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if records == nil {
		records = []*dataset.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (a *App) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDatasetID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, err.Error())
		return
	}
	rec, err := a.service.GetDataset(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *App) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDatasetID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, err.Error())
		return
	}
	if err := a.service.DeleteDataset(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAnalyze profiles a dataset against the requested target column and
// returns the generated pipeline with its explanation.
func (a *App) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDatasetID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, err.Error())
		return
	}
	var body struct {
		TargetColumn string `json:"target_column"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, "invalid JSON body")
		return
	}
	if body.TargetColumn == "" {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, "target_column is required")
		return
	}

	result, err := a.service.AnalyzeDataset(r.Context(), id, body.TargetColumn)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleLatestPipeline(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDatasetID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, err.Error())
		return
	}
	rec, err := a.service.GetLatestPipeline(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *App) handlePreprocessPreview(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDatasetID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, err.Error())
		return
	}
	result, err := a.service.PreviewPreprocessing(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleGetPipeline(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParsePipelineID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, err.Error())
		return
	}
	rec, err := a.service.GetPipeline(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (a *App) handleExplanation(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParsePipelineID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, err.Error())
		return
	}
	narrative, err := a.service.ExplainPipeline(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, narrative)
}

// handleReport renders the Markdown explanation as a standalone HTML page.
func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParsePipelineID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	narrative, err := a.service.ExplainPipeline(r.Context(), id)
	if err != nil {
		http.Error(w, "pipeline not found", http.StatusNotFound)
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	body := markdown.ToHTML([]byte(narrative.Text), p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := reportTemplate.Execute(w, template.HTML(body)); err != nil {
		a.logger.Warn("failed to render report for pipeline %s: %v", id, err)
	}
}

// handleRecordRun stores metrics reported by an external trainer.
func (a *App) handleRecordRun(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParsePipelineID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, err.Error())
		return
	}
	var run ports.TrainingRun
	if err := json.NewDecoder(r.Body).Decode(&run); err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, "invalid JSON body")
		return
	}
	run.PipelineID = id
	if err := a.service.RecordTrainingRun(r.Context(), &run); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParsePipelineID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.CodeInvalidInput, err.Error())
		return
	}
	runs, err := a.service.GetTrainingRuns(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if runs == nil {
		runs = []*ports.TrainingRun{}
	}
	writeJSON(w, http.StatusOK, runs)
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Pipeline Report</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 760px; margin: 2rem auto; padding: 0 1rem; color: #1a1a2e; }
h2 { border-bottom: 2px solid #e0e0e0; padding-bottom: .3rem; }
code { background: #f4f4f4; padding: .1rem .3rem; border-radius: 3px; }
</style>
</head>
<body>{{.}}</body>
</html>
`))
