package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/DocPipeAPI/internal/adapter"
	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/domain/jobModel"
)

var supportedUploadExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
	".odt":  {},
	".rtf":  {},
	".txt":  {},
}

func isSupportedExtension(extension string) bool {
	_, ok := supportedUploadExtensions[extension]
	return ok
}

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func validateId(id string, traceId string) (result jobModel.Job, isFound bool) {
	if id == "" {
		logRH.Warn("Empty Job ID")
		return jobModel.Job{}, false
	}
	return GetJobStatus(id, traceId)
}

func validateContext(ctx context.Context) bool {
	logRH.With("traceId:", ctx.Value(config.TRACE_ID_KEY).(string))
	if ctx.Err() != nil {
		logRH.Warn("context error", ctx.Err())
		return false
	}

	select {
	case <-ctx.Done():
		logRH.Warn("context cancelled")
		return false
	default:
		return true

	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

// getTargetDirectory keeps every project's uploads in its own subdirectory.
func getTargetDirectory(projectId string) (string, string) {
	root, err := os.Getwd()
	if err != nil {
		return "", "Storage Error"
	}

	targetDir := filepath.Join(root, config.UploadDirName, projectId)
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}
