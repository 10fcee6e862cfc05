package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/DocPipeAPI/internal/adapter"
	"github.com/akolanti/DocPipeAPI/internal/adapter/utils"
	"github.com/akolanti/DocPipeAPI/internal/config"
	"github.com/akolanti/DocPipeAPI/internal/domain/docModel"
	"github.com/akolanti/DocPipeAPI/pkg/logger_i"
)

var logRH *logger_i.Logger

// newJobData carries what the queueing layer needs to build a jobModel.Job;
// handlers never construct Job structs directly.
type newJobData struct {
	id           string
	documentId   string
	projectId    string
	isPrimary    bool
	documentName string
	traceId      string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	return
}

// UploadDocumentHandler godoc
// @Summary      Upload a document for processing
// @Description  Receives a file via multipart/form-data, persists a pending document record, and queues a processing job.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        project_id     formData  string  true   "Project the document belongs to"
// @Param        document_type  formData  string  false  "Document type label (e.g. patent, prior_art)"
// @Param        is_primary     formData  bool    false  "Whether this is the project's primary document"
// @Param        document       formData  file    true   "The document file (pdf, docx, odt, rtf, txt)"
// @Success      202  {object}  api.InitJobResponse "Accepted - processing queued"
// @Failure      400  {object}  api.JobResponse "Missing fields, unsupported file type, or file too large"
// @Failure      500  {object}  api.JobResponse "Storage or write error"
// @Router       /documents/upload [post]
func UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadSizeBytes); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	projectId := r.FormValue("project_id")
	if projectId == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "project_id is required")
		return
	}
	documentType := r.FormValue("document_type")
	isPrimary := r.FormValue("is_primary") == "true"

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	extension := strings.ToLower(filepath.Ext(fileMetadata.Filename))
	if !isSupportedExtension(extension) {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Unsupported file type "+extension)
		return
	}

	targetDir, errString := getTargetDirectory(projectId)
	if errString != "" {
		logRH.Error("Couldn't get target directory :", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	documentId := utils.GetNewUUID()
	storedName := fmt.Sprintf("%d-%s%s", time.Now().UnixNano(), documentId, extension)
	storagePath := filepath.Join(targetDir, storedName)
	destinationFileWriter, err := os.Create(storagePath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, documentId, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	written, err := io.Copy(destinationFileWriter, fileReader)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, documentId, "Write error")
		return
	}

	document := docModel.Document{
		Id:               documentId,
		ProjectId:        projectId,
		Filename:         fileMetadata.Filename,
		FileType:         strings.TrimPrefix(extension, "."),
		FileSizeBytes:    written,
		StoragePath:      storagePath,
		DocumentType:     documentType,
		IsPrimary:        isPrimary,
		ProcessingStatus: docModel.StatusPending,
		UploadedAt:       time.Now().UTC(),
		Metadata: map[string]any{
			"is_primary":        isPrimary,
			"original_filename": fileMetadata.Filename,
		},
	}
	if err := handlerInstance.documents.SaveDocument(r.Context(), document); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, documentId, "Storage error")
		return
	}

	queueRun(r, w, document)
}

// ProcessDocumentHandler godoc
// @Summary      Re-run processing for an existing document
// @Description  Queues a new processing run for a stored document. Rejected while a run is already queued or executing.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      202  {object}  api.InitJobResponse "Accepted - processing queued"
// @Failure      404  {object}  api.JobResponse "Document not found"
// @Failure      409  {object}  api.JobResponse "A run is already active for this document"
// @Router       /documents/{id}/process [post]
func ProcessDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", r.RemoteAddr)
		return
	}

	documentId := utils.GetChiURLParam(r, "id")
	document, found := GetDocument(r.Context(), documentId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, documentId, "Document not found")
		return
	}

	queueRun(r, w, document)
}

// GetDocumentHandler godoc
// @Summary      Get a document record
// @Description  Returns the stored document with its processing status and metadata. Soft-deleted documents report not found.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.JobResponse "Document not found"
// @Router       /documents/{id} [get]
func GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	documentId := utils.GetChiURLParam(r, "id")
	document, found := GetDocument(r.Context(), documentId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, documentId, "Document not found")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentResponse(document))
}

// GetDocumentChunksHandler godoc
// @Summary      List a document's chunks
// @Description  Returns the stored chunks of a processed document, ordered by chunk index.
// @Tags         Documents
// @Produce      json
// @Param        id     path   string  true   "Document ID"
// @Param        limit  query  int     false  "Maximum number of chunks to return (default 100)"
// @Success      200  {object}  api.ChunkListResponse
// @Failure      400  {object}  api.JobResponse "Invalid limit"
// @Failure      404  {object}  api.JobResponse "Document not found"
// @Failure      500  {object}  api.JobResponse "Chunk store error"
// @Router       /documents/{id}/chunks [get]
func GetDocumentChunksHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	documentId := utils.GetChiURLParam(r, "id")
	if _, found := GetDocument(r.Context(), documentId); !found {
		WriteErrorResponse(w, http.StatusNotFound, documentId, "Document not found")
		return
	}

	limit := config.ChunkListDefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			WriteErrorResponse(w, http.StatusBadRequest, documentId, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	chunks, err := handlerInstance.chunks.ListByDocument(r.Context(), config.ChunkCollectionName, documentId, limit)
	if err != nil {
		logRH.Error("Chunk listing failed", "documentId", documentId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, documentId, "Could not read document chunks")
		return
	}

	writeJsonResponse(w, http.StatusOK, adapter.ToChunkListResponse(documentId, chunks))
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document
// @Description  Soft-deletes the document record and removes its chunks from the vector store.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      204  "Deleted"
// @Failure      404  {object}  api.JobResponse "Document not found"
// @Failure      500  {object}  api.JobResponse "Chunk cascade or storage error"
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	documentId := utils.GetChiURLParam(r, "id")
	document, found := GetDocument(r.Context(), documentId)
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, documentId, "Document not found")
		return
	}

	// Chunks first. If the cascade fails the record stays visible so the
	// delete can be retried; the reverse order would strand orphan vectors.
	if err := handlerInstance.chunks.DeleteByDocument(r.Context(), config.ChunkCollectionName, documentId); err != nil {
		logRH.Error("Chunk cascade failed", "documentId", documentId, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, documentId, "Could not delete document chunks")
		return
	}

	now := time.Now().UTC()
	document.DeletedAt = &now
	if err := handlerInstance.documents.SaveDocument(r.Context(), document); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, documentId, "Storage error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a processing job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID "
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		//use chi get the url id
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}

func queueRun(r *http.Request, w http.ResponseWriter, document docModel.Document) {
	newJob := newJobData{
		id:           utils.GetNewUUID(),
		documentId:   document.Id,
		projectId:    document.ProjectId,
		isPrimary:    document.IsPrimary,
		documentName: document.Filename,
		traceId:      r.Context().Value(config.TRACE_ID_KEY).(string),
	}
	if !CreateNewJob(newJob) {
		WriteErrorResponse(w, http.StatusConflict, document.Id, "Document already has an active processing run")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, document.Id))
}
