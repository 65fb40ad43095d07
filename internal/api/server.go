package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"docqa/internal/models"
	"docqa/internal/rag"
)

const maxUploadBodySize = 50 << 20 // 50MB

// Ingestor runs the ingestion path for one file.
type Ingestor interface {
	IndexDocument(ctx context.Context, fileName string, data []byte) (int, error)
}

// Asker answers one question against the index.
type Asker interface {
	Ask(ctx context.Context, question, sessionID string, history []models.Turn) rag.Result
}

// Deleter removes every indexed vector for a file.
type Deleter interface {
	DeleteFile(ctx context.Context, fileName string) bool
}

type AppDeps struct {
	Ingestor Ingestor
	Engine   Asker
	Deleter  Deleter
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Post("/upload", handleUpload(deps))
	r.Post("/ask", handleAsk(deps))
	r.Post("/delete", handleDelete(deps))

	return r
}

type uploadResult struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Chunks  int    `json:"chunks,omitempty"`
	Error   string `json:"error,omitempty"`
}

// handleUpload ingests each uploaded file independently: one file's
// failure produces a failure record but never blocks the rest.
func handleUpload(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodySize)
		if err := r.ParseMultipartForm(maxUploadBodySize); err != nil {
			httpError(w, http.StatusBadRequest, "invalid multipart body: %v", err)
			return
		}

		files := r.MultipartForm.File["files"]
		if len(files) == 0 {
			httpError(w, http.StatusBadRequest, "at least one file is required")
			return
		}

		results := make([]uploadResult, 0, len(files))
		for _, hdr := range files {
			if hdr.Filename == "" {
				continue
			}
			data, err := readUpload(hdr)
			if err == nil {
				var chunks int
				chunks, err = deps.Ingestor.IndexDocument(r.Context(), hdr.Filename, data)
				if err == nil {
					results = append(results, uploadResult{
						Message: fmt.Sprintf("Embedded chunks from '%s' successfully.", hdr.Filename),
						File:    hdr.Filename,
						Chunks:  chunks,
					})
					continue
				}
			}
			log.Error().Err(err).Str("file", hdr.Filename).Msg("Error ingesting file")
			results = append(results, uploadResult{
				Message: fmt.Sprintf("Failed to embed chunks from '%s'", hdr.Filename),
				Error:   err.Error(),
			})
		}

		writeJSON(w, results)
	}
}

func handleAsk(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		question := r.FormValue("question")
		if question == "" {
			httpError(w, http.StatusBadRequest, "question is required")
			return
		}

		// A malformed history is rejected before any model or store call.
		var history []models.Turn
		if raw := r.FormValue("conversation_history"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &history); err != nil {
				clientErr := &models.ClientInputError{
					Msg: fmt.Sprintf("Invalid conversation_history format: %v", err),
				}
				httpError(w, http.StatusBadRequest, "%s", clientErr.Error())
				return
			}
			if history == nil {
				// "null" decodes without error but is not a list
				httpError(w, http.StatusBadRequest, "Invalid conversation_history format: history should be a list of messages")
				return
			}
		}

		result := deps.Engine.Ask(r.Context(), question, r.FormValue("session_id"), history)
		writeJSON(w, result)
	}
}

func handleDelete(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileName := r.FormValue("filename")
		if fileName == "" {
			httpError(w, http.StatusBadRequest, "filename is required")
			return
		}

		if !deps.Deleter.DeleteFile(r.Context(), fileName) {
			log.Warn().Str("file", fileName).Msg("Delete was a no-op")
		}
		writeJSON(w, map[string]string{
			"message": fmt.Sprintf("Deleted vectors for file '%s'", fileName),
		})
	}
}

func readUpload(hdr *multipart.FileHeader) ([]byte, error) {
	f, err := hdr.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, format string, args ...interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": fmt.Sprintf(format, args...),
	})
}
