package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/schardosin/docqa/pkg/document"
	"github.com/schardosin/docqa/pkg/knowledge"
)

// minTextLength is the shortest extracted text accepted as a document
const minTextLength = 10

// Responder produces an answer for a question about a knowledge base
type Responder interface {
	GenerateResponse(ctx context.Context, query string, kb *knowledge.Base) (string, error)
}

// UploadResponse is the response for POST /upload
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Chunks   int    `json:"chunks"`
	Preview  string `json:"preview"`
}

// ChatRequest is the request body for POST /chat
type ChatRequest struct {
	Message *string `json:"message"`
}

// ChatResponse is the response for POST /chat
type ChatResponse struct {
	Response string `json:"response"`
	Source   string `json:"source"`
}

// StatusResponse is the response for GET /status
type StatusResponse struct {
	HasDocument bool   `json:"has_document"`
	Filename    string `json:"filename,omitempty"`
	Chunks      int    `json:"chunks,omitempty"`
}

type Handler struct {
	processor      *document.Processor
	store          *knowledge.Store
	responder      Responder
	uploadDir      string
	maxUploadBytes int64
}

func NewHandler(processor *document.Processor, store *knowledge.Store, responder Responder, uploadDir string, maxUploadBytes int64) (*Handler, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Handler{
		processor:      processor,
		store:          store,
		responder:      responder,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// HealthHandler handles GET /health
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// UploadHandler handles POST /upload
func (h *Handler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}
	if !document.IsSupported(header.Filename) {
		writeError(w, http.StatusBadRequest, "Invalid file type. Only PDF, TXT, MD and HTML allowed")
		return
	}

	filename := SecureFilename(header.Filename)
	if filename == "" || !document.IsSupported(filename) {
		writeError(w, http.StatusBadRequest, "Invalid file name")
		return
	}

	resp, status, err := h.ingest(file, filename)
	if err != nil {
		if status == http.StatusInternalServerError {
			log.Printf("upload of %s failed: %v", filename, err)
			writeError(w, status, "Error processing file: "+err.Error())
			return
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ingest saves the upload, extracts and chunks it, and makes it the current
// knowledge base. The saved upload is always removed.
func (h *Handler) ingest(src io.Reader, filename string) (*UploadResponse, int, error) {
	path := filepath.Join(h.uploadDir, filename)
	dst, err := os.Create(path)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	defer os.Remove(path)

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return nil, http.StatusInternalServerError, err
	}
	if err := dst.Close(); err != nil {
		return nil, http.StatusInternalServerError, err
	}

	text, err := h.processor.ExtractText(path)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if len(strings.TrimSpace(text)) < minTextLength {
		return nil, http.StatusBadRequest, errors.New("Could not extract text from file or file is too short")
	}

	chunks := h.processor.ChunkText(text)
	kb := knowledge.NewBase(filename, chunks)
	if _, err := h.store.Save(kb); err != nil {
		return nil, http.StatusInternalServerError, err
	}

	log.Printf("processed %s into %d chunks", filename, len(chunks))

	return &UploadResponse{
		Message:  "File processed successfully",
		Filename: filename,
		Chunks:   len(chunks),
		Preview:  preview(text, 200),
	}, http.StatusOK, nil
}

func preview(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}

// ChatHandler handles POST /chat
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	kb := h.store.Current()
	if kb == nil {
		writeError(w, http.StatusBadRequest, "No document uploaded. Please upload a document first.")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == nil {
		writeError(w, http.StatusBadRequest, "No message provided")
		return
	}
	if strings.TrimSpace(*req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}

	answer, err := h.responder.GenerateResponse(r.Context(), *req.Message, kb)
	if err != nil {
		log.Printf("chat failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Error generating response: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: answer, Source: kb.Filename})
}

// ResetHandler handles POST /reset
func (h *Handler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Knowledge base reset successfully"})
}

// StatusHandler handles GET /status
func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	kb := h.store.Current()
	if kb == nil {
		writeJSON(w, http.StatusOK, StatusResponse{HasDocument: false})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{
		HasDocument: true,
		Filename:    kb.Filename,
		Chunks:      kb.TotalChunks,
	})
}

// RegisterRoutes registers the API routes on a router
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.Use(corsMiddleware)
	router.HandleFunc("/health", h.HealthHandler).Methods("GET")
	router.HandleFunc("/upload", h.UploadHandler).Methods("POST", "OPTIONS")
	router.HandleFunc("/chat", h.ChatHandler).Methods("POST", "OPTIONS")
	router.HandleFunc("/reset", h.ResetHandler).Methods("POST", "OPTIONS")
	router.HandleFunc("/status", h.StatusHandler).Methods("GET")
}

// corsMiddleware allows browser clients on any origin
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
