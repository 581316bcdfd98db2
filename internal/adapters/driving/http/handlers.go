package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// ReadyResponse reports each backend's health
// @Description Readiness with per-backend status
type ReadyResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks,omitempty"`
}

// askRequest is the body of an ask call
type askRequest struct {
	Question string `json:"question" example:"What is the capital of France?"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings the lock and transcript backends
// @Tags         Health
// @Produce      json
// @Success      200  {object}  ReadyResponse
// @Failure      503  {object}  ReadyResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := ReadyResponse{Status: "ready", Checks: make(map[string]string, len(s.checks))}
	status := http.StatusOK

	for name, p := range s.checks {
		if err := p.Ping(r.Context()); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	writeJSON(w, status, resp)
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, doc)
}

// Session endpoints

// handleCreateSession godoc
// @Summary      Create session
// @Description  Start an empty conversation session
// @Tags         Sessions
// @Produce      json
// @Success      201  {object}  domain.SessionInfo
// @Router       /sessions [post]
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.qaService.CreateSession(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// handleGetSession godoc
// @Summary      Get session
// @Description  Snapshot of a session's document and conversation size
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  domain.SessionInfo
// @Failure      404  {object}  ErrorResponse  "Session not found"
// @Router       /sessions/{id} [get]
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	info, err := s.qaService.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleResetSession godoc
// @Summary      Reset session
// @Description  Discard the session's document, conversation and archived transcript
// @Tags         Sessions
// @Param        id   path  string  true  "Session ID"
// @Success      204
// @Failure      409  {object}  ErrorResponse  "Another operation is in flight"
// @Router       /sessions/{id} [delete]
func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	if err := s.qaService.Reset(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploadDocument godoc
// @Summary      Upload document
// @Description  Index a file for the session, replacing any previous document and clearing the conversation.
// @Description  Send multipart form field "file", or the raw bytes with a filename query parameter.
// @Tags         Sessions
// @Accept       multipart/form-data
// @Accept       octet-stream
// @Produce      json
// @Param        id        path      string  true   "Session ID"
// @Param        file      formData  file    false  "Document"
// @Param        filename  query     string  false  "Filename for raw uploads"
// @Success      200  {object}  domain.UploadResult
// @Failure      400  {object}  ErrorResponse  "Missing file or filename"
// @Failure      409  {object}  ErrorResponse  "Another operation is in flight"
// @Failure      413  {object}  ErrorResponse  "File too large"
// @Failure      415  {object}  ErrorResponse  "Unsupported file type"
// @Failure      422  {object}  ErrorResponse  "File could not be parsed"
// @Failure      503  {object}  ErrorResponse  "Embedding provider unavailable"
// @Router       /sessions/{id}/document [post]
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	raw, filename, err := s.readUpload(r)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	result, err := s.qaService.UploadDocument(r.Context(), r.PathValue("id"), raw, filename)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// readUpload extracts the file bytes and name from a multipart or raw request
func (s *Server) readUpload(r *http.Request) ([]byte, string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			var maxBytes *http.MaxBytesError
			if errors.As(err, &maxBytes) {
				return nil, "", err
			}
			return nil, "", fmt.Errorf("%w: multipart field \"file\" is required", domain.ErrInvalidInput)
		}
		defer file.Close()

		raw, err := s.readLimited(file)
		if err != nil {
			return nil, "", err
		}
		return raw, header.Filename, nil
	}

	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	if filename == "" {
		return nil, "", fmt.Errorf("%w: filename query parameter is required for raw uploads", domain.ErrInvalidInput)
	}
	raw, err := s.readLimited(r.Body)
	if err != nil {
		return nil, "", err
	}
	return raw, filename, nil
}

func (s *Server) readLimited(src io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(src, s.maxUpload+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > s.maxUpload {
		return nil, &http.MaxBytesError{Limit: s.maxUpload}
	}
	return raw, nil
}

// handleAsk godoc
// @Summary      Ask a question
// @Description  Answer a question from the session's document, using the conversation to resolve follow-ups
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        id       path      string      true  "Session ID"
// @Param        request  body      askRequest  true  "Question"
// @Success      200      {object}  domain.AnswerResult
// @Failure      400      {object}  ErrorResponse  "Empty question"
// @Failure      409      {object}  ErrorResponse  "Another operation is in flight"
// @Failure      503      {object}  ErrorResponse  "AI provider unavailable"
// @Router       /sessions/{id}/ask [post]
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.qaService.Ask(r.Context(), r.PathValue("id"), req.Question)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleHistory godoc
// @Summary      Conversation history
// @Description  The session's turns, oldest first
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {array}   domain.ConversationTurn
// @Failure      404  {object}  ErrorResponse  "Session not found"
// @Router       /sessions/{id}/history [get]
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	turns, err := s.qaService.History(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, turns)
}

// handleTranscript godoc
// @Summary      Archived transcript
// @Description  Turns archived to Redis or PostgreSQL; survives restarts and eviction
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {array}   domain.ConversationTurn
// @Failure      503  {object}  ErrorResponse  "No transcript backend configured"
// @Router       /sessions/{id}/transcript [get]
func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	turns, err := s.qaService.Transcript(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if turns == nil {
		turns = []domain.ConversationTurn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

// AI settings endpoints

// handleGetAIStatus godoc
// @Summary      Get AI status
// @Description  Current embedding and language model providers and backend selection
// @Tags         AI Settings
// @Produce      json
// @Success      200  {object}  driving.AISettingsStatus
// @Router       /settings/ai/status [get]
func (s *Server) handleGetAIStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.settingsService.GetAIStatus(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleUpdateAISettings godoc
// @Summary      Update AI settings
// @Description  Validate, health-check and hot-swap AI providers. A provider that fails its health check is not activated.
// @Tags         AI Settings
// @Accept       json
// @Produce      json
// @Param        request  body      driving.UpdateAISettingsRequest  true  "AI settings to update"
// @Success      200      {object}  driving.AISettingsStatus
// @Failure      400      {object}  ErrorResponse  "Invalid configuration or unsupported provider"
// @Router       /settings/ai [put]
func (s *Server) handleUpdateAISettings(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateAISettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := s.settingsService.UpdateAISettings(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
