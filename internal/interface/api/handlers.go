package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/samber/mo"

	"github.com/jinford/safety-rag/internal/core/chat"
	"github.com/jinford/safety-rag/internal/core/corpus"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("message is required"))
		return
	}

	cc := chat.ConversationContext{Prior: chat.LastTurn(req.History)}
	if req.Prior != nil {
		cc.Prior = mo.Some(*req.Prior)
	}

	// 失敗時も Reply.Text に表示用の文言が入るため常に 200 を返す
	reply := s.chat.Respond(r.Context(), req.Message, cc)
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, titleResponse{Title: chat.GenerateChatTitle(req.Message)})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]documentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentSummary{
			ID:         d.ID,
			Name:       d.Name,
			Type:       d.Type,
			Chunks:     len(d.Chunks),
			UploadedAt: d.UploadedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUploadDocument は JSON（name, content）か、text/plain・application/pdf の生ボディ（?name=）を受け付ける
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	params, err := s.readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.documents.Upload(r.Context(), params)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, corpus.ErrUnsupportedType) || errors.Is(err, corpus.ErrEmptyContent) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}

	s.logger.Info("api: document uploaded", "name", params.Name, "chunks", result.ChunkCount)
	writeJSON(w, http.StatusCreated, uploadResponse{
		ID:            result.DocumentID,
		Chunks:        result.ChunkCount,
		EmbeddedCount: result.EmbeddedCount,
	})
}

func (s *Server) readUpload(r *http.Request) (corpus.UploadParams, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = "application/json"
	}

	switch mediaType {
	case "application/json":
		var req documentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return corpus.UploadParams{}, fmt.Errorf("invalid request body: %w", err)
		}
		return corpus.UploadParams{
			Name:    req.Name,
			Content: req.Content,
			Type:    corpus.DocumentType(strings.ToLower(req.Type)),
		}, nil

	case "text/plain":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return corpus.UploadParams{}, err
		}
		return corpus.UploadParams{
			Name:    r.URL.Query().Get("name"),
			Content: string(body),
			Type:    corpus.DocumentTypeTXT,
		}, nil

	case "application/pdf":
		if s.extractPDF == nil {
			return corpus.UploadParams{}, fmt.Errorf("%w: pdf", corpus.ErrUnsupportedType)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return corpus.UploadParams{}, err
		}
		content, err := s.extractPDF(body)
		if err != nil {
			return corpus.UploadParams{}, fmt.Errorf("failed to extract pdf text: %w", err)
		}
		name := r.URL.Query().Get("name")
		if name == "" {
			name = "document.pdf"
		}
		return corpus.UploadParams{
			Name:    path.Base(name),
			Content: content,
			Type:    corpus.DocumentTypePDF,
		}, nil

	default:
		return corpus.UploadParams{}, fmt.Errorf("%w: %s", corpus.ErrUnsupportedType, mediaType)
	}
}

func (s *Server) handleSaveCredential(w http.ResponseWriter, r *http.Request) {
	var req credentialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("apiKey is required"))
		return
	}
	if err := s.chat.SaveCredential(r.Context(), req.APIKey); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
