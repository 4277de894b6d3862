package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/jinford/safety-rag/internal/core/chat"
	"github.com/jinford/safety-rag/internal/core/corpus"
)

// DefaultMaxUploadBytes はドキュメントアップロードの上限サイズ
const DefaultMaxUploadBytes = 20 << 20

// ChatResponder はチャット応答と認証情報の保存を行う
type ChatResponder interface {
	Respond(ctx context.Context, message string, cc chat.ConversationContext) chat.Reply
	SaveCredential(ctx context.Context, credential string) error
}

// DocumentCatalog はドキュメントの登録と一覧を行う
type DocumentCatalog interface {
	Upload(ctx context.Context, params corpus.UploadParams) (*corpus.UploadResult, error)
	List(ctx context.Context) ([]*corpus.Document, error)
}

// PDFExtractor は PDF のバイト列からテキストを取り出す
type PDFExtractor func(data []byte) (string, error)

// Server は HTTP API サーバ
type Server struct {
	router         chi.Router
	chat           ChatResponder
	documents      DocumentCatalog
	extractPDF     PDFExtractor
	maxUploadBytes int64
	logger         *slog.Logger
}

type ServerOption func(*Server)

// WithServerLogger はロガーを設定する
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithPDFExtractor は PDF アップロードを有効にする
func WithPDFExtractor(extract PDFExtractor) ServerOption {
	return func(s *Server) {
		s.extractPDF = extract
	}
}

// WithMaxUploadBytes はアップロード上限を設定する
func WithMaxUploadBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// NewServer は新しい Server を作成する
func NewServer(chatSvc ChatResponder, documents DocumentCatalog, opts ...ServerOption) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		chat:           chatSvc,
		documents:      documents,
		maxUploadBytes: DefaultMaxUploadBytes,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.router.Post("/api/chat", s.handleChat)
	s.router.Post("/api/chat/title", s.handleTitle)
	s.router.Get("/api/documents", s.handleListDocuments)
	s.router.Post("/api/documents", s.handleUploadDocument)
	s.router.Put("/api/credential", s.handleSaveCredential)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
