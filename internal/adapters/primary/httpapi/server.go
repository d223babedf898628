package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/ports"
)

// maxRequestBody borne la taille du JSON accepté sur POST /posts
const maxRequestBody = 16 << 10

// PostDTO est le format fil : {id, body, createdAt}.
type PostDTO struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreatePostRequest struct {
	Body string `json:"body"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type Server struct {
	service ports.PostService
}

func NewServer(service ports.PostService) *Server {
	return &Server{service: service}
}

// Register branche les routes de l'API sur le mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /posts", s.listPosts)
	mux.HandleFunc("POST /posts", s.createPost)
	mux.HandleFunc("DELETE /posts/{id}", s.deletePost)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

// --- QUERIES (Read) ---

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.service.ListPosts(r.Context())
	if err != nil {
		slog.Error("Failed to list posts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	out := make([]PostDTO, len(posts))
	for i, p := range posts {
		out[i] = MapDomainToDTO(p)
	}
	writeJSON(w, http.StatusOK, out)
}

// --- COMMANDS (Write) ---

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be JSON {\"body\": string}")
		return
	}

	post, err := s.service.CreatePost(r.Context(), req.Body)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPost) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Failed to create post", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	writeJSON(w, http.StatusCreated, MapDomainToDTO(post))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.service.DeletePost(r.Context(), id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, domain.ErrPostNotFound):
		writeError(w, http.StatusNotFound, domain.ErrPostNotFound.Error())
	default:
		slog.Error("Failed to delete post", "post_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete post")
	}
}

// --- HELPERS ---

func MapDomainToDTO(p *domain.Post) PostDTO {
	return PostDTO{
		ID:        p.ID,
		Body:      p.Body,
		CreatedAt: p.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
