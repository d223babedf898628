package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/ports"
)

// maxErrorBody borne la lecture d'un corps d'erreur
const maxErrorBody = 4 << 10

type postDTO struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

type createPostRequest struct {
	Body string `json:"body"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client parle à l'API distante des posts via HTTP/JSON.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient remplace le client HTTP (tests, transport custom).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		// Injection du trace context dans chaque requête sortante
		http: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ ports.PostAPI = (*Client)(nil)

func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	const op = "list posts"

	var dtos []postDTO
	if err := c.do(ctx, op, http.MethodGet, "/posts", nil, &dtos); err != nil {
		return nil, err
	}

	posts := make([]domain.Post, len(dtos))
	for i, d := range dtos {
		posts[i] = d.toDomain()
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, body string) (*domain.Post, error) {
	const op = "create post"

	var dto postDTO
	if err := c.do(ctx, op, http.MethodPost, "/posts", createPostRequest{Body: body}, &dto); err != nil {
		return nil, err
	}
	if dto.ID == "" {
		return nil, &domain.ServerError{Op: op, StatusCode: http.StatusCreated, Message: "response has no post id"}
	}

	post := dto.toDomain()
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.do(ctx, "delete post", http.MethodDelete, "/posts/"+url.PathEscape(postID), nil, nil)
}

// do exécute la requête et classe les échecs : transport -> NetworkError, statut -> ServerError.
func (c *Client) do(ctx context.Context, op, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.ServerError{Op: op, StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.ServerError{Op: op, StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var er errorResponse
	if json.Unmarshal(raw, &er) == nil && er.Error != "" {
		return er.Error
	}
	return strings.TrimSpace(string(raw))
}

func (d postDTO) toDomain() domain.Post {
	return domain.Post{ID: d.ID, Body: d.Body, CreatedAt: d.CreatedAt}
}
