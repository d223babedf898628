package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/", WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8080", "ftp://x", "://bad"} {
		if _, err := New(u); err == nil {
			t.Errorf("New(%q) should fail", u)
		}
	}
}

func TestClient_ListPosts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/posts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"2","body":"b","createdAt":"2026-10-18T10:00:00Z"},{"id":"1","body":"a","createdAt":"2026-10-17T10:00:00Z"}]`))
	})

	posts, err := c.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 || posts[0].ID != "2" || posts[1].Body != "a" {
		t.Errorf("posts = %+v", posts)
	}
	want := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)
	if !posts[0].CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", posts[0].CreatedAt, want)
	}
}

func TestClient_CreatePost(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %q", r.Method, r.Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"7","body":"hello","createdAt":"2026-10-18T10:00:00Z"}`))
	})

	post, err := c.CreatePost(context.Background(), "hello")
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.ID != "7" || post.Body != "hello" {
		t.Errorf("post = %+v", post)
	}
}

func TestClient_CreatePost_MissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"body":"hello"}`))
	})

	var srvErr *domain.ServerError
	if _, err := c.CreatePost(context.Background(), "hello"); !errors.As(err, &srvErr) {
		t.Fatalf("err = %v, want *ServerError", err)
	}
}

func TestClient_ServerErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload string
		wantIs  error
		wantMsg string
	}{
		{"not found", http.StatusNotFound, `{"error":"post not found"}`, domain.ErrPostNotFound, "post not found"},
		{"validation", http.StatusBadRequest, `{"error":"invalid post: body must not be empty"}`, domain.ErrInvalidPost, "invalid post: body must not be empty"},
		{"plain text", http.StatusBadGateway, "upstream down\n", nil, "upstream down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.payload))
			})

			err := c.DeletePost(context.Background(), "x")
			var srvErr *domain.ServerError
			if !errors.As(err, &srvErr) {
				t.Fatalf("err = %v, want *ServerError", err)
			}
			if srvErr.StatusCode != tt.status || srvErr.Message != tt.wantMsg {
				t.Errorf("ServerError = %+v", srvErr)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
		})
	}
}

func TestClient_MalformedResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	var srvErr *domain.ServerError
	if _, err := c.ListPosts(context.Background()); !errors.As(err, &srvErr) {
		t.Fatalf("err = %v, want *ServerError", err)
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var netErr *domain.NetworkError
	if _, err := c.ListPosts(context.Background()); !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *NetworkError", err)
	}
}

func TestClient_DeleteEscapesID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/posts/a%2Fb" {
			t.Errorf("path = %q", r.URL.EscapedPath())
		}
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.DeletePost(context.Background(), "a/b"); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
}
