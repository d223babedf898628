package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/services"
)

var now = time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

type stubAPI struct {
	mu      sync.Mutex
	posts   []domain.Post
	created int
	listErr error
}

func (s *stubAPI) ListPosts(context.Context) ([]domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	return domain.ClonePosts(s.posts), nil
}

func (s *stubAPI) CreatePost(_ context.Context, body string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created++
	p := domain.Post{ID: "new", Body: body, CreatedAt: now}
	s.posts = append([]domain.Post{p}, s.posts...)
	return &p, nil
}

func (s *stubAPI) DeletePost(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.posts {
		if p.ID == id {
			s.posts = append(s.posts[:i], s.posts[i+1:]...)
			return nil
		}
	}
	return &domain.ServerError{Op: "delete post", StatusCode: http.StatusNotFound}
}

func newApp(api *stubAPI) (*App, *bytes.Buffer) {
	store := services.NewStore(api, services.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	out := &bytes.Buffer{}
	return New(store, out, func() time.Time { return now }), out
}

func seeded() *stubAPI {
	return &stubAPI{posts: []domain.Post{
		{ID: "t1", Body: "from today", CreatedAt: now.Add(-time.Hour)},
		{ID: "y1", Body: "from yesterday", CreatedAt: now.AddDate(0, 0, -1)},
	}}
}

func TestRun_ListAll(t *testing.T) {
	app, out := newApp(seeded())

	if err := app.Run(context.Background(), []string{"list"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "from today") || !strings.Contains(got, "from yesterday") {
		t.Errorf("output = %q, want both posts", got)
	}
	if !strings.Contains(got, "2 post(s)") {
		t.Errorf("output = %q, want a count", got)
	}
}

func TestRun_ListToday(t *testing.T) {
	app, out := newApp(seeded())

	if err := app.Run(context.Background(), []string{"list", "-filter", "today"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "from today") || strings.Contains(got, "from yesterday") {
		t.Errorf("output = %q, want only today's post", got)
	}
	if !strings.Contains(got, domain.FilterLabels[domain.FilterToday]) {
		t.Errorf("output = %q, want the filter label", got)
	}
}

func TestRun_AddValidatesBeforeRequest(t *testing.T) {
	api := seeded()
	app, _ := newApp(api)

	err := app.Run(context.Background(), []string{"add", "   "})
	if !errors.Is(err, domain.ErrEmptyBody) {
		t.Fatalf("err = %v, want ErrEmptyBody", err)
	}
	if api.created != 0 {
		t.Error("no create request should be issued for an invalid body")
	}
}

func TestRun_Add(t *testing.T) {
	api := seeded()
	app, out := newApp(api)

	if err := app.Run(context.Background(), []string{"add", "hello", "board"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "hello board") {
		t.Errorf("output = %q, want the new post", out.String())
	}
}

func TestRun_DeleteUnknownReportsError(t *testing.T) {
	app, out := newApp(seeded())

	err := app.Run(context.Background(), []string{"delete", "nope"})
	if !errors.Is(err, ErrSyncFailed) {
		t.Fatalf("err = %v, want ErrSyncFailed", err)
	}
	if !strings.Contains(out.String(), reloadHint) {
		t.Errorf("output = %q, want the reload hint", out.String())
	}
	if !strings.Contains(out.String(), "from today") {
		t.Error("the list should still be shown after a failed delete")
	}
}

func TestRun_RefreshFailure(t *testing.T) {
	api := seeded()
	api.listErr = &domain.NetworkError{Op: "list posts", Err: errors.New("refused")}
	app, out := newApp(api)

	if err := app.Run(context.Background(), []string{"refresh"}); !errors.Is(err, ErrSyncFailed) {
		t.Fatalf("err = %v, want ErrSyncFailed", err)
	}
	if !strings.Contains(out.String(), "Network error") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRun_BadInput(t *testing.T) {
	app, _ := newApp(seeded())
	ctx := context.Background()

	for _, args := range [][]string{nil, {"frobnicate"}, {"delete"}, {"list", "-filter", "week"}} {
		if err := app.Run(ctx, args); err == nil {
			t.Errorf("Run(%v) should fail", args)
		}
	}
}
