package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/ports"
)

const DefaultRequestTimeout = 10 * time.Second

// Op est le résultat asynchrone d'une opération du store.
// L'erreur est déjà reflétée dans le SyncState ; Wait sert uniquement au séquencement.
type Op struct {
	done chan struct{}
	err  error
}

func newOp() *Op {
	return &Op{done: make(chan struct{})}
}

func (o *Op) finish(err error) {
	o.err = err
	close(o.done)
}

func (o *Op) Done() <-chan struct{} { return o.done }

func (o *Op) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err retourne nil tant que l'opération n'est pas terminée.
func (o *Op) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

type StoreOption func(*Store)

func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

func WithRequestTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithTracer(t trace.Tracer) StoreOption {
	return func(s *Store) { s.tracer = t }
}

// Store est la source de vérité locale des posts : toute interaction avec l'API passe par lui.
//
// Aucune exclusion mutuelle n'est imposée entre opérations : la présentation doit désactiver
// ses contrôles pendant Loading. Si deux opérations se chevauchent, la dernière réponse
// arrivée décide de la collection et du statut final.
type Store struct {
	api     ports.PostAPI
	log     *slog.Logger
	tracer  trace.Tracer
	timeout time.Duration

	mu       sync.Mutex
	posts    []domain.Post
	status   domain.SyncStatus
	errMsg   string
	inflight int
	subs     map[int]chan domain.Snapshot
	nextSub  int

	mountOnce sync.Once
	mountOp   *Op
}

// NewStore crée un store vide et inactif. Rien n'est chargé avant Mount.
func NewStore(api ports.PostAPI, opts ...StoreOption) *Store {
	s := &Store{
		api:     api,
		log:     slog.Default(),
		tracer:  otel.Tracer("board-store"),
		timeout: DefaultRequestTimeout,
		posts:   []domain.Post{},
		subs:    make(map[int]chan domain.Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.PostStore = (*Store)(nil)

// --- LECTURE ---

func (s *Store) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Posts() []domain.Post { return s.Snapshot().Posts }

func (s *Store) Loading() bool { return s.Snapshot().Loading() }

func (s *Store) Err() string { return s.Snapshot().Err }

func (s *Store) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Posts:  domain.ClonePosts(s.posts),
		Status: s.status,
		Err:    s.errMsg,
	}
}

// Subscribe reçoit un snapshot après chaque transition. Si le lecteur est lent,
// les snapshots intermédiaires sont remplacés par le plus récent.
func (s *Store) Subscribe(buffer int) (<-chan domain.Snapshot, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan domain.Snapshot, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) publishLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// --- OPÉRATIONS ---

// Mount déclenche la synchronisation initiale, une seule fois par store.
func (s *Store) Mount(ctx context.Context) ports.Operation {
	s.mountOnce.Do(func() {
		s.mountOp = s.refresh(ctx, "mount")
	})
	return s.mountOp
}

// Refresh remplace la collection par celle du serveur. Sert aussi de bouton "recharger".
func (s *Store) Refresh(ctx context.Context) ports.Operation {
	return s.refresh(ctx, "refresh")
}

func (s *Store) refresh(ctx context.Context, name string) *Op {
	return s.run(ctx, name, func(ctx context.Context) (mutation, error) {
		posts, err := s.api.ListPosts(ctx)
		if err != nil {
			return nil, err
		}
		return replaceWith(posts), nil
	})
}

// AddPost crée le post puis relit toute la collection (protocole en deux temps).
// Pas d'insertion optimiste : seuls l'id et la date confirmés par le serveur entrent dans la collection.
func (s *Store) AddPost(ctx context.Context, body string) ports.Operation {
	return s.run(ctx, "add_post", func(ctx context.Context) (mutation, error) {
		created, err := s.api.CreatePost(ctx, body)
		if err != nil {
			return nil, err
		}
		s.log.Debug("post created, confirming with a full read", "post_id", created.ID)

		posts, err := s.api.ListPosts(ctx)
		if err != nil {
			return nil, err
		}
		return replaceWith(posts), nil
	})
}

// DeletePost supprime côté serveur puis retire l'entrée localement.
// Un id inconnu du serveur remonte en erreur (404), jamais en succès silencieux.
func (s *Store) DeletePost(ctx context.Context, id string) ports.Operation {
	return s.run(ctx, "delete_post", func(ctx context.Context) (mutation, error) {
		if err := s.api.DeletePost(ctx, id); err != nil {
			return nil, err
		}
		return removeByID(id), nil
	})
}

// mutation est appliquée à la collection uniquement si l'appel distant a réussi.
type mutation func(current []domain.Post) []domain.Post

func replaceWith(fetched []domain.Post) mutation {
	return func([]domain.Post) []domain.Post {
		seen := make(map[string]struct{}, len(fetched))
		out := make([]domain.Post, 0, len(fetched))
		for _, p := range fetched {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
		return out
	}
}

func removeByID(id string) mutation {
	return func(current []domain.Post) []domain.Post {
		out := make([]domain.Post, 0, len(current))
		for _, p := range current {
			if p.ID != id {
				out = append(out, p)
			}
		}
		return out
	}
}

func (s *Store) run(ctx context.Context, name string, call func(ctx context.Context) (mutation, error)) *Op {
	op := newOp()
	s.begin()

	go func() {
		ctx, span := s.tracer.Start(ctx, "store."+name)
		defer span.End()

		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		apply, err := call(callCtx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.log.Warn("store operation failed", "op", name, "error", err)
		}

		count := s.end(apply, err)
		span.SetAttributes(attribute.Int("board.posts", count))
		op.finish(err)
	}()

	return op
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight++
	s.status = domain.StatusLoading
	s.errMsg = ""
	s.publishLocked()
}

// end applique le résultat : tout ou rien, la collection n'est jamais modifiée sur erreur.
func (s *Store) end(apply mutation, err error) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight--
	if err != nil {
		s.errMsg = domain.UserMessage(err)
	} else {
		s.posts = apply(s.posts)
		s.errMsg = ""
	}

	switch {
	case s.inflight > 0:
		s.status = domain.StatusLoading
	case err != nil:
		s.status = domain.StatusError
	default:
		s.status = domain.StatusIdle
	}

	s.publishLocked()
	return len(s.posts)
}
