// Package cli est la couche de présentation en terminal : elle lit le store, applique le
// filtre de date et transmet les intentions de l'utilisateur (add, delete, refresh).
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/erikaambiru/azure-devsecops-demo/internal/core/domain"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/ports"
)

const (
	syncingMessage = "Syncing posts from the server..."
	reloadHint     = "run `board refresh` to reload"
)

// ErrSyncFailed signale que la dernière opération a laissé le store en erreur.
var ErrSyncFailed = errors.New("synchronization failed")

type App struct {
	store ports.PostStore
	out   io.Writer
	now   func() time.Time
}

func New(store ports.PostStore, out io.Writer, now func() time.Time) *App {
	if now == nil {
		now = time.Now
	}
	return &App{store: store, out: out, now: now}
}

func Usage(w io.Writer) {
	fmt.Fprintln(w, `usage: board <command> [args]

commands:
  list [-filter all|today]   show posts
  add <text>                 submit a new post
  delete <id>                delete a post
  refresh                    reload posts from the server`)
}

// Run exécute une commande. Une erreur de validation n'émet aucune requête.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		Usage(a.out)
		return errors.New("missing command")
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "list", "ls":
		fs := flag.NewFlagSet("list", flag.ContinueOnError)
		fs.SetOutput(a.out)
		filterFlag := fs.String("filter", string(domain.FilterAll), "all or today")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		filter, err := domain.ParseFilter(*filterFlag)
		if err != nil {
			return err
		}
		return a.list(ctx, filter)

	case "add":
		body, err := domain.ValidateBody(strings.Join(rest, " "))
		if err != nil {
			return err
		}
		return a.add(ctx, body)

	case "delete", "rm":
		if len(rest) != 1 || strings.TrimSpace(rest[0]) == "" {
			return errors.New("delete takes exactly one post id")
		}
		return a.delete(ctx, rest[0])

	case "refresh":
		_ = a.store.Mount(ctx).Wait(ctx)
		return a.render(domain.FilterAll)

	case "help", "-h", "--help":
		Usage(a.out)
		return nil
	}

	Usage(a.out)
	return fmt.Errorf("unknown command %q", args[0])
}

func (a *App) list(ctx context.Context, filter domain.Filter) error {
	_ = a.store.Mount(ctx).Wait(ctx)
	return a.render(filter)
}

func (a *App) add(ctx context.Context, body string) error {
	// Le formulaire reste "désactivé" tant que la synchro initiale n'est pas terminée
	_ = a.store.Mount(ctx).Wait(ctx)
	_ = a.store.AddPost(ctx, body).Wait(ctx)
	return a.render(domain.FilterAll)
}

func (a *App) delete(ctx context.Context, id string) error {
	_ = a.store.Mount(ctx).Wait(ctx)
	_ = a.store.DeletePost(ctx, id).Wait(ctx)
	return a.render(domain.FilterAll)
}

// render affiche la barre de statut puis la vue filtrée. Ne modifie jamais le store.
func (a *App) render(filter domain.Filter) error {
	snap := a.store.Snapshot()

	if snap.Loading() {
		fmt.Fprintln(a.out, syncingMessage)
	}
	if snap.Err != "" {
		fmt.Fprintf(a.out, "error: %s (%s)\n", snap.Err, reloadHint)
	}

	view := domain.ApplyFilter(snap.Posts, filter, a.now())
	fmt.Fprintf(a.out, "%s: %d post(s)\n", domain.FilterLabels[filter], len(view))

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, p := range view {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.CreatedAt.In(a.now().Location()).Format("2006-01-02 15:04"), p.Body)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if snap.Status == domain.StatusError {
		return fmt.Errorf("%w: %s", ErrSyncFailed, snap.Err)
	}
	return nil
}
