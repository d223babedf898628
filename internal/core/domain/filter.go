package domain

import (
	"fmt"
	"time"
)

type Filter string

const (
	FilterAll   Filter = "all"
	FilterToday Filter = "today"
)

// Labels affichés par la barre de filtres.
var FilterLabels = map[Filter]string{
	FilterAll:   "All posts",
	FilterToday: "Today's posts",
}

const dayLayout = "2006-01-02"

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterToday:
		return f, nil
	case "":
		return FilterAll, nil
	}
	return "", fmt.Errorf("unknown filter %q (want %q or %q)", s, FilterAll, FilterToday)
}

// ApplyFilter retourne une nouvelle collection, sans jamais toucher à celle passée en entrée.
// "today" compare la date calendaire (YYYY-MM-DD) dans le fuseau de now.
func ApplyFilter(posts []Post, f Filter, now time.Time) []Post {
	if f != FilterToday {
		return ClonePosts(posts)
	}

	today := now.Format(dayLayout)
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.CreatedAt.In(now.Location()).Format(dayLayout) == today {
			out = append(out, p)
		}
	}
	return out
}
