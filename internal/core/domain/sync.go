package domain

// SyncStatus est l'état de synchronisation du store. Une seule valeur active à la fois.
type SyncStatus int

const (
	StatusIdle SyncStatus = iota
	StatusLoading
	StatusError
)

func (s SyncStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Snapshot est la vue en lecture seule exposée à la présentation.
// Err vide signifie "pas d'erreur".
type Snapshot struct {
	Posts  []Post
	Status SyncStatus
	Err    string
}

func (s Snapshot) Loading() bool { return s.Status == StatusLoading }
