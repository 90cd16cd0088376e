// SPDX-License-Identifier: GPL-3.0-or-later
package domain

//go:generate mockgen -destination=mocks/snapshotstore.go -package=mocks . SnapshotStore

// Snapshot is the persisted state surviving across runs. Records accumulate, Info always
// holds the counts of the latest run only.
type Snapshot struct {
	Records []DedupedRecord
	Info    AggregateCounts
}

type SnapshotStore interface {
	// Load returns nil and no error if there is no prior snapshot.
	Load() (*Snapshot, error)
	Save(snapshot *Snapshot) error

	Close() error
}

// Labels of the fixed info entries, followed by one entry per sender category.
const (
	UnreadLabel = "Não Lidos"
	RecentLabel = "E-mails Últimos 7 Dias"
)
