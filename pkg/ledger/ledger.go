// Package ledger records which tasks have already raised an overdue
// notification, so that each overdue transition is announced once.
package ledger

import (
	"encoding/json"
	"errors"

	"github.com/harrisonrobin/duewatch/pkg/kv"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "notified_todos_"

// Ledger is an immutable ordered set of task ids. The zero value is empty.
type Ledger struct {
	ids []string
	set map[string]struct{}
}

func New(ids ...string) Ledger {
	return Ledger{}.AddAll(ids)
}

func (l Ledger) Has(id string) bool {
	_, ok := l.set[id]
	return ok
}

func (l Ledger) Len() int {
	return len(l.ids)
}

// IDs returns the members in insertion order.
func (l Ledger) IDs() []string {
	return append([]string(nil), l.ids...)
}

// AddAll returns a ledger holding the members of l plus ids.
func (l Ledger) AddAll(ids []string) Ledger {
	next := l.clone()
	for _, id := range ids {
		if _, ok := next.set[id]; ok {
			continue
		}
		next.set[id] = struct{}{}
		next.ids = append(next.ids, id)
	}
	return next
}

// Remove returns a ledger without id.
func (l Ledger) Remove(id string) Ledger {
	if !l.Has(id) {
		return l
	}
	next := Ledger{set: make(map[string]struct{}, len(l.set))}
	for _, member := range l.ids {
		if member == id {
			continue
		}
		next.set[member] = struct{}{}
		next.ids = append(next.ids, member)
	}
	return next
}

func (l Ledger) clone() Ledger {
	next := Ledger{
		ids: append(make([]string, 0, len(l.ids)), l.ids...),
		set: make(map[string]struct{}, len(l.set)),
	}
	for id := range l.set {
		next.set[id] = struct{}{}
	}
	return next
}

// Key is the storage key of userID's ledger.
func Key(userID string) string {
	return keyPrefix + userID
}

// Load reads userID's ledger. A missing or unreadable value yields an empty
// ledger; failures are logged and never returned.
func Load(store kv.Store, userID string, log logrus.FieldLogger) Ledger {
	key := Key(userID)
	b, err := store.Load(key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.WithError(err).WithField("key", key).Warn("failed to read notification ledger")
		}
		return Ledger{}
	}

	var ids []string
	if err := json.Unmarshal(b, &ids); err != nil {
		log.WithError(err).WithField("key", key).Warn("failed to parse stored notifications, starting empty")
		return Ledger{}
	}
	return New(ids...)
}

// Persist writes the full member list of l under userID's key.
func Persist(store kv.Store, userID string, l Ledger) error {
	ids := l.IDs()
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return store.Save(Key(userID), b)
}
