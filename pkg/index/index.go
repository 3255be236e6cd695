package index

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/harrisonrobin/duewatch/pkg/kv"
)

const keyPrefix = "calendar_events_"

// EventIndex maps task ids to the calendar event mirroring them.
type EventIndex struct {
	store    kv.Store
	key      string
	mappings map[string]string
	mu       sync.RWMutex
	dirty    bool
}

// Load reads userID's index from store. A missing key yields an empty index.
func Load(store kv.Store, userID string) (*EventIndex, error) {
	idx := &EventIndex{
		store:    store,
		key:      keyPrefix + userID,
		mappings: make(map[string]string),
	}

	b, err := store.Load(idx.key)
	if errors.Is(err, kv.ErrNotFound) {
		return idx, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, &idx.mappings); err != nil {
		return nil, err
	}
	if idx.mappings == nil {
		idx.mappings = make(map[string]string)
	}
	return idx, nil
}

// Save writes the index back if it changed since the last save.
func (idx *EventIndex) Save() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if !idx.dirty {
		return nil
	}

	b, err := json.Marshal(idx.mappings)
	if err != nil {
		return err
	}
	if err := idx.store.Save(idx.key, b); err != nil {
		return err
	}
	idx.dirty = false
	return nil
}

func (idx *EventIndex) Get(taskID string) string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.mappings[taskID]
}

func (idx *EventIndex) Set(taskID, eventID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.mappings[taskID] != eventID {
		idx.mappings[taskID] = eventID
		idx.dirty = true
	}
}

func (idx *EventIndex) Remove(taskID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, exists := idx.mappings[taskID]; exists {
		delete(idx.mappings, taskID)
		idx.dirty = true
	}
}
