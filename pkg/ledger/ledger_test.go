package ledger

import (
	"errors"
	"testing"

	"github.com/harrisonrobin/duewatch/pkg/kv"
	"github.com/harrisonrobin/duewatch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{}

func (brokenStore) Load(string) ([]byte, error) { return nil, errors.New("disk on fire") }
func (brokenStore) Save(string, []byte) error   { return errors.New("disk on fire") }

func TestLedgerValueSemantics(t *testing.T) {
	base := New("a")
	grown := base.AddAll([]string{"b", "a", "c"})

	assert.Equal(t, []string{"a"}, base.IDs())
	assert.Equal(t, []string{"a", "b", "c"}, grown.IDs())

	shrunk := grown.Remove("b")
	assert.True(t, grown.Has("b"))
	assert.False(t, shrunk.Has("b"))
	assert.Equal(t, []string{"a", "c"}, shrunk.IDs())

	assert.Equal(t, 2, shrunk.Remove("missing").Len())
}

func TestZeroLedger(t *testing.T) {
	var l Ledger
	assert.False(t, l.Has("a"))
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.IDs())
	assert.Equal(t, 0, l.Remove("a").Len())
	assert.True(t, l.AddAll([]string{"a"}).Has("a"))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "notified_todos_u1", Key("u1"))
}

func TestPersistAndLoad(t *testing.T) {
	store := kv.NewMemoryStore()
	require.NoError(t, Persist(store, "u1", New("a", "b")))

	raw, err := store.Load("notified_todos_u1")
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(raw))

	l := Load(store, "u1", logger.Discard())
	assert.Equal(t, []string{"a", "b"}, l.IDs())
}

func TestPersistEmptyWritesArray(t *testing.T) {
	store := kv.NewMemoryStore()
	require.NoError(t, Persist(store, "u1", Ledger{}))

	raw, err := store.Load("notified_todos_u1")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))
}

func TestLoadMissingKeyIsEmpty(t *testing.T) {
	l := Load(kv.NewMemoryStore(), "u1", logger.Discard())
	assert.Equal(t, 0, l.Len())
}

func TestLoadMalformedJSONIsEmpty(t *testing.T) {
	store := kv.NewMemoryStore()
	require.NoError(t, store.Save("notified_todos_u1", []byte(`["a",`)))

	l := Load(store, "u1", logger.Discard())
	assert.Equal(t, 0, l.Len())
}

func TestLoadStoreFailureIsEmpty(t *testing.T) {
	l := Load(brokenStore{}, "u1", logger.Discard())
	assert.Equal(t, 0, l.Len())
}

func TestLedgersAreScopedPerUser(t *testing.T) {
	store := kv.NewMemoryStore()
	require.NoError(t, Persist(store, "u1", New("a")))

	assert.Equal(t, 0, Load(store, "u2", logger.Discard()).Len())
	assert.True(t, Load(store, "u1", logger.Discard()).Has("a"))
}
