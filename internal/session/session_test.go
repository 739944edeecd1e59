package session_test

import (
	"context"
	"testing"
	"time"

	"openkanban/internal/board"
	"openkanban/internal/broadcast"
	"openkanban/internal/gateway/gatewaytest"
	"openkanban/internal/presence"
	"openkanban/internal/session"
	"openkanban/internal/transfer"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const slug = "team"

type env struct {
	mem *gatewaytest.Memory
	rdb *redis.Client
}

func setup(t *testing.T) env {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return env{mem: gatewaytest.NewMemory(), rdb: rdb}
}

func (e env) open(t *testing.T, id string) *session.Session {
	t.Helper()
	store := board.NewStore(slug, e.mem)
	s := session.New(e.mem, store,
		broadcast.New(e.rdb, slug, id, nil),
		presence.New(e.rdb, slug, presence.WithKey(id)),
	)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func taskTitles(s *session.Session) []string {
	var titles []string
	for _, c := range s.Store().Columns() {
		for _, task := range c.Tasks {
			titles = append(titles, task.Title)
		}
	}
	return titles
}

func TestSession_PeersConverge(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	alice := e.open(t, "alice")
	bob := e.open(t, "bob")

	require.NoError(t, alice.Store().AddTask(ctx, alice.Store().Columns()[0].ID, "from alice", ""))

	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"from alice"}, taskTitles(bob))
	}, 2*time.Second, 10*time.Millisecond)
	_, persisted := bob.Store().Board()
	assert.True(t, persisted)

	require.NoError(t, bob.Store().AddColumn(ctx, "Done"))

	assert.Eventually(t, func() bool { return len(alice.Store().Columns()) == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestSession_Presence(t *testing.T) {
	e := setup(t)
	alice := e.open(t, "alice")
	bob := e.open(t, "bob")

	assert.Eventually(t, func() bool { return alice.Viewers() == 2 && bob.Viewers() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, bob.Close(context.Background()))

	assert.Eventually(t, func() bool { return alice.Viewers() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSession_ImportReachesPeers(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	alice := e.open(t, "alice")
	bob := e.open(t, "bob")
	doc, err := transfer.Decode([]byte(`{"version":1,"board":{"slug":"x","columns":[
		{"title":"Backlog","position":0,"tasks":[{"title":"imported","position":0}]},
		{"title":"Done","position":1,"tasks":[]}]}}`))
	require.NoError(t, err)

	require.NoError(t, alice.Import(ctx, doc))

	assert.Equal(t, []string{"imported"}, taskTitles(alice))
	assert.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"imported"}, taskTitles(bob))
	}, 2*time.Second, 10*time.Millisecond)

	exported := alice.Export(time.Now())
	require.Len(t, exported.Board.Columns, 2)
	assert.Equal(t, "Backlog", exported.Board.Columns[0].Title)
}

func TestSession_StartFailsWhenBoardUnavailable(t *testing.T) {
	e := setup(t)
	e.mem.FailOn(gatewaytest.OpGetFullBoard, nil)
	s := session.New(e.mem, board.NewStore(slug, e.mem), broadcast.New(e.rdb, slug, "alice", nil), nil)

	err := s.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "board unavailable")
	assert.Equal(t, 1, s.Viewers())
}
