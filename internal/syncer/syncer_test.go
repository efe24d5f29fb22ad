package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/chartstore/internal/engine"
	"github.com/mesh-intelligence/chartstore/internal/storage"
	"github.com/mesh-intelligence/chartstore/pkg/types"
)

// fakeRemote implements the peer side of the sync protocol in-process.
type fakeRemote struct {
	srv *httptest.Server

	mu           sync.Mutex
	pushes       map[string][]types.RemoteChange
	pushAttempts int
	changes      map[string][]types.RemoteChange
	failPush     bool
	failPullFor  map[string]bool
	auth         []string
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	r := &fakeRemote{
		pushes:      make(map[string][]types.RemoteChange),
		changes:     make(map[string][]types.RemoteChange),
		failPullFor: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		r.record(req)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /sync/{collection}/changes", func(w http.ResponseWriter, req *http.Request) {
		r.record(req)
		col := req.PathValue("collection")
		r.mu.Lock()
		fail := r.failPullFor[col]
		out := r.changes[col]
		r.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("POST /sync/{collection}", func(w http.ResponseWriter, req *http.Request) {
		r.record(req)
		r.mu.Lock()
		r.pushAttempts++
		fail := r.failPush
		r.mu.Unlock()
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var ch types.RemoteChange
		if err := json.NewDecoder(req.Body).Decode(&ch); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		col := req.PathValue("collection")
		r.mu.Lock()
		r.pushes[col] = append(r.pushes[col], ch)
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	r.srv = httptest.NewServer(mux)
	t.Cleanup(r.srv.Close)
	return r
}

func (r *fakeRemote) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auth = append(r.auth, req.Header.Get("Authorization"))
}

func (r *fakeRemote) pushed(col string) []types.RemoteChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]types.RemoteChange(nil), r.pushes[col]...)
}

func (r *fakeRemote) attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pushAttempts
}

func (r *fakeRemote) setFailPush(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failPush = fail
}

func (r *fakeRemote) serveChanges(col string, changes ...types.RemoteChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes[col] = changes
}

func newSyncPair(t *testing.T, remote *fakeRemote, policy string, collections ...string) (*Manager, *engine.Engine) {
	t.Helper()
	eng, err := engine.New(context.Background(), storage.NewMemory())
	if err != nil {
		t.Fatalf("engine.New failed: %v", err)
	}
	t.Cleanup(func() { eng.Close() })

	cfg := types.SyncConfig{
		Enabled:        true,
		Endpoint:       remote.srv.URL,
		APIKey:         "test-token",
		Interval:       20 * time.Millisecond,
		Collections:    collections,
		ConflictPolicy: policy,
	}
	return New(eng, cfg, nil), eng
}

func wireTime(offset time.Duration) string {
	return time.Now().Add(offset).UTC().Format(types.TimeFormat)
}

func TestSyncPushesPendingEntries(t *testing.T) {
	remote := newFakeRemote(t)
	m, eng := newSyncPair(t, remote, types.NewestWins, types.PatientsCollection)
	ctx := context.Background()

	_, err := eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-1", "mrn": "MRN-1001"})
	require.NoError(t, err)
	_, err = eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-2", "mrn": "MRN-1002"})
	require.NoError(t, err)
	_, err = eng.Update(ctx, types.PatientsCollection, "pat-1", types.Document{"phone": "555-0101"})
	require.NoError(t, err)
	_, err = eng.Delete(ctx, types.PatientsCollection, "pat-2")
	require.NoError(t, err)

	rep, err := m.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Pushed)
	assert.Zero(t, rep.Failed)

	got := remote.pushed(types.PatientsCollection)
	require.Len(t, got, 4)
	assert.Equal(t, types.ActionCreate, got[0].Action)
	assert.Equal(t, "pat-1", got[0].DocumentID)
	assert.Equal(t, "555-0101", got[0].Data["phone"], "push carries current state, not the historical one")
	assert.Equal(t, types.ActionUpdate, got[2].Action)
	assert.Equal(t, types.ActionDelete, got[3].Action)
	assert.Nil(t, got[3].Data, "deletes travel without a body")

	for _, ch := range got {
		_, perr := time.Parse(types.TimeFormat, ch.Timestamp)
		assert.NoError(t, perr)
	}

	pending, err := eng.PendingSyncs(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSyncSendsBearerToken(t *testing.T) {
	remote := newFakeRemote(t)
	m, eng := newSyncPair(t, remote, types.NewestWins, types.PatientsCollection)
	ctx := context.Background()

	_, err := eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-1"})
	require.NoError(t, err)

	_, err = m.Sync(ctx)
	require.NoError(t, err)

	remote.mu.Lock()
	defer remote.mu.Unlock()
	require.NotEmpty(t, remote.auth)
	for _, h := range remote.auth {
		assert.Equal(t, "Bearer test-token", h)
	}
}

func TestSyncMarksFailuresAndRetries(t *testing.T) {
	remote := newFakeRemote(t)
	m, eng := newSyncPair(t, remote, types.NewestWins, types.PatientsCollection)
	ctx := context.Background()

	_, err := eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-1"})
	require.NoError(t, err)
	_, err = eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-2"})
	require.NoError(t, err)

	remote.setFailPush(true)
	rep, err := m.Sync(ctx)
	require.NoError(t, err, "push failures never abort the pass")
	assert.Zero(t, rep.Pushed)
	assert.Equal(t, 2, rep.Failed)

	pending, err := eng.PendingSyncs(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2, "failed entries stay queued")
	for _, e := range pending {
		assert.Equal(t, types.SyncError, e.Status)
	}

	remote.setFailPush(false)
	rep, err = m.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Pushed)

	pending, err = eng.PendingSyncs(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestSyncSkipsEntryForVanishedDocument(t *testing.T) {
	remote := newFakeRemote(t)
	m, eng := newSyncPair(t, remote, types.NewestWins, types.PatientsCollection)
	ctx := context.Background()

	_, err := eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-1"})
	require.NoError(t, err)
	_, err = eng.Delete(ctx, types.PatientsCollection, "pat-1")
	require.NoError(t, err)

	rep, err := m.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Pushed, "only the delete goes out")

	got := remote.pushed(types.PatientsCollection)
	require.Len(t, got, 1)
	assert.Equal(t, types.ActionDelete, got[0].Action)

	pending, err := eng.PendingSyncs(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending, "the superseded create is settled, not retried")
}

func TestSyncAppliesServerWins(t *testing.T) {
	remote := newFakeRemote(t)
	m, eng := newSyncPair(t, remote, types.ServerWins, types.PatientsCollection)
	ctx := context.Background()

	_, err := eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-a", "firstName": "Local"})
	require.NoError(t, err)
	_, err = eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-b", "firstName": "Doomed"})
	require.NoError(t, err)

	remote.serveChanges(types.PatientsCollection,
		types.RemoteChange{Action: types.ActionCreate, DocumentID: "pat-new",
			Data: types.Document{"firstName": "Fresh"}, Timestamp: wireTime(-time.Hour)},
		types.RemoteChange{Action: types.ActionUpdate, DocumentID: "pat-a",
			Data: types.Document{"firstName": "Remote"}, Timestamp: wireTime(-time.Hour)},
		types.RemoteChange{Action: types.ActionDelete, DocumentID: "pat-b",
			Timestamp: wireTime(-time.Hour)},
	)

	rep, err := m.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Pulled)
	assert.Equal(t, 3, rep.Applied)

	fresh, err := eng.Get(ctx, types.PatientsCollection, "pat-new")
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, "Fresh", fresh["firstName"])

	a, err := eng.Get(ctx, types.PatientsCollection, "pat-a")
	require.NoError(t, err)
	assert.Equal(t, "Remote", a["firstName"], "server-wins ignores timestamps")

	b, err := eng.Get(ctx, types.PatientsCollection, "pat-b")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestSyncAppliesClientWins(t *testing.T) {
	remote := newFakeRemote(t)
	m, eng := newSyncPair(t, remote, types.ClientWins, types.PatientsCollection)
	ctx := context.Background()

	_, err := eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-a", "firstName": "Local"})
	require.NoError(t, err)

	remote.serveChanges(types.PatientsCollection,
		types.RemoteChange{Action: types.ActionUpdate, DocumentID: "pat-a",
			Data: types.Document{"firstName": "Remote"}, Timestamp: wireTime(time.Hour)},
		types.RemoteChange{Action: types.ActionDelete, DocumentID: "pat-a",
			Timestamp: wireTime(time.Hour)},
		types.RemoteChange{Action: types.ActionCreate, DocumentID: "pat-new",
			Data: types.Document{"firstName": "Fresh"}, Timestamp: wireTime(time.Hour)},
	)

	rep, err := m.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Applied, "only the create of an unknown id lands")

	a, err := eng.Get(ctx, types.PatientsCollection, "pat-a")
	require.NoError(t, err)
	require.NotNil(t, a, "local survives the remote delete")
	assert.Equal(t, "Local", a["firstName"])

	fresh, err := eng.Get(ctx, types.PatientsCollection, "pat-new")
	require.NoError(t, err)
	assert.NotNil(t, fresh)
}

func TestSyncAppliesNewestWins(t *testing.T) {
	remote := newFakeRemote(t)
	m, eng := newSyncPair(t, remote, types.NewestWins, types.PatientsCollection)
	ctx := context.Background()

	_, err := eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-old", "firstName": "Local"})
	require.NoError(t, err)
	_, err = eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-new", "firstName": "Local"})
	require.NoError(t, err)

	remote.serveChanges(types.PatientsCollection,
		types.RemoteChange{Action: types.ActionUpdate, DocumentID: "pat-old",
			Data: types.Document{"firstName": "Remote"}, Timestamp: wireTime(time.Hour)},
		types.RemoteChange{Action: types.ActionUpdate, DocumentID: "pat-new",
			Data: types.Document{"firstName": "Remote"}, Timestamp: wireTime(-time.Hour)},
	)

	rep, err := m.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Applied)

	old, err := eng.Get(ctx, types.PatientsCollection, "pat-old")
	require.NoError(t, err)
	assert.Equal(t, "Remote", old["firstName"], "newer remote change wins")

	fresh, err := eng.Get(ctx, types.PatientsCollection, "pat-new")
	require.NoError(t, err)
	assert.Equal(t, "Local", fresh["firstName"], "older remote change loses")
}

func TestSyncPullFailureIsolatedPerCollection(t *testing.T) {
	remote := newFakeRemote(t)
	m, eng := newSyncPair(t, remote, types.ServerWins,
		types.PatientsCollection, types.DoctorsCollection)
	ctx := context.Background()

	remote.mu.Lock()
	remote.failPullFor[types.PatientsCollection] = true
	remote.mu.Unlock()
	remote.serveChanges(types.DoctorsCollection,
		types.RemoteChange{Action: types.ActionCreate, DocumentID: "doc-1",
			Data: types.Document{"firstName": "Casey"}, Timestamp: wireTime(0)},
	)

	rep, err := m.Sync(ctx)
	require.NoError(t, err, "a failing feed does not abort the pass")
	assert.Equal(t, 1, rep.Applied)

	doc, err := eng.Get(ctx, types.DoctorsCollection, "doc-1")
	require.NoError(t, err)
	assert.NotNil(t, doc)
}

func TestBreakerStopsHammeringDeadRemote(t *testing.T) {
	remote := newFakeRemote(t)
	m, eng := newSyncPair(t, remote, types.NewestWins, types.PatientsCollection)
	ctx := context.Background()

	docs := make([]types.Document, 10)
	for i := range docs {
		docs[i] = types.Document{"mrn": "MRN-batch"}
	}
	_, err := eng.CreateMany(ctx, types.PatientsCollection, docs)
	require.NoError(t, err)

	remote.setFailPush(true)
	rep, err := m.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, rep.Failed, "breaker rejections still count as failures")
	assert.Equal(t, 5, remote.attempts(),
		"breaker opens after five straight failures and sheds the rest")

	pending, err := eng.PendingSyncs(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 10, "everything stays queued for the next pass")
}

func TestStartStopLifecycle(t *testing.T) {
	remote := newFakeRemote(t)
	m, eng := newSyncPair(t, remote, types.NewestWins, types.PatientsCollection)
	ctx := context.Background()

	_, err := eng.Create(ctx, types.PatientsCollection, types.Document{"id": "pat-1"})
	require.NoError(t, err)

	m.Start(ctx)
	m.Start(ctx) // second start is a no-op

	require.Eventually(t, func() bool {
		return len(remote.pushed(types.PatientsCollection)) >= 1
	}, 2*time.Second, 10*time.Millisecond, "interval loop drives a push")

	m.Stop()
	m.Stop() // idempotent

	// No passes run after Stop returns.
	settled := remote.attempts()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, remote.attempts())
}

func TestPing(t *testing.T) {
	remote := newFakeRemote(t)
	m, _ := newSyncPair(t, remote, types.NewestWins, types.PatientsCollection)

	assert.NoError(t, m.Ping(context.Background()))

	remote.srv.Close()
	assert.Error(t, m.Ping(context.Background()))
}
