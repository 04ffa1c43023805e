package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markazhub/markaz/core/navigation"
)

// memBlobs is an in-test BlobStore.
type memBlobs struct {
	data map[string][]byte
}

func newMemBlobs() *memBlobs { return &memBlobs{data: make(map[string][]byte)} }

func (m *memBlobs) Get(key string) ([]byte, error) {
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *memBlobs) Set(key string, value []byte) error {
	m.data[key] = value
	return nil
}

func (m *memBlobs) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func testSession(expiresAt time.Time) Session {
	return Session{
		UserID:            "usr-1",
		UserName:          "Aisha Rahma",
		Role:              navigation.RoleTeacher,
		BranchID:          "br-1",
		SubBranchID:       "sb-1",
		ClassIDs:          []string{"cls-1", "cls-2"},
		CurrentBranchYear: BranchYear{ID: "by-1", Name: "1447H"},
		Token:             "tok-abc",
		ExpiresAt:         expiresAt,
	}
}

func TestStoreLoginPersistsAndRehydrates(t *testing.T) {
	blobs := newMemBlobs()
	st := NewStore(blobs, nil)
	assert.False(t, st.Current().IsLoggedIn)

	// the blob format keeps second precision only
	expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, st.Login(testSession(expiresAt)))

	sess := st.Current()
	assert.True(t, sess.IsLoggedIn)
	assert.Equal(t, "usr-1", sess.UserID)
	assert.Contains(t, blobs.data, StorageKey)

	// a fresh store over the same blobs picks the session back up
	st2 := NewStore(blobs, nil)
	got := st2.Current()
	assert.True(t, got.IsLoggedIn)
	assert.Equal(t, "usr-1", got.UserID)
	assert.Equal(t, "Aisha Rahma", got.UserName)
	assert.Equal(t, navigation.RoleTeacher, got.Role)
	assert.Equal(t, "br-1", got.BranchID)
	assert.Equal(t, "sb-1", got.SubBranchID)
	assert.Equal(t, []string{"cls-1", "cls-2"}, got.ClassIDs)
	assert.Equal(t, BranchYear{ID: "by-1", Name: "1447H"}, got.CurrentBranchYear)
	assert.Equal(t, "tok-abc", got.Token)
	assert.True(t, got.ExpiresAt.Equal(expiresAt))
}

func TestStoreRehydrateDiscardsBadBlobs(t *testing.T) {
	tests := []struct {
		name string
		blob []byte
	}{
		{"not json", []byte("}{")},
		{"missing token", []byte(`{"userId":"u1","expiration":"2030-01-01T00:00:00Z"}`)},
		{"missing user id", []byte(`{"token":"t","expiration":"2030-01-01T00:00:00Z"}`)},
		{"bad expiration", []byte(`{"userId":"u1","token":"t","expiration":"yesterday"}`)},
		{"expired", []byte(`{"userId":"u1","token":"t","expiration":"2020-01-01T00:00:00Z"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := newMemBlobs()
			blobs.data[StorageKey] = tt.blob

			st := NewStore(blobs, nil)
			assert.False(t, st.Current().IsLoggedIn)
			// the poisoned blob must not survive for the next boot
			assert.NotContains(t, blobs.data, StorageKey)
		})
	}
}

func TestStoreLogout(t *testing.T) {
	blobs := newMemBlobs()
	st := NewStore(blobs, nil)
	require.NoError(t, st.Login(testSession(time.Now().Add(time.Hour))))

	require.NoError(t, st.Logout())
	assert.False(t, st.Current().IsLoggedIn)
	assert.Equal(t, Session{}, st.Current())
	assert.NotContains(t, blobs.data, StorageKey)
}

func TestStoreUpdateAffiliation(t *testing.T) {
	blobs := newMemBlobs()
	st := NewStore(blobs, nil)

	// not logged in
	err := st.UpdateAffiliation("br-2", "", nil, BranchYear{})
	assert.Equal(t, ErrNotLoggedIn, err)

	require.NoError(t, st.Login(testSession(time.Now().Add(time.Hour).UTC().Truncate(time.Second))))

	year := BranchYear{ID: "by-2", Name: "1448H"}
	require.NoError(t, st.UpdateAffiliation("br-2", "sb-9", []string{"cls-7"}, year))

	sess := st.Current()
	assert.Equal(t, "br-2", sess.BranchID)
	assert.Equal(t, "sb-9", sess.SubBranchID)
	assert.Equal(t, []string{"cls-7"}, sess.ClassIDs)
	assert.Equal(t, year, sess.CurrentBranchYear)

	// the persisted blob follows the update
	st2 := NewStore(blobs, nil)
	assert.Equal(t, "br-2", st2.Current().BranchID)
	assert.Equal(t, year, st2.Current().CurrentBranchYear)
}

func TestStoreExpiryTimerLogsOut(t *testing.T) {
	blobs := newMemBlobs()
	expired := make(chan struct{})
	st := NewStore(blobs, func() { close(expired) })

	require.NoError(t, st.Login(testSession(time.Now().Add(30*time.Millisecond))))
	assert.True(t, st.Current().IsLoggedIn)

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("expiry timer never fired")
	}
	assert.False(t, st.Current().IsLoggedIn)
	assert.NotContains(t, blobs.data, StorageKey)
}

func TestCurrentReturnsSnapshot(t *testing.T) {
	st := NewStore(newMemBlobs(), nil)
	require.NoError(t, st.Login(testSession(time.Now().Add(time.Hour))))

	sess := st.Current()
	sess.ClassIDs[0] = "mutated"
	assert.Equal(t, "cls-1", st.Current().ClassIDs[0])
}
