package session

import (
	"sync"
	"time"

	"github.com/markazhub/markaz/core/navigation"
)

// StorageKey is the fixed key the session blob lives under.
const StorageKey = "markaz:session"

var NowFunc = time.Now // mockable

type (
	// BranchYear is the academic period the session currently operates in.
	BranchYear struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// Session is the logged-in user's identity, role and affiliations.
	Session struct {
		IsLoggedIn        bool
		UserID            string
		UserName          string
		Role              navigation.Role
		BranchID          string
		SubBranchID       string
		ClassIDs          []string
		CurrentBranchYear BranchYear
		Token             string
		ExpiresAt         time.Time
	}

	// BlobStore persists the serialized session under a fixed key.
	BlobStore interface {
		Get(key string) ([]byte, error)
		Set(key string, value []byte) error
		Delete(key string) error
	}

	// Store owns the process-wide session with single-writer semantics:
	// only Login, Logout and UpdateAffiliation mutate it, reads are
	// snapshots. Lifecycle: NewStore (attempts rehydrate) -> active ->
	// expired/teardown.
	Store struct {
		mu       sync.Mutex
		sess     Session
		blobs    BlobStore
		expiry   *time.Timer
		onExpire func()
	}
)

// ErrNotFound is returned by BlobStore.Get when the key is absent.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "session blob not found" }

// ErrNotLoggedIn is returned by mutations that need an active session.
var ErrNotLoggedIn = errNotLoggedIn{}

type errNotLoggedIn struct{}

func (errNotLoggedIn) Error() string { return "not logged in" }

// NewStore builds a Store and attempts to rehydrate a persisted session.
// An absent, malformed or expired blob all start the session unauthenticated
// and clear the storage key. onExpire (optional) runs after an automatic
// logout fired by the expiry timer.
func NewStore(blobs BlobStore, onExpire func()) *Store {
	st := &Store{blobs: blobs, onExpire: onExpire}
	st.rehydrate()
	return st
}

func (st *Store) rehydrate() {
	data, err := st.blobs.Get(StorageKey)
	if err != nil {
		return
	}
	sess, err := decodeBlob(data)
	if err != nil || !sess.ExpiresAt.After(NowFunc()) {
		_ = st.blobs.Delete(StorageKey)
		return
	}
	st.sess = sess
	st.armExpiry()
}

// Current returns a snapshot of the session.
func (st *Store) Current() Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess := st.sess
	sess.ClassIDs = append([]string(nil), sess.ClassIDs...)
	return sess
}

// Login activates sess, persists it and arms the expiry timer.
func (st *Store) Login(sess Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess.IsLoggedIn = true
	st.sess = sess
	st.armExpiry()
	return st.blobs.Set(StorageKey, encodeBlob(sess))
}

// Logout tears the session down and clears the persisted blob.
func (st *Store) Logout() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.logoutLocked()
}

func (st *Store) logoutLocked() error {
	if st.expiry != nil {
		st.expiry.Stop()
		st.expiry = nil
	}
	st.sess = Session{}
	return st.blobs.Delete(StorageKey)
}

// UpdateAffiliation replaces the session's affiliation identifiers and
// current academic period, re-persisting the blob.
func (st *Store) UpdateAffiliation(branchID, subBranchID string, classIDs []string, year BranchYear) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.sess.IsLoggedIn {
		return ErrNotLoggedIn
	}
	st.sess.BranchID = branchID
	st.sess.SubBranchID = subBranchID
	st.sess.ClassIDs = append([]string(nil), classIDs...)
	st.sess.CurrentBranchYear = year
	return st.blobs.Set(StorageKey, encodeBlob(st.sess))
}

// armExpiry (re)schedules the automatic logout at ExpiresAt.
// Caller must hold st.mu.
func (st *Store) armExpiry() {
	if st.expiry != nil {
		st.expiry.Stop()
	}
	delta := st.sess.ExpiresAt.Sub(NowFunc())
	st.expiry = time.AfterFunc(delta, func() {
		st.mu.Lock()
		_ = st.logoutLocked()
		cb := st.onExpire
		st.mu.Unlock()
		if cb != nil {
			cb()
		}
	})
}
