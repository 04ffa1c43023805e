package session

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/markazhub/markaz/core/navigation"
)

// sessionBlob is the persisted wire form of a Session. Expiration travels as
// an ISO-8601 string; everything else round-trips verbatim.
type sessionBlob struct {
	UserID              string   `json:"userId"`
	Name                string   `json:"name"`
	Role                string   `json:"role"`
	BranchID            string   `json:"branchId,omitempty"`
	SubBranchID         string   `json:"subBranchId,omitempty"`
	CurrentBranchYear   string   `json:"currentBranchYear,omitempty"`
	CurrentBranchYearID string   `json:"currentBranchYearId,omitempty"`
	UserClassIDs        []string `json:"userClassIds,omitempty"`
	Token               string   `json:"token"`
	Expiration          string   `json:"expiration"`
}

var errMalformedBlob = errors.New("malformed session blob")

func encodeBlob(sess Session) []byte {
	blob := sessionBlob{
		UserID:              sess.UserID,
		Name:                sess.UserName,
		Role:                string(sess.Role),
		BranchID:            sess.BranchID,
		SubBranchID:         sess.SubBranchID,
		CurrentBranchYear:   sess.CurrentBranchYear.Name,
		CurrentBranchYearID: sess.CurrentBranchYear.ID,
		UserClassIDs:        sess.ClassIDs,
		Token:               sess.Token,
		Expiration:          sess.ExpiresAt.UTC().Format(time.RFC3339),
	}
	data, _ := json.Marshal(blob)
	return data
}

func decodeBlob(data []byte) (Session, error) {
	var blob sessionBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return Session{}, errors.Wrap(err, "decoding session blob")
	}
	if blob.UserID == "" || blob.Token == "" || blob.Expiration == "" {
		return Session{}, errMalformedBlob
	}
	expiresAt, err := time.Parse(time.RFC3339, blob.Expiration)
	if err != nil {
		return Session{}, errors.Wrap(err, "parsing session expiration")
	}

	return Session{
		IsLoggedIn:  true,
		UserID:      blob.UserID,
		UserName:    blob.Name,
		Role:        navigation.Role(blob.Role),
		BranchID:    blob.BranchID,
		SubBranchID: blob.SubBranchID,
		ClassIDs:    blob.UserClassIDs,
		CurrentBranchYear: BranchYear{
			ID:   blob.CurrentBranchYearID,
			Name: blob.CurrentBranchYear,
		},
		Token:     blob.Token,
		ExpiresAt: expiresAt,
	}, nil
}
