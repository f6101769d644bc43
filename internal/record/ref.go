package record

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	herrors "github.com/PolarWolf314/handoff/internal/errors"
	"github.com/PolarWolf314/handoff/internal/keystore"
)

// Ref names either an identity (latest record) or a single record.
// A token is a Ref with an ID: "<pubkey>/<id>".
type Ref struct {
	Pubkey string
	ID     string
}

// NewToken returns a token for a new record published by pubkey.
func NewToken(pubkey string) Ref {
	return Ref{Pubkey: pubkey, ID: strings.ReplaceAll(uuid.NewString(), "-", "")}
}

// IsToken reports whether r names a single record.
func (r Ref) IsToken() bool {
	return r.ID != ""
}

func (r Ref) String() string {
	if r.ID == "" {
		return r.Pubkey
	}
	return r.Pubkey + "/" + r.ID
}

// ParseRef accepts "<pubkey>" or "<pubkey>/<id>".
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	pubkey, id, hasID := strings.Cut(s, "/")

	if _, err := keystore.ParseID(pubkey); err != nil {
		return Ref{}, err
	}
	if !hasID {
		return Ref{Pubkey: pubkey}, nil
	}

	if len(id) != 32 || strings.ToLower(id) != id {
		return Ref{}, fmt.Errorf("%w: bad record id %q", herrors.ErrMalformedReference, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return Ref{}, fmt.Errorf("%w: bad record id %q", herrors.ErrMalformedReference, id)
	}
	return Ref{Pubkey: pubkey, ID: id}, nil
}
