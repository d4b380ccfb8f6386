// Package passwords hashes and verifies user passwords with bcrypt.
package passwords

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// Hasher produces bcrypt digests at a fixed cost. The zero value uses
// bcrypt.DefaultCost.
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher validates cost and precomputes the digest used by Equalize.
func NewHasher(cost int) (*Hasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	h := &Hasher{cost: cost}

	seed, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("dummy seed: %w", err)
	}
	if h.dummy, err = h.Hash(seed); err != nil {
		return nil, err
	}

	return h, nil
}

func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns a salted bcrypt digest of plain. Passwords longer than 72
// bytes are rejected with an error matching common.ErrWeakPassword.
func (h *Hasher) Hash(plain string) ([]byte, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: %w", common.ErrWeakPassword, err)
	}
	if err != nil {
		return nil, fmt.Errorf("bcrypt error: %w", err)
	}
	return digest, nil
}

// Verify reports whether plain matches digest. Malformed digests simply
// don't match.
func (h *Hasher) Verify(plain string, digest []byte) bool {
	return bcrypt.CompareHashAndPassword(digest, []byte(plain)) == nil
}

// Equalize spends the same work as a real Verify. Call it when the account
// does not exist.
func (h *Hasher) Equalize(plain string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}
