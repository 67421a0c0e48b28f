// Package auth provides credential hashing, session tokens and request
// principal helpers.
package auth

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultBcryptCost is the bcrypt cost factor used for stored passwords.
const DefaultBcryptCost = 10

// Hasher turns a plaintext password into a self-describing salted digest.
type Hasher interface {
	// Hash creates a digest with a fresh random salt.
	Hash(password string) (string, error)

	// Verify reports whether password matches digest.
	// A malformed digest returns false.
	Verify(password, digest string) bool
}

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a bcrypt hasher. Out of range costs are clamped.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash creates a bcrypt hash from a password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify checks if a password matches a bcrypt hash.
func (h *BcryptHasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// NewHasher returns the hasher named "bcrypt" or "argon2id".
// bcryptCost is ignored for argon2id.
func NewHasher(name string, bcryptCost int) (Hasher, error) {
	switch name {
	case "bcrypt":
		return NewBcryptHasher(bcryptCost), nil
	case "argon2id":
		return NewArgon2Hasher(), nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}

var (
	_ Hasher = (*BcryptHasher)(nil)
	_ Hasher = (*Argon2Hasher)(nil)
)

// HashPool runs a Hasher with bounded concurrency so a burst of logins
// cannot occupy every CPU. Callers wait on ctx for a free slot.
type HashPool struct {
	hasher Hasher
	sem    *semaphore.Weighted
}

// NewHashPool wraps hasher. A size of zero or less uses GOMAXPROCS.
func NewHashPool(hasher Hasher, size int) *HashPool {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &HashPool{
		hasher: hasher,
		sem:    semaphore.NewWeighted(int64(size)),
	}
}

// Hash digests password once a slot is free.
func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	// Acquire succeeds on a done ctx when a slot is free.
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("wait for hash slot: %w", err)
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for hash slot: %w", err)
	}
	defer p.sem.Release(1)

	return p.hasher.Hash(password)
}

// Verify compares password with digest once a slot is free.
// The error is non-nil only when ctx ends before a slot frees up.
func (p *HashPool) Verify(ctx context.Context, password, digest string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("wait for hash slot: %w", err)
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("wait for hash slot: %w", err)
	}
	defer p.sem.Release(1)

	return p.hasher.Verify(password, digest), nil
}
