package service

import (
	"errors"

	"taskmanager/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt silently truncates beyond 72 bytes; reject instead.
const maxPasswordBytes = 72

// PasswordHasher wraps bcrypt with a configurable cost.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt digest of plaintext. Two calls with the same
// plaintext produce different digests.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", domain.ErrPasswordTooLong
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	return err == nil
}

// dummyDigest is compared against on login when the email is unknown, so the
// unknown-email and wrong-password paths take similar time.
var dummyDigest = func() string {
	d, err := bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcrypt.MinCost)
	if err != nil {
		panic(errors.Join(errors.New("bcrypt self-check failed"), err))
	}
	return string(d)
}()
