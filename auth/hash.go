package auth

import "golang.org/x/crypto/bcrypt"

// Hasher hashes and verifies passwords, hiding the underlying algorithm.
type Hasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check reports whether password matches hash. Any mismatch or
	// malformed hash is false, never an error.
	Check(password, hash string) bool
}

// BcryptHasher is the bcrypt-backed Hasher.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher builds a hasher with the given cost factor; values outside
// bcrypt's range fall back to the default cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Check(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
