package account

import "golang.org/x/crypto/bcrypt"

// MaxSecretBytes is the longest secret bcrypt accepts.
const MaxSecretBytes = 72

// SecretHasher hashes secrets and checks a secret against a stored hash.
type SecretHasher interface {
	Hash(secret string) (string, error)
	// Compare returns nil when secret matches hash.
	Compare(hash, secret string) error
}

// BcryptHasher implements SecretHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

var _ SecretHasher = (*BcryptHasher)(nil)

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when
// cost is zero.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash, secret string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret))
}
