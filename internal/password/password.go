// Package password implements Argon2id password hashing with self-describing
// hash strings, upgrade-in-place detection, and strength validation.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
)

// Params controls the Argon2id cost. The values are embedded in every hash so
// that verification works after the configured cost changes.
type Params struct {
	Time        uint32
	MemoryKiB   uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns the baseline cost parameters.
func DefaultParams() Params {
	return Params{
		Time:        2,
		MemoryKiB:   64 * 1024,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

const specialChars = `!@#$%^&*(),.?":{}|<>`

var commonPasswords = map[string]struct{}{
	"password":    {},
	"123456":      {},
	"password123": {},
	"admin":       {},
	"qwerty":      {},
}

var errMalformedHash = errors.New("malformed password hash")

// Service hashes and verifies passwords. Construct with NewService; the zero
// value is not usable.
type Service struct {
	params    Params
	minLength int
}

// NewService creates a password service with the given cost parameters and
// minimum password length. Zero cost fields fall back to the defaults.
func NewService(params Params, minLength int) *Service {
	def := DefaultParams()
	if params.Time == 0 {
		params.Time = def.Time
	}
	if params.MemoryKiB == 0 {
		params.MemoryKiB = def.MemoryKiB
	}
	if params.Parallelism == 0 {
		params.Parallelism = def.Parallelism
	}
	if params.SaltLength == 0 {
		params.SaltLength = def.SaltLength
	}
	if params.KeyLength == 0 {
		params.KeyLength = def.KeyLength
	}
	if minLength <= 0 {
		minLength = 8
	}
	return &Service{params: params, minLength: minLength}
}

// Hash derives an Argon2id hash of password with a fresh random salt. The
// returned string embeds the algorithm parameters and salt:
//
//	$argon2id$v=19$m=65536,t=2,p=2$<base64 salt>$<base64 key>
func (s *Service) Hash(password string) (string, error) {
	salt := make([]byte, s.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, s.params.Time, s.params.MemoryKiB, s.params.Parallelism, s.params.KeyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, s.params.MemoryKiB, s.params.Time, s.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify recomputes the hash using the parameters embedded in encoded and
// compares in constant time. It returns false on mismatch or a malformed
// hash, never an error.
func (s *Service) Verify(password, encoded string) bool {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Time, params.MemoryKiB, params.Parallelism, params.KeyLength)
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

// NeedsRehash reports whether the embedded cost parameters are weaker than the
// currently configured ones. Malformed hashes always need a rehash. Callers
// should re-hash and persist after the next successful verification.
func (s *Service) NeedsRehash(encoded string) bool {
	params, _, _, err := decodeHash(encoded)
	if err != nil {
		return true
	}
	return params.Time < s.params.Time ||
		params.MemoryKiB < s.params.MemoryKiB ||
		params.Parallelism < s.params.Parallelism ||
		params.KeyLength < s.params.KeyLength
}

// ValidateStrength checks password against the strength rules and returns all
// violated rules, not just the first.
func (s *Service) ValidateStrength(password string) (bool, []string) {
	var violations []string

	if len(password) < s.minLength {
		violations = append(violations, fmt.Sprintf("password must be at least %d characters", s.minLength))
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}
	if !hasUpper {
		violations = append(violations, "password must contain at least one uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "password must contain at least one lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "password must contain at least one digit")
	}
	if !hasSpecial {
		violations = append(violations, "password must contain at least one special character")
	}

	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		violations = append(violations, "password is too common")
	}

	return len(violations) == 0, violations
}

func decodeHash(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, errMalformedHash
	}

	var params Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.MemoryKiB, &params.Time, &params.Parallelism); err != nil {
		return Params{}, nil, nil, errMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, errMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, errMalformedHash
	}

	params.SaltLength = uint32(len(salt))
	params.KeyLength = uint32(len(key))

	return params, salt, key, nil
}
