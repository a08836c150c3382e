package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	// Low cost keeps the test suite fast.
	return Params{Time: 1, MemoryKiB: 8 * 1024, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestService_HashAndVerify(t *testing.T) {
	svc := NewService(testParams(), 8)

	hash, err := svc.Hash("Secur3!Pass")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	assert.True(t, svc.Verify("Secur3!Pass", hash))
	assert.False(t, svc.Verify("Secur3!Pas", hash))
	assert.False(t, svc.Verify("", hash))
}

func TestService_Hash_RandomSalt(t *testing.T) {
	svc := NewService(testParams(), 8)

	h1, err := svc.Hash("Secur3!Pass")
	require.NoError(t, err)
	h2, err := svc.Hash("Secur3!Pass")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, svc.Verify("Secur3!Pass", h1))
	assert.True(t, svc.Verify("Secur3!Pass", h2))
}

func TestService_Verify_MalformedHash(t *testing.T) {
	svc := NewService(testParams(), 8)

	for _, encoded := range []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$***$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA",
	} {
		assert.False(t, svc.Verify("Secur3!Pass", encoded), "encoded=%q", encoded)
	}
}

func TestService_NeedsRehash(t *testing.T) {
	weak := NewService(Params{Time: 1, MemoryKiB: 8 * 1024, Parallelism: 1}, 8)
	strong := NewService(Params{Time: 2, MemoryKiB: 16 * 1024, Parallelism: 1}, 8)

	weakHash, err := weak.Hash("Secur3!Pass")
	require.NoError(t, err)
	strongHash, err := strong.Hash("Secur3!Pass")
	require.NoError(t, err)

	assert.False(t, weak.NeedsRehash(weakHash))
	assert.False(t, strong.NeedsRehash(strongHash))

	// Hash produced with weaker parameters than configured.
	assert.True(t, strong.NeedsRehash(weakHash))

	// Stronger-than-configured parameters do not need a rehash.
	assert.False(t, weak.NeedsRehash(strongHash))

	assert.True(t, strong.NeedsRehash("garbage"))
}

func TestService_ValidateStrength(t *testing.T) {
	svc := NewService(testParams(), 8)

	tests := []struct {
		name       string
		password   string
		ok         bool
		violations int
	}{
		{name: "valid", password: "Secur3!Pass", ok: true},
		{name: "too short", password: "S3!a", ok: false, violations: 1},
		{name: "no uppercase", password: "secur3!pass", ok: false, violations: 1},
		{name: "no lowercase", password: "SECUR3!PASS", ok: false, violations: 1},
		{name: "no digit", password: "Secure!Pass", ok: false, violations: 1},
		{name: "no special", password: "Secur3Pass", ok: false, violations: 1},
		{name: "reports every violation", password: "abc", ok: false, violations: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, violations := svc.ValidateStrength(tt.password)
			assert.Equal(t, tt.ok, ok)
			assert.Len(t, violations, tt.violations)
		})
	}
}

func TestService_ValidateStrength_CommonPassword(t *testing.T) {
	svc := NewService(testParams(), 4)

	ok, violations := svc.ValidateStrength("qwerty")
	assert.False(t, ok)
	assert.Contains(t, violations, "password is too common")
}
