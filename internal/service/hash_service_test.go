package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheapParams keeps the suite fast; production cost is covered separately.
var cheapParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestArgon2HashService_HashAndVerify(t *testing.T) {
	svc := NewArgon2HashService()

	secret := "terminal-client-secret"
	hash, err := svc.Hash(secret)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	// Format check
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v="), "hash should start with $argon2id$v=")
	assert.Contains(t, hash, "m=65536,t=1,p=4", "hash should contain Argon2id params")

	match, err := svc.Verify(secret, hash)
	require.NoError(t, err)
	assert.True(t, match, "correct secret should verify")
}

func TestArgon2HashService_VerifyWrongSecret(t *testing.T) {
	svc := NewArgon2HashServiceWithParams(cheapParams)

	hash, err := svc.Hash("correct-secret")
	require.NoError(t, err)

	match, err := svc.Verify("wrong-secret", hash)
	require.NoError(t, err)
	assert.False(t, match, "wrong secret should not verify")
}

func TestArgon2HashService_UniqueSalts(t *testing.T) {
	svc := NewArgon2HashServiceWithParams(cheapParams)

	hash1, err := svc.Hash("same-secret")
	require.NoError(t, err)

	hash2, err := svc.Hash("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "same secret should produce different hashes (different salts)")
}

func TestArgon2HashService_VerifiesAcrossParams(t *testing.T) {
	hash, err := NewArgon2HashServiceWithParams(cheapParams).Hash("rotated")
	require.NoError(t, err)

	match, err := NewArgon2HashService().Verify("rotated", hash)
	require.NoError(t, err)
	assert.True(t, match)
}

func TestArgon2HashService_VerifyInvalidFormat(t *testing.T) {
	svc := NewArgon2HashServiceWithParams(cheapParams)

	cases := []string{
		"not-a-valid-hash",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=16$m=8192,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=99999999,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=0,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$aGFzaA",
	}
	for _, h := range cases {
		_, err := svc.Verify("secret", h)
		assert.Error(t, err, h)
	}
}

func TestArgon2HashService_LongSecret(t *testing.T) {
	svc := NewArgon2HashServiceWithParams(cheapParams)

	long := strings.Repeat("a", 1000)
	hash, err := svc.Hash(long)
	require.NoError(t, err)

	match, err := svc.Verify(long, hash)
	require.NoError(t, err)
	assert.True(t, match)
}
