package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap keeps hashing fast in tests.
var cheap = NewPolicy(Policy{Time: 1, MemoryKiB: 1024, Threads: 1})

func TestHashAndVerify(t *testing.T) {
	encoded, err := cheap.Hash("correct-horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.True(t, Verify("correct-horse", encoded))
	assert.False(t, Verify("wrong-horse", encoded))
}

func TestHashIsSalted(t *testing.T) {
	a, err := cheap.Hash("same-password")
	require.NoError(t, err)
	b, err := cheap.Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyUsesEncodedCost(t *testing.T) {
	old, err := cheap.Hash("lager-clara")
	require.NoError(t, err)

	stronger := NewPolicy(Policy{Time: 2, MemoryKiB: 2048, Threads: 2})
	current, err := stronger.Hash("lager-clara")
	require.NoError(t, err)
	assert.Contains(t, current, "$m=2048,t=2,p=2$")

	assert.True(t, Verify("lager-clara", old))
	assert.True(t, Verify("lager-clara", current))
}

func TestVerifyRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain",
		"$argon2i$v=19$m=1,t=1,p=1$aa$bb",
		"$argon2id$v=19$m=x,t=1,p=1$aa$bb",
		"$argon2id$v=19$m=0,t=1,p=1$aa$bb",
		"$argon2id$v=18$m=1024,t=1,p=1$aa$bb",
	} {
		assert.False(t, Verify("pw", encoded), encoded)
	}
}

func TestPolicyDefaultsAndMinLength(t *testing.T) {
	p := NewPolicy(Policy{})
	assert.Equal(t, DefaultMinLength, p.MinLength)
	assert.Equal(t, DefaultTime, p.Time)
	assert.Equal(t, DefaultMemoryKiB, p.MemoryKiB)
	assert.Equal(t, DefaultThreads, p.Threads)

	assert.ErrorIs(t, p.Validate("short"), ErrTooShort)
	assert.ErrorIs(t, p.Validate("   seven  "), ErrTooShort)
	assert.NoError(t, p.Validate("eight-ch"))

	strict := NewPolicy(Policy{MinLength: 12})
	assert.ErrorIs(t, strict.Validate("eleven-char"), ErrTooShort)
	assert.NoError(t, strict.Validate("twelve-chars"))
}
