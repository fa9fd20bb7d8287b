package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword("short"))
	assert.True(t, ValidatePassword("longenough"))
	assert.False(t, ValidatePassword(strings.Repeat("x", MaxLength+1)))
}

func TestFingerprint(t *testing.T) {
	fp := Fingerprint("session-token")
	assert.Len(t, fp, 12)
	assert.True(t, strings.HasPrefix(HashToken("session-token"), fp))
	assert.NotContains(t, fp, "session")
	assert.Empty(t, Fingerprint(""))
}
