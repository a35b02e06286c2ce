package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGenUniqID(t *testing.T) {
	SetupIDWorker(1)

	a, b := GenUniqIDStr(), GenUniqIDStr()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}

func TestGenAPIKey(t *testing.T) {
	key := GenAPIKey()
	parsed, err := uuid.Parse(key)
	assert.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.NotEqual(t, key, GenAPIKey())
}

func TestIsMobileNumber(t *testing.T) {
	assert.True(t, IsMobileNumber("9876543210"))
	assert.False(t, IsMobileNumber("98765"))
	assert.False(t, IsMobileNumber("98765432ab"))
}

func TestRandom(t *testing.T) {
	for i := 0; i < 20; i++ {
		n := Random(1, 3)
		assert.True(t, n >= 1 && n <= 3)
	}
	assert.Len(t, RandomStr(12), 12)
}
