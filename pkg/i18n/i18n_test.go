package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLang(t *testing.T) {
	l := NewLocalizer("zh-CN", "en")

	assert.Equal(t, "Channel not found", l.Get("en", ERROR_CHANNEL_NOT_FOUND))
	assert.Equal(t, "频道不存在", l.Get("zh-CN", ERROR_CHANNEL_NOT_FOUND))
	// unknown languages fall back to english
	assert.Equal(t, "No valid fields provided", l.Get("fr", ERROR_NO_VALID_FIELDS))
	// unknown ids are echoed back
	assert.Equal(t, "error.whatever", l.Get("en", "error.whatever"))
	assert.ElementsMatch(t, []string{"en", "zh-CN"}, l.Languages())
}
