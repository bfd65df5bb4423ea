package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerationForm_Fields(t *testing.T) {
	t.Run("プロンプトとアスペクト比を両方含む", func(t *testing.T) {
		f := GenerationForm{Prompt: "neon city", AspectRatio: "16:9"}
		assert.Equal(t, map[string]string{"prompt": "neon city", "aspect": "16:9"}, f.Fields())
	})

	t.Run("アスペクト比が空なら省略する", func(t *testing.T) {
		f := GenerationForm{Prompt: "cat"}
		_, ok := f.Fields()[FieldAspect]
		assert.False(t, ok)
	})
}

func TestErrorPayload_Text(t *testing.T) {
	assert.Equal(t, "Please log in", ErrorPayload{Error: "Please log in", Message: "x"}.Text())
	assert.Equal(t, "Not logged in", ErrorPayload{Message: "Not logged in"}.Text())
	assert.Empty(t, ErrorPayload{}.Text())
}

func TestAPIResult_MessageOr(t *testing.T) {
	assert.Equal(t, "Username already taken", APIResult{Message: "Username already taken"}.MessageOr("fallback"))
	assert.Equal(t, "fallback", APIResult{}.MessageOr("fallback"))
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "authorization-error", KindAuthorization.String())
	assert.Equal(t, "insufficient-credit", KindInsufficientCredit.String())
	assert.Equal(t, "unknown", ErrorKind(42).String())
}
