package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Run("loads known prompt", func(t *testing.T) {
		prompt, err := Get("letters.json", "draft-cover-letter")
		require.NoError(t, err)
		assert.NotEmpty(t, prompt)
		assert.Contains(t, prompt, "{{.JobTitle}}")
	})

	t.Run("unknown key errors", func(t *testing.T) {
		_, err := Get("letters.json", "does-not-exist")
		assert.Error(t, err)
	})

	t.Run("unknown file errors", func(t *testing.T) {
		_, err := Get("missing.json", "draft-cover-letter")
		assert.Error(t, err)
	})
}

func TestMustGet(t *testing.T) {
	t.Run("returns prompt", func(t *testing.T) {
		assert.NotEmpty(t, MustGet("letters.json", "judge-cover-letter"))
	})

	t.Run("panics on missing key", func(t *testing.T) {
		assert.Panics(t, func() { MustGet("letters.json", "does-not-exist") })
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, apply to {{.Company}}. {{.Name}} again."
	result := Format(template, map[string]string{"Name": "Jane", "Company": "Acme"})
	assert.Equal(t, "Hello Jane, apply to Acme. Jane again.", result)
}

func TestList(t *testing.T) {
	keys, err := List("letters.json")
	require.NoError(t, err)
	assert.Contains(t, keys, "draft-cover-letter")
	assert.Contains(t, keys, "judge-cover-letter")
	assert.Contains(t, keys, "judge-cover-letter-strict")
	assert.Contains(t, keys, "refine-cover-letter")
}

func TestCaching(t *testing.T) {
	ClearCache()
	_, err := Get("letters.json", "draft-cover-letter")
	require.NoError(t, err)

	// Second read comes from cache and matches.
	first := MustGet("letters.json", "draft-cover-letter")
	second := MustGet("letters.json", "draft-cover-letter")
	assert.Equal(t, first, second)
}
