package webhook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	t.Run("success - https", func(t *testing.T) {
		assert.NoError(t, ValidateURL("https://example.com/hooks"))
	})

	t.Run("error - http is rejected", func(t *testing.T) {
		err := ValidateURL("http://example.com/hooks")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Contains(t, err.Error(), "https")
	})

	t.Run("error - empty", func(t *testing.T) {
		err := ValidateURL("")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("error - no host", func(t *testing.T) {
		err := ValidateURL("https://")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("error - not a url", func(t *testing.T) {
		err := ValidateURL("::not a url::")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})
}

func TestSubscribes(t *testing.T) {
	endpoint := Endpoint{Events: []string{"project.created", "member.removed"}}

	assert.True(t, endpoint.Subscribes("project.created"))
	assert.True(t, endpoint.Subscribes("member.removed"))
	assert.False(t, endpoint.Subscribes("member.invited"))
	assert.False(t, endpoint.Subscribes(""))
}
