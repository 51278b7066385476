package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetenv(t *testing.T) {
	const (
		key          = "ONEDREAM_TEST_CONFIG"
		defaultValue = "/etc/onedream/config.yml"
	)

	t.Run("unset key falls back", func(t *testing.T) {
		assert.Equal(t, defaultValue, Getenv("ONEDREAM_TEST_UNSET", defaultValue))
	})
	t.Run("empty value wins over default", func(t *testing.T) {
		t.Setenv(key, "")
		assert.Empty(t, Getenv(key, defaultValue))
	})
	t.Run("set value", func(t *testing.T) {
		t.Setenv(key, "/tmp/config.yml")
		assert.Equal(t, "/tmp/config.yml", Getenv(key, defaultValue))
	})
}
