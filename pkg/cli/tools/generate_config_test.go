package tools_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/shopdesk/pkg/cli/config"
	"github.com/m-mizutani/shopdesk/pkg/cli/tools"
)

func TestWriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shopdesk.yaml")

	gt.NoError(t, tools.WriteConfig(path, false)).Required()
	data, err := os.ReadFile(path)
	gt.NoError(t, err).Required()
	gt.Equal(t, string(data), config.DefaultConfigFile())

	t.Run("existing file is kept", func(t *testing.T) {
		gt.NoError(t, os.WriteFile(path, []byte("mine"), 0600)).Required()
		gt.Error(t, tools.WriteConfig(path, false))

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.Equal(t, string(data), "mine")
	})

	t.Run("force overwrites", func(t *testing.T) {
		gt.NoError(t, tools.WriteConfig(path, true))
		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.Equal(t, string(data), config.DefaultConfigFile())
	})
}
