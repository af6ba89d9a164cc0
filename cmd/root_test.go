// cmd/root_test.go
package cmd

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsert/zarm-web/internal/config"
)

func TestRootCmd_VersionFlag(t *testing.T) {
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestVersionCmd(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "zarm-popper "+Version+"\n", out)
}

func TestRootCmd_NoArgsPrintsHelp(t *testing.T) {
	out, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "place")
	assert.Contains(t, out, "watch")
}

func TestRootCmd_Subcommands(t *testing.T) {
	var names []string
	for _, c := range NewRootCommand().Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"place", "watch", "version"}, names)
}

func TestInitializeConfig(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "zarm.yaml", "popper:\n  placement: left\n")
		v := viper.New()
		config.SetDefaults(v)

		require.NoError(t, initializeConfig(v, path))
		assert.Equal(t, path, v.ConfigFileUsed())
		assert.Equal(t, "left", v.GetString("popper.placement"))
	})

	t.Run("missing explicit file", func(t *testing.T) {
		err := initializeConfig(viper.New(), "/nonexistent/zarm.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv("ZARM_POPPER_OFFSET", "12")
		v := viper.New()
		config.SetDefaults(v)

		require.NoError(t, initializeConfig(v, ""))
		assert.Equal(t, 12.0, v.GetFloat64("popper.offset"))
	})
}

func TestInvalidConfigurationFails(t *testing.T) {
	t.Setenv("ZARM_POPPER_PLACEMENT", "sideways")
	_, err := executeCommand(t, "place", "x.html", "--reference", "//a", "--popper", "//b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestGetConfigFromContext(t *testing.T) {
	_, err := getConfigFromContext(context.Background())
	assert.EqualError(t, err, "configuration not loaded")

	cfg := config.NewDefaultConfig()
	got, err := getConfigFromContext(context.WithValue(context.Background(), configKey, cfg))
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
