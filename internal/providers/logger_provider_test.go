package providers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starbot/internal/structures"
)

func TestGetLogTypeByEndpoint_Command(t *testing.T) {
	assert.Equal(t, TypeCommand, GetLogTypeByEndpoint("/slack/command"))
}

func TestGetLogTypeByEndpoint_Interact(t *testing.T) {
	assert.Equal(t, TypeInteract, GetLogTypeByEndpoint("/slack/interact"))
}

func TestGetLogTypeByEndpoint_Other(t *testing.T) {
	assert.Equal(t, TypeApp, GetLogTypeByEndpoint("/health"))
	assert.Equal(t, TypeApp, GetLogTypeByEndpoint("/metrics"))
}

func TestNewLogProvider_CreatesLogFiles(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   dir,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof(TypeApp, "test message")
	logger.Warnf(TypeCommand, "command message")
	logger.Errorf(TypeInteract, "interact message")
	logger.Infof(TypeNotify, "notify message")

	// Each stream must end up with its message in its own file.
	expected := map[string]string{
		"app.log":      "test message",
		"command.log":  "command message",
		"interact.log": "interact message",
		"notify.log":   "notify message",
	}
	for name, msg := range expected {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), msg, name)
	}
}

func TestLogProvider_EveryLevelWrites(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "debug",
			Mode:  0644,
			Dir:   dir,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf(TypeApp, "debug line")
	logger.Infof(TypeApp, "info line")
	logger.Warnf(TypeApp, "warn line")
	logger.Errorf(TypeApp, "error line")

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	for _, msg := range []string{"debug line", "info line", "warn line", "error line"} {
		assert.Contains(t, string(data), msg)
	}
}

func TestNewLogProvider_UnknownTypeFallsBackToApp(t *testing.T) {
	dir := t.TempDir()
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   dir,
		},
	}

	logger, err := NewLogProvider(conf)
	require.NoError(t, err)
	defer logger.Close()

	// Must not panic.
	logger.Infof(TypeEnum(99), "stray message")
}

func TestNewLogProvider_InvalidDir(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/nonexistent/directory/path",
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}

func TestNewLogProvider_InvalidLevel(t *testing.T) {
	conf := &structures.Config{
		Logger: structures.LoggerConfig{
			Level: "loudest",
			Mode:  0644,
			Dir:   t.TempDir(),
		},
	}

	_, err := NewLogProvider(conf)
	assert.Error(t, err)
}
