package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{Output: io.Discard})
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FINBOARD_CONFIG", "PORT", "DATA_BACKEND", "AMQP_URL", "GOOGLE_SPREADSHEET_ID",
		"SYNC_BATCH_SIZE", "SYNC_INTERVAL", "DEFAULT_PAGE_SIZE", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestBootstrap(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9191")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("LOG_FORMAT", "json")

	cfg, logger, err := Bootstrap(log.ComponentCLI)
	require.NoError(t, err)
	assert.Equal(t, "9191", cfg.Port)
	assert.Equal(t, log.ComponentCLI, logger.Component())
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_BACKEND", "postgres")

	_, _, err := Bootstrap(log.ComponentCLI)
	assert.ErrorContains(t, err, "invalid data backend")
}

func TestOpenSQLite(t *testing.T) {
	repo, err := OpenSQLite(quietLogger(), filepath.Join(t.TempDir(), "finboard.db"))
	require.NoError(t, err)
	defer repo.Close()
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestSignalContext_ParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := SignalContext(parent, quietLogger())
	defer cancel()

	cancelParent()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should follow its parent")
	}
}

func TestShutdown(t *testing.T) {
	err := Shutdown(quietLogger(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	assert.NoError(t, Shutdown(quietLogger(), time.Second, func(context.Context) error { return nil }))
}

func TestIgnoreCanceled(t *testing.T) {
	assert.NoError(t, IgnoreCanceled(nil))
	assert.NoError(t, IgnoreCanceled(fmt.Errorf("consume: %w", context.Canceled)))
	boom := errors.New("boom")
	assert.Equal(t, boom, IgnoreCanceled(boom))
}
