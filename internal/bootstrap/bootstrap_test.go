package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infrahealth "github.com/Mod5ied/eagle-server/infrastructure/health"
	infralogger "github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/internal/bootstrap"
	"github.com/Mod5ied/eagle-server/internal/config"
)

func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_SECRET", "bootstrap-secret")
	t.Setenv("FRONTEND_ORIGIN", "http://localhost:5173")
	t.Setenv("DEMO_EMAIL", "demo@example.com")
	t.Setenv("DEMO_PASSWORD", "password123")
	return filepath.Join(dir, "config.yml")
}

func TestSetupStore_Memory(t *testing.T) {
	path := testEnv(t)

	cfg, err := bootstrap.LoadConfig(path)
	require.NoError(t, err)

	st, err := bootstrap.SetupStore(context.Background(), cfg, infralogger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	assert.Equal(t, config.DriverMemory, st.Driver())
}

func TestSetupStore_Redis(t *testing.T) {
	path := testEnv(t)
	mr := miniredis.RunT(t)
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_ADDRESS", mr.Addr())

	cfg, err := bootstrap.LoadConfig(path)
	require.NoError(t, err)

	st, err := bootstrap.SetupStore(context.Background(), cfg, infralogger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	assert.Equal(t, config.DriverRedis, st.Driver())
}

func TestSetupStore_RedisUnreachable(t *testing.T) {
	path := testEnv(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("REDIS_ADDRESS", addr)

	cfg, err := bootstrap.LoadConfig(path)
	require.NoError(t, err)

	_, err = bootstrap.SetupStore(context.Background(), cfg, infralogger.NewNop())
	require.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := testEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := bootstrap.LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRunHealthcheck_WritesReport(t *testing.T) {
	path := testEnv(t)

	var out bytes.Buffer
	report, err := bootstrap.RunHealthcheck(context.Background(), path, "test", &out)
	require.NoError(t, err)

	var decoded infrahealth.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, report.Status, decoded.Status)

	require.Contains(t, decoded.Checks, "store")
	require.Contains(t, decoded.Checks, "system")
	assert.Equal(t, infrahealth.StatusHealthy, decoded.Checks["store"].Status)
}
