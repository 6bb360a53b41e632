package telemetry_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/picoctl/internal/governor"
	"codeberg.org/mutker/picoctl/internal/telemetry"
)

func testConfig(t *testing.T) telemetry.Config {
	t.Helper()

	cfg := telemetry.DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = filepath.Join(t.TempDir(), "telemetry.db")
	cfg.BatchSize = 2
	cfg.BatchTimeout = 60

	return cfg
}

func snapshot(profile governor.Profile, load float64) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Timestamp: time.Now(),
		Status: governor.Status{
			Chip:         governor.ChipRP2350,
			Profile:      profile,
			FrequencyKHz: 150000,
			Load:         load,
			Temperature:  42.5,
		},
	}
}

func countSnapshots(t *testing.T, path string) int {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n))

	return n
}

func TestServiceRecordsSnapshots(t *testing.T) {
	cfg := testConfig(t)

	collector, err := telemetry.NewService(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, collector.Record(ctx, snapshot(governor.ProfileBalanced, 18.2)))
	require.NoError(t, collector.Record(ctx, snapshot(governor.ProfileTurbo, 88.0)))
	require.NoError(t, collector.Record(ctx, snapshot(governor.ProfilePowersave, 3.1)))
	require.NoError(t, collector.Close())

	// two flushed by the batch size, one by the final flush on close
	assert.Equal(t, 3, countSnapshots(t, cfg.DBPath))
}

func TestServiceRejectsNilSnapshot(t *testing.T) {
	collector, err := telemetry.NewService(testConfig(t))
	require.NoError(t, err)
	defer collector.Close()

	assert.Error(t, collector.Record(context.Background(), nil))
}

func TestServiceHonorsCancelledContext(t *testing.T) {
	collector, err := telemetry.NewService(testConfig(t))
	require.NoError(t, err)
	defer collector.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, collector.Record(ctx, snapshot(governor.ProfileBalanced, 10)))
}

func TestDisabledServiceIsNoop(t *testing.T) {
	cfg := telemetry.DefaultConfig()
	cfg.Enabled = false
	cfg.DBPath = ""

	collector, err := telemetry.NewService(cfg)
	require.NoError(t, err)

	assert.NoError(t, collector.Record(context.Background(), snapshot(governor.ProfileBalanced, 10)))
	assert.NoError(t, collector.Close())
}

func TestSchemaVersionRecorded(t *testing.T) {
	cfg := testConfig(t)

	repo, err := telemetry.NewRepository(cfg)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()

	var version int
	require.NoError(t, db.QueryRow("SELECT MAX(version) FROM schema_versions").Scan(&version))
	assert.Equal(t, telemetry.SchemaVersion, version)
}
