package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
	require.NoError(t, ValidateFS(Embedded(), embeddedDir))

	names, err := fs.Glob(Embedded(), "migrations/*.sql")
	require.NoError(t, err)
	assert.Len(t, names, 4)
}

func TestSchemaMigrationsDeclareConstraints(t *testing.T) {
	content := readMigrations(t, "*_create_*.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CONSTRAINT users_username_key UNIQUE (username)",
		"CONSTRAINT users_email_key UNIQUE (email)",
		"CONSTRAINT users_phone_key UNIQUE (phone)",
		"CREATE TABLE IF NOT EXISTS user_characters",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_user_characters_user_character",
		"CHECK (level BETWEEN 1 AND 90)",
		"CHECK (constellations BETWEEN 1 AND 6)",
		"CHECK (attack_level BETWEEN 1 AND 10)",
		"CHECK (skill_level BETWEEN 1 AND 10)",
		"CHECK (burst_level BETWEEN 1 AND 10)",
		"REFERENCES weapons (id) ON UPDATE CASCADE ON DELETE SET NULL",
		"REFERENCES user_characters (id) ON UPDATE CASCADE ON DELETE SET NULL",
		"CONSTRAINT artifact_sub_stats_pkey PRIMARY KEY (artifact_id, sub_stat_id)",
	}
	for _, sub := range checks {
		assert.Contains(t, content, sub)
	}
}

func TestSeedMigrationPopulatesLookups(t *testing.T) {
	content := readMigrations(t, "*_seed_reference_data.sql")
	for _, table := range []string{"weapons", "elements", "regions", "characters", "sets", "stats"} {
		assert.Contains(t, content, "INSERT INTO "+table)
	}
}

func TestValidateDirRejectsBadFilenames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "add_users.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid migration filename")
}

func TestValidateDirRejectsEmptyDir(t *testing.T) {
	require.Error(t, ValidateDir(t.TempDir()))
}

func TestValidateDirRejectsUnbalancedStatements(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301090000_broken.sql"), []byte(body), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "StatementBegin")
}

func TestMigrationSlug(t *testing.T) {
	assert.Equal(t, "add_artifact_rarity", migrationSlug("  Add Artifact-Rarity!! "))
	assert.Equal(t, "", migrationSlug("!!!"))
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	path, err := CreateSQLMigration(dir, "Add Artifact Rarity!")
	require.NoError(t, err)
	assert.Equal(t, "20260302100000_add_artifact_rarity.sql", filepath.Base(path))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "add artifact rarity")
	require.Error(t, err)
}

func readMigrations(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.NotEmpty(t, matches)

	var b strings.Builder
	for _, m := range matches {
		data, err := os.ReadFile(m)
		require.NoError(t, err)
		b.Write(data)
	}
	return b.String()
}
