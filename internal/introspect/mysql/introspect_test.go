package mysql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"inframap/internal/core"
)

func setupMySQL(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := tcmysql.Run(ctx, "mysql:8.0",
		tcmysql.WithDatabase("testdb"),
		tcmysql.WithUsername("root"),
		tcmysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")

	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err, "failed to get connection string")
	return dsn
}

func TestValidateLegacySQLIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dsn := setupMySQL(t)
	ctx := context.Background()

	conn, err := Connect(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close()

	t.Run("valid setup statements all check out and leave no trace", func(t *testing.T) {
		resource := &core.SqlResource{
			Name: "legacy_clicks_view",
			Setup: []string{
				"CREATE TABLE staging_clicks (id BIGINT PRIMARY KEY, url VARCHAR(255))",
				"CREATE VIEW legacy_clicks_view AS SELECT id, url FROM staging_clicks",
				"DROP VIEW legacy_clicks_view",
				"DROP TABLE staging_clicks",
			},
		}

		result, err := ValidateLegacySQL(ctx, conn, resource)
		require.NoError(t, err)
		assert.Equal(t, 4, result.StatementsChecked)
		assert.NotEqual(t, result.RunID.String(), "")

		var count int
		row := conn.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'testdb' AND table_name = 'staging_clicks'")
		require.NoError(t, row.Scan(&count))
		assert.Zero(t, count, "the validation transaction must never commit")
	})

	t.Run("first failing statement stops validation", func(t *testing.T) {
		resource := &core.SqlResource{
			Name: "broken_resource",
			Setup: []string{
				"CREATE TABLE broken_staging (id BIGINT PRIMARY KEY)",
				"SELECT * FROM table_that_does_not_exist",
				"CREATE TABLE never_reached (id BIGINT)",
			},
		}

		result, err := ValidateLegacySQL(ctx, conn, resource)
		require.Error(t, err)
		assert.Equal(t, 1, result.StatementsChecked)
	})
}

func TestConnect_InvalidDSNFails(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	_, err := Connect(context.Background(), "invalid:user@tcp(127.0.0.1:1)/nope")
	assert.Error(t, err)
}
