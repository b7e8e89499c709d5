package migration

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camerontabion/JurisFlo/internal/logger"
)

func TestEnsureMigrated(t *testing.T) {
	ctx := context.Background()

	t.Run("schema exists", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, "production", time.UTC)

		mock.ExpectQuery("SELECT to_regclass").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		require.NoError(t, EnsureMigrated(ctx, db, log, "db"))
		assert.Contains(t, buf.String(), `"msg":"db_migration_skip"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("runs all steps", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		var buf bytes.Buffer
		log := logger.NewWithWriter(&buf, "production", time.UTC)

		mock.ExpectQuery("SELECT to_regclass").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		for range steps {
			mock.ExpectExec("CREATE").WillReturnResult(sqlmock.NewResult(0, 0))
		}

		require.NoError(t, EnsureMigrated(ctx, db, log, "db"))
		assert.Contains(t, buf.String(), `"msg":"db_migration_success"`)
		assert.Contains(t, buf.String(), `"db_host":"db"`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("step failure stops migration", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec("CREATE EXTENSION").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS companies").WillReturnError(errors.New("permission denied"))

		err = EnsureMigrated(ctx, db, logger.Nop(), "db")
		assert.EqualError(t, err, "migration step create_table_companies failed: permission denied")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sentinel check failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT to_regclass").WillReturnError(errors.New("timeout"))

		err = EnsureMigrated(ctx, db, logger.Nop(), "db")
		assert.ErrorContains(t, err, "failed to check sentinel table")
	})
}

func TestStepsAreIdempotent(t *testing.T) {
	for _, step := range steps {
		assert.Contains(t, step.SQL, "IF NOT EXISTS", step.Name)
	}
}
