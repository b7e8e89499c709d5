package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camerontabion/JurisFlo/internal/config"
)

func TestBuildPostgresDSN(t *testing.T) {
	base := func() config.DatabaseConfig {
		return config.DatabaseConfig{Host: "db", Port: "5432", User: "jurisflo", Name: "jurisflo"}
	}

	tests := []struct {
		name   string
		mutate func(c *config.DatabaseConfig)
		want   string
	}{
		{"minimal", func(c *config.DatabaseConfig) {}, "postgres://jurisflo@db:5432/jurisflo"},
		{"password and sslmode", func(c *config.DatabaseConfig) {
			c.Password = "secret"
			c.SSLMode = "disable"
		}, "postgres://jurisflo:secret@db:5432/jurisflo?sslmode=disable"},
		{"reserved characters escaped", func(c *config.DatabaseConfig) {
			c.Password = "p@ss/word"
		}, "postgres://jurisflo:p%40ss%2Fword@db:5432/jurisflo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			got, err := BuildPostgresDSN(c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	missing := map[string]func(c *config.DatabaseConfig){
		"host": func(c *config.DatabaseConfig) { c.Host = "" },
		"port": func(c *config.DatabaseConfig) { c.Port = "" },
		"user": func(c *config.DatabaseConfig) { c.User = "" },
		"name": func(c *config.DatabaseConfig) { c.Name = "" },
	}
	for field, mutate := range missing {
		t.Run("missing "+field, func(t *testing.T) {
			c := base()
			mutate(&c)
			_, err := BuildPostgresDSN(c)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestNewPostgres(t *testing.T) {
	conf := config.DatabaseConfig{
		Host:               "localhost",
		Port:               "5432",
		User:               "jurisflo",
		Password:           "secret",
		Name:               "jurisflo",
		MaxOpenConns:       10,
		MaxIdleConns:       5,
		ConnMaxLifetimeSec: 300,
	}

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer db.Close()

		origSqlOpen := sqlOpen
		sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
			return db, nil
		}
		defer func() { sqlOpen = origSqlOpen }()

		mock.ExpectPing()

		gotDB, err := NewPostgres(context.Background(), conf)
		assert.NoError(t, err)
		assert.NotNil(t, gotDB)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sqlOpen error", func(t *testing.T) {
		origSqlOpen := sqlOpen
		sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
			return nil, errors.New("open error")
		}
		defer func() { sqlOpen = origSqlOpen }()

		gotDB, err := NewPostgres(context.Background(), conf)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "sql open: open error")
		assert.Nil(t, gotDB)
	})

	t.Run("ping error", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		// NewPostgres closes the pool on ping failure.

		origSqlOpen := sqlOpen
		sqlOpen = func(driverName, dataSourceName string) (*sql.DB, error) {
			return db, nil
		}
		defer func() { sqlOpen = origSqlOpen }()

		mock.ExpectPing().WillReturnError(errors.New("ping failed"))

		gotDB, err := NewPostgres(context.Background(), conf)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "db ping: ping failed")
		assert.Nil(t, gotDB)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid DSN", func(t *testing.T) {
		invalidConf := config.DatabaseConfig{} // missing host etc
		gotDB, err := NewPostgres(context.Background(), invalidConf)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Nil(t, gotDB)
	})
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	assert.NoError(t, Ping(context.Background(), db))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = Ping(context.Background(), db)
	assert.EqualError(t, err, "db ping: connection refused")

	assert.NoError(t, mock.ExpectationsWereMet())
}
