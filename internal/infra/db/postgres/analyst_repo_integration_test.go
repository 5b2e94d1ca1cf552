//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	domain "github.com/0Calories/kotoba-plus/internal/domain/analyst"
	"github.com/0Calories/kotoba-plus/internal/infra/db/postgres"
)

// setupDB starts a throwaway postgres, applies the migrations and returns a handle to it.
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())
	db, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db))
	return db
}

func TestAnalystRepository(t *testing.T) {
	db := setupDB(t)
	repo := postgres.NewAnalystRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	done := &domain.Analysis{
		ID:              domain.AnalysisID(uuid.NewString()),
		Word:            "了解",
		TemplateID:      "kotoba.lexical-analysis",
		TemplateVersion: "2",
		Provider:        "openai",
		Model:           "gpt-4o",
		Status:          domain.StatusDone,
		Result:          `{"term": "了解"}`,
		LatencyMS:       1200,
		CreatedAt:       base,
	}
	failed := &domain.Analysis{
		ID:              domain.AnalysisID(uuid.NewString()),
		Word:            "猫",
		TemplateID:      "kotoba.lexical-analysis",
		TemplateVersion: "2",
		Provider:        "openai",
		Model:           "gpt-4o",
		Status:          domain.StatusFailed,
		ErrorKind:       "schema_violation",
		ErrorDetail:     `field "definitions": is required`,
		CreatedAt:       base.Add(time.Minute),
	}
	require.NoError(t, repo.Save(ctx, done))
	require.NoError(t, repo.Save(ctx, failed))

	t.Run("get", func(t *testing.T) {
		got, err := repo.Get(ctx, done.ID)
		require.NoError(t, err)
		assert.Equal(t, done.Word, got.Word)
		assert.Equal(t, domain.StatusDone, got.Status)
		assert.JSONEq(t, done.Result, got.Result)
		assert.True(t, base.Equal(got.CreatedAt))
	})

	t.Run("failed record keeps an empty result", func(t *testing.T) {
		got, err := repo.Get(ctx, failed.ID)
		require.NoError(t, err)
		assert.Equal(t, "schema_violation", got.ErrorKind)
		assert.JSONEq(t, "{}", got.Result)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.Get(ctx, domain.AnalysisID(uuid.NewString()))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("paginate newest first", func(t *testing.T) {
		page, err := repo.Paginate(ctx, 1, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, failed.ID, page[0].ID)

		page, err = repo.Paginate(ctx, 2, 1)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, done.ID, page[0].ID)
	})
}
