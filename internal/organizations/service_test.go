package organizations

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/billfoldhq/billfold-backend/pkg/errors"
)

func setupOrganizationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS organizations (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  legal_name TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(ddl).Error)
	return conn
}

func newOrganizationsService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func TestSyncInsertsThenUpdates(t *testing.T) {
	conn := setupOrganizationsTestDB(t)
	svc := newOrganizationsService(t, conn)
	orgID := uuid.New()

	created, err := svc.Sync(context.Background(), SyncInput{ID: orgID, Name: " Billfold Test "})
	require.NoError(t, err)
	assert.Equal(t, "Billfold Test", created.Name)

	legal := "Billfold Test LLC"
	updated, err := svc.Sync(context.Background(), SyncInput{ID: orgID, Name: "Billfold Renamed", LegalName: &legal})
	require.NoError(t, err)
	assert.Equal(t, "Billfold Renamed", updated.Name)

	fetched, err := svc.Get(context.Background(), orgID)
	require.NoError(t, err)
	assert.Equal(t, "Billfold Renamed", fetched.Name)
	require.NotNil(t, fetched.LegalName)
	assert.Equal(t, legal, *fetched.LegalName)
}

func TestSyncRejectsMissingFields(t *testing.T) {
	conn := setupOrganizationsTestDB(t)
	svc := newOrganizationsService(t, conn)

	_, err := svc.Sync(context.Background(), SyncInput{Name: "No ID"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))

	_, err = svc.Sync(context.Background(), SyncInput{ID: uuid.New(), Name: "   "})
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.CodeOf(err))
}

func TestGetUnknownOrgReturnsNotFound(t *testing.T) {
	conn := setupOrganizationsTestDB(t)
	svc := newOrganizationsService(t, conn)

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.CodeOf(err))
}
