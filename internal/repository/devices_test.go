package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetBindingByDeviceID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDeviceRepository(db, zap.NewNop())

	rows := sqlmock.NewRows([]string{"device_id", "tenant_id", "subject_id"}).
		AddRow("band-001", "tenant-1", "subject-1")

	mock.ExpectQuery(`SELECT`).
		WithArgs("band-001").
		WillReturnRows(rows)

	binding, err := repo.GetBindingByDeviceID("band-001")

	require.NoError(t, err)
	require.NotNil(t, binding)
	assert.Equal(t, "band-001", binding.DeviceID)
	assert.Equal(t, "tenant-1", binding.TenantID)
	assert.Equal(t, "subject-1", binding.SubjectID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBindingByDeviceID_NotBound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDeviceRepository(db, zap.NewNop())

	mock.ExpectQuery(`SELECT`).
		WithArgs("band-unknown").
		WillReturnError(sql.ErrNoRows)

	binding, err := repo.GetBindingByDeviceID("band-unknown")

	assert.Error(t, err)
	assert.Nil(t, binding)
	assert.Contains(t, err.Error(), "device not bound")

	require.NoError(t, mock.ExpectationsWereMet())
}
