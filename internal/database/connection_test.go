// internal/database/connection_test.go
package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bayarlink/bayarlink-backend/internal/models"
)

func newMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, RunMigrations(db))
	return db
}

func TestRunMigrationsCreatesCompositeStatusIndex(t *testing.T) {
	db := newMigratedDB(t)

	// The admin proof queue filters on status and orders on created_at;
	// both columns must be in the index, in that order.
	var columns []string
	require.NoError(t, db.Raw(
		"SELECT name FROM pragma_index_info('idx_payment_links_status_created') ORDER BY seqno",
	).Scan(&columns).Error)

	assert.Equal(t, []string{"status", "created_at"}, columns)
}

func TestRunMigrationsCreatesUniqueTokenIndex(t *testing.T) {
	db := newMigratedDB(t)

	link := &models.PaymentLink{
		CustomerName:  "Budi Santoso",
		CustomerEmail: "budi@example.com",
	}
	require.NoError(t, db.Create(link).Error)

	duplicate := &models.PaymentLink{
		Token:         link.Token,
		CustomerName:  "Siti Aminah",
		CustomerEmail: "siti@example.com",
	}
	assert.Error(t, db.Create(duplicate).Error, "duplicate tokens must be refused")
}

func TestSeedInitialDataIsIdempotent(t *testing.T) {
	db := newMigratedDB(t)

	require.NoError(t, SeedInitialData(db))
	require.NoError(t, SeedInitialData(db))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.NoError(t, users[0].CheckPassword("admin123!@#"))
}
