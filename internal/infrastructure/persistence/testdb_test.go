package persistence

import (
	"testing"

	"github.com/botforce/unity/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory SQLite database with every model migrated.
// A single connection keeps the in-memory database alive across statements.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&models.CustomerModel{},
		&models.CompanyProfileModel{},
		&models.DocumentModel{},
		&models.DocumentLineModel{},
		&models.DocumentSequenceModel{},
		&models.ExpenseModel{},
		&models.RecurringTemplateModel{},
		&models.RecurringTemplateLineModel{},
		&models.RecurringCostModel{},
		&models.AccountingExportModel{},
	)
	require.NoError(t, err)

	// Composite unique indexes live in the SQL migrations, not in model tags
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX idx_documents_tenant_number ON documents (tenant_id, document_number)`).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX idx_company_profiles_tenant ON company_profiles (tenant_id)`).Error)

	return db
}
