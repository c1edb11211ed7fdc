package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "github.com/clariohq/clario/dbmodels"
)

// Connect opens the postgres database and migrates the schema.
func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := gdb.AutoMigrate(
		&models.Organization{},
		&models.Contact{},
		&models.ContactSource{},
		&models.Conversation{},
		&models.ConversationMessage{},
		&models.Agent{},
		&models.AgentAssignment{},
		&models.Agreement{},
		&models.ContactNote{},
		&models.Form{},
		&models.FormSubmission{},
		&models.Product{},
		&models.VoiceCall{},
		&models.LedgerEntry{},
	); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return gdb, nil
}
