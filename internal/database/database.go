package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(dsn string, production bool) error {
	level := logger.Info // 👀 Log niveau info en dev
	if production {
		level = logger.Warn
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return fmt.Errorf("connexion à Supabase: %w", err)
	}

	DB = db
	return nil
}

// Migrate crée/met à jour les tables des modèles fournis
func Migrate(models ...interface{}) error {
	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	return nil
}
