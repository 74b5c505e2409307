package main

import (
	"fmt"

	"taskbuddy-api/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Open migrates as part of connecting
		db, err := database.Open(cfg.Database)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		fmt.Printf("Database %s is up to date\n", cfg.Database.Path)
		return nil
	},
}
