package cmd

import (
	"fmt"
	"log"

	"musicbox/config"
	"musicbox/db"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check database and Redis connectivity",
	Long:  `Connect to MySQL and Redis with the current configuration and report whether both are reachable.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		fmt.Printf("MySQL: %s:%s/%s\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err := db.ConnectDB(cfg); err != nil {
			log.Fatalf("MySQL connection failed: %v", err)
		}
		db.DB.Close()
		fmt.Println("MySQL connection OK.")

		fmt.Printf("Redis: %s:%s, DB %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)
		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Redis connection failed: %v", err)
		}
		if err := db.CloseRedis(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
		fmt.Println("Redis connection OK.")
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
