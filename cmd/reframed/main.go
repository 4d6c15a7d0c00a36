package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/ivlev/reframe/internal/api"
	"github.com/ivlev/reframe/internal/config"
	"github.com/ivlev/reframe/internal/system"
)

func main() {
	godotenv.Load()
	system.InitResourceLimits()

	cfg := config.Default()
	if path := config.GetEnv("REFRAME_CONFIG", ""); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatalf("[-] Config error: %v", err)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	port := config.GetEnv("PORT", "8080")
	server := api.NewServer(cfg)

	log.Println("Server running on http://localhost:" + port)
	if err := server.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
