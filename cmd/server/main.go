package main

import (
	"github.com/joho/godotenv"

	"sawa/internal/app/server"
)

func main() {
	// Missing .env is fine; deployed environments inject real env vars.
	_ = godotenv.Load()
	server.Run()
}
