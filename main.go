package main

import (
	"os"

	"github.com/valentimarco/ollamastream/internal/cmd"

	"github.com/joho/godotenv"
)

func main() {
	// load optional .env before config binding picks up environment variables
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
