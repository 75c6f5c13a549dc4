package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Load provider credentials from .env when present; real environment
	// variables take precedence.
	_ = godotenv.Load()

	Execute()
}
