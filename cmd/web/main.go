package main

import (
	"log"

	"github.com/joho/godotenv"

	"quizwire/internal/server"
)

func main() {
	// Missing .env is fine; the environment may be set directly.
	godotenv.Load()

	if err := server.Run(); err != nil {
		log.Fatal(err.Error())
	}
}
