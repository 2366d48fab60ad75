/*
Copyright © 2025 ragkit
*/
package main

import (
	"github.com/joho/godotenv"
	"github.com/ragkit/indexer-be/cmd"
)

func main() {
	cmd.Execute()
}

func init() {
	// Connection strings and API keys come from the environment; a .env
	// file is optional.
	godotenv.Load()
}
