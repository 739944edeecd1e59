package main

import (
	"log"

	_ "openkanban/docs"
	"openkanban/internal/config"
	"openkanban/internal/server"
)

// @title           OpenKanban API
// @version         1.0
// @description     REST API behind URL-addressed collaborative kanban boards.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
