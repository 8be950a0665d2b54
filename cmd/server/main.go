package main

import (
	"github.com/OFFIS-RIT/genealogy/backend/internal/server"
	"github.com/OFFIS-RIT/genealogy/backend/internal/util"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/logger"
	"github.com/OFFIS-RIT/genealogy/backend/pkg/logger/console"

	_ "github.com/lib/pq"
)

func main() {
	util.LoadEnv()

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: util.GetEnvBool("DEBUG", false),
		JSON:  util.GetEnv("LOG_FORMAT") == "json",
	})
	logger.Init(consoleLogger)

	server.Init()
}
