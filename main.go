package main

import (
	"fmt"
	"os"
	"strings"

	"postboard/app/config"
	"postboard/service"
)

const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the command line. It is split from main for tests.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "help":
		printHelp()
	case "version":
		fmt.Printf("postboard version %s\n", CliVersion)
	case "serve":
		exit(service.RunAppServer(os.Args[2:]))
	case "db":
		service.SetDatabasePath(config.BadgerPath())
		exit(service.HandleCommand(os.Args[2:]))
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	helpText := `Usage: postboard <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve [--addr <host:port>]     Run the postboard API server.
  db <command>                   Maintain the embedded database:
                                   init, clean, backup, restore <file>, help

Configuration is read from the environment and an optional .env file
(JWT_SECRET is required to serve).
`
	fmt.Println(helpText)
}
