package main

import (
	"log"

	"github.com/samuelfneumann/racetrack/command"
)

func main() {
	rootCommand := command.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		log.Fatal(err)
	}
}
