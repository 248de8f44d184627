// Package main is the syncwatch-platform entry point (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/baranaytass/syncwatch-platform/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
