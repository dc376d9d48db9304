package main

import (
	"os"

	"github.com/ykvlv/timetracker-bot/internal/cli"
)

func main() {
	if err := cli.Run(); err != nil {
		os.Exit(1)
	}
}
