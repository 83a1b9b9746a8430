package main

import (
	"os"

	"github.com/wopr-network/wopr-plugin-sandbox/cmd/wopr-plugin-sandbox/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
