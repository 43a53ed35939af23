package main

import "github.com/holocron-dev/holocron/pkg/cli"

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cli.Execute(Version)
}
