// Package main is the single-binary entrypoint for TalkMaster.
// The same binary serves the progress API and answers CLI queries.
package main

import "github.com/talkmaster-app/talkmaster/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
