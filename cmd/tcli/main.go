// Package main is the entry point for the tcli CLI.
package main

import "github.com/tapi/tcli/internal/cli"

func main() {
	cli.Execute()
}
