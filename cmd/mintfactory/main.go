// Package main provides the mintfactory CLI.
package main

import "github.com/mesh-intelligence/mintfactory/internal/cli"

func main() {
	cli.Execute()
}
