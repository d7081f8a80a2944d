// Command codelens is the CLI entrypoint: a thin wrapper around
// internal/cli.
package main

import "github.com/codelens-dev/codelens/internal/cli"

func main() {
	cli.Execute()
}
