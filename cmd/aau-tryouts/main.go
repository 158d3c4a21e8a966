package main

import "github.com/nathannam/aau-tryouts/internal/cli"

func main() {
	cli.Execute()
}
