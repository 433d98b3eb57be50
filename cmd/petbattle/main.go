package main

import "github.com/mcoot/petbattle/internal/cli"

func main() {
	cli.Execute()
}
