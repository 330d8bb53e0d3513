package main

import "github.com/funvibe/decaf/pkg/cli"

func main() {
	cli.Run()
}
