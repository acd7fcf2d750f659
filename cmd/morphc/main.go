package main

import "github.com/morphlang/morphc/internal/cli"

func main() {
	cli.Execute()
}
