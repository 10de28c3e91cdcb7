package main

import (
	"rail-controls/internal/cli"
)

func main() {
	cli.Execute()
}
