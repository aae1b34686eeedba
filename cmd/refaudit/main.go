package main

import (
	"github.com/mvp-joe/refaudit/internal/cli"
)

func main() {
	cli.Execute()
}
