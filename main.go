package main

import (
	"github.com/meshachvetz/classalloc/cmd"
)

func main() {
	cmd.Execute()
}
