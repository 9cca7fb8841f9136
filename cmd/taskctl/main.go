package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/taskmanager/internal/taskctl"
)

func main() {
	os.Exit(taskctl.Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
