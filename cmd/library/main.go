package main

import (
	"context"
	"os"

	"github.com/5w1tchy/library-api/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
