// Command destroy searches for still lifes that make a Life pattern die out.
package main

import (
	"context"
	"os"

	"github.com/simeksgol/GoL-destroy/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
