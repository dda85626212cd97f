package main

import (
	"context"
	"fmt"
	"os"

	"forge3d/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "forge3d:", err)
		os.Exit(1)
	}
}
