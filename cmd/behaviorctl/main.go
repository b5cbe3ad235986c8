package main

import (
	"context"
	"fmt"
	"os"
	"strings"
)

var version = "dev"

func main() {
	if err := newRoot(strings.TrimSpace(version)).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "behaviorctl:", err)
		os.Exit(1)
	}
}
