package main

import (
	"fmt"
	"os"

	"github.com/thomkin/rustc-npm/internal/installer"
)

func main() {
	if err := installer.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "rustc-npm: %v\n", err)
		os.Exit(1)
	}
}
