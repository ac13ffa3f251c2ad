// Command usertool is an operator CLI for the user service: it hashes
// passwords, issues and inspects tokens, and prints the Postgres schema.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
