package main

import (
	"fmt"
	"os"

	"github.com/schardosin/docqa/cmd/docqa"
)

func main() {
	if err := docqa.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
