package main

import (
	"fmt"
	"os"

	appLog "rostercal/internal/log"
)

func main() {
	err := newRootCmd().Execute()
	appLog.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
