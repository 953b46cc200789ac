package main

import (
	"os"

	"github.com/tarn-lang/tarn/cmd"
)

func main() {
	err := cmd.NewRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}
