package main

import (
	"os"

	"github.com/scan-io-git/portal-lens/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
