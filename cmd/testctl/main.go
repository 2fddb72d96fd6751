package main

import (
	"os"

	"classd/internal/testctl"
)

func main() { os.Exit(testctl.Main()) }
