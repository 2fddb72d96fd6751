package testctl

import "context"

func runGoTests() error {
	info("[testctl] go test ./...")
	return runCmdStreaming(context.Background(), "go", "test", "./...")
}

func runGoVet() error {
	info("[testctl] go vet ./...")
	return runCmdStreaming(context.Background(), "go", "vet", "./...")
}
