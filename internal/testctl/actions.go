package testctl

// Indirection layer to allow stubbing in tests

var (
	fnRunGoTests = runGoTests
	fnRunGoVet   = runGoVet

	fnCheckTools    = checkTools
	fnCheckBackends = checkBackends

	fnSmokeURL = smokeURL
)
