package testctl

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Config carries the few knobs the dev commands need.
type Config struct {
	BaseURL string // base URL of a running gateway, for smoke commands
	LogLvl  string
}

// buildRootCmd constructs the Cobra command tree wired to the fn* actions.
func buildRootCmd(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "testctl",
		Short:         "Dev and test utilities for the classification gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("base-url", cfg.BaseURL, "Base URL of a running gateway (defaults CLASSD_BASE_URL or http://127.0.0.1:8080)")
	root.PersistentFlags().String("log-level", cfg.LogLvl, "Log level: debug|info|warn|error (defaults TESTCTL_LOG_LEVEL or info)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if f := cmd.InheritedFlags().Lookup("base-url"); f != nil {
			if v := f.Value.String(); v != "" {
				cfg.BaseURL = v
			}
		}
		if f := cmd.InheritedFlags().Lookup("log-level"); f != nil {
			if v := f.Value.String(); v != "" {
				cfg.LogLvl = v
			}
		}
		SetLogLevel(cfg.LogLvl)
	}

	// test group
	testCmd := &cobra.Command{Use: "test", Short: "Run test suites", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("test requires a subcommand: go|vet|all")
	}}
	testGo := &cobra.Command{Use: "go", Short: "Run Go tests", RunE: func(cmd *cobra.Command, args []string) error { return fnRunGoTests() }}
	testVet := &cobra.Command{Use: "vet", Short: "Run go vet", RunE: func(cmd *cobra.Command, args []string) error { return fnRunGoVet() }}
	testAll := &cobra.Command{Use: "all", Short: "Vet then test", RunE: func(cmd *cobra.Command, args []string) error {
		if err := fnRunGoVet(); err != nil {
			return err
		}
		return fnRunGoTests()
	}}
	testCmd.AddCommand(testGo, testVet, testAll)
	root.AddCommand(testCmd)

	// check group
	checkCmd := &cobra.Command{Use: "check", Short: "Verify the runtime environment", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("check requires a subcommand: tools|backends|all")
	}}
	checkTools := &cobra.Command{Use: "tools", Short: "Verify pdftotext and convert are installed", RunE: func(cmd *cobra.Command, args []string) error { return fnCheckTools() }}
	checkBackends := &cobra.Command{Use: "backends", Short: "Query the remote model servers for availability", RunE: func(cmd *cobra.Command, args []string) error { return fnCheckBackends() }}
	checkAll := &cobra.Command{Use: "all", Short: "Tools then backends", RunE: func(cmd *cobra.Command, args []string) error {
		if err := fnCheckTools(); err != nil {
			return err
		}
		return fnCheckBackends()
	}}
	checkCmd.AddCommand(checkTools, checkBackends, checkAll)
	root.AddCommand(checkCmd)

	// smoke group: drive a running gateway
	smokeCmd := &cobra.Command{Use: "smoke", Short: "Smoke-test a running gateway", RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("smoke requires a subcommand: url")
	}}
	smokeURL := &cobra.Command{
		Use:   "url [url...]",
		Short: "Classify one or more URLs via the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := args
			if len(urls) == 0 {
				urls = []string{"https://arxiv.org/pdf/1607.01759.pdf"}
			}
			return fnSmokeURL(cfg, urls)
		},
	}
	smokeCmd.AddCommand(smokeURL)
	root.AddCommand(smokeCmd)

	return root
}

// MainWithArgs is a testable variant of Main that accepts args explicitly.
// It returns an exit code (0 for success, non-zero on error).
func MainWithArgs(args []string) int {
	cfg := &Config{
		BaseURL: envStr("CLASSD_BASE_URL", "http://127.0.0.1:8080"),
		LogLvl:  envStr("TESTCTL_LOG_LEVEL", "info"),
	}
	root := buildRootCmd(cfg)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// Main returns an exit code (0 for success, non-zero on error) for use by cmd/testctl.
func Main() int { return MainWithArgs(os.Args[1:]) }
