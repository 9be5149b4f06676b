package cmd

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	// Set DEBUG_TESTS=1 to see full logs: DEBUG_TESTS=1 go test ./cmd/... -v
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.ErrorLevel)
	}
	os.Exit(m.Run())
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"fit", "trial", "zero"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootCmd_LogFlagDefaultsToWarn(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("log")
	if flag == nil {
		t.Fatal("--log flag not registered")
	}
	assert.Equal(t, "warn", flag.DefValue)
}

func TestRootCmd_CutoffFlagMatchesPipelineDefault(t *testing.T) {
	// GIVEN the --cutoff flag and the built-in configuration
	flag := rootCmd.PersistentFlags().Lookup("cutoff")
	if flag == nil {
		t.Fatal("--cutoff flag not registered")
	}

	// THEN an unset flag and an absent defaults.yaml agree
	assert.Equal(t, "0.02", flag.DefValue)
	assert.Equal(t, 0.02, builtinConfig().Fit.CutoffRate)
}
