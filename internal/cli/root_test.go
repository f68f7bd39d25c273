package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/process-engine-kernel/internal/cli"
)

func Test_RootCommand_HasAllSubcommands(t *testing.T) {
	commands := [][]string{
		{"variables", "count"},
		{"variables", "list"},
		{"deployment", "set-category"},
		{"schema", "print"},
		{"schema", "apply"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			// arrange
			cmd := cli.NewRootCommand(nil)

			// act
			subCmd, _, err := cmd.Find(path)

			// assert
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func Test_RootCommand_GlobalFlags(t *testing.T) {
	// arrange
	cmd := cli.NewRootCommand(nil)

	// act
	output := cmd.PersistentFlags().Lookup("output")
	dsn := cmd.PersistentFlags().Lookup("postgres-dsn")
	driver := cmd.PersistentFlags().Lookup("postgres-driver")

	// assert
	require.NotNil(t, output)
	assert.Equal(t, "o", output.Shorthand)
	assert.Equal(t, "text", output.DefValue)
	require.NotNil(t, dsn)
	require.NotNil(t, driver)
	assert.Equal(t, "pgx", driver.DefValue)
}

func Test_RootCommand_RejectsUnknownOutputFormat(t *testing.T) {
	// arrange
	opener, _, opened := givenMockedOpener(t)

	// act
	_, err := runCLI(t, opener, "variables", "count", "-o", "yaml")

	// assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid output "yaml"`)
	assert.Zero(t, *opened)
}
