package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"serve", "import", "schema", "ask"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootCommandGlobalFlags(t *testing.T) {
	root := NewRootCommand()

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestAskCommandFlags(t *testing.T) {
	root := NewRootCommand()
	ask, _, err := root.Find([]string{"ask"})
	require.NoError(t, err)

	lang := ask.Flags().Lookup("language")
	require.NotNil(t, lang)
	assert.Equal(t, "en", lang.DefValue)
	assert.NotNil(t, ask.Flags().Lookup("drugs"))
}

func TestImportRequiresArgument(t *testing.T) {
	root := NewRootCommand()
	root.SetArgs([]string{"import"})
	err := root.Execute()
	require.Error(t, err)
}
