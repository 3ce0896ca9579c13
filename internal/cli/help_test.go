package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAllCommandsHaveShortDescription walks the entire command tree and
// verifies that every command has a non-empty Short description.
func TestAllCommandsHaveShortDescription(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			assert.NotEmpty(t, cmd.Short,
				"%s: missing Short description", cmd.CommandPath())
		})
	})
}

// TestAllCommandsHaveLongDescription walks the entire command tree and
// verifies that every command has a non-empty Long description.
func TestAllCommandsHaveLongDescription(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			assert.NotEmpty(t, cmd.Long,
				"%s: missing Long description", cmd.CommandPath())
		})
	})
}

// TestLeafCommandsHaveExamples verifies that every leaf command (one
// with RunE or Run) has a non-empty Example field.
func TestLeafCommandsHaveExamples(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		if cmd.RunE == nil && cmd.Run == nil {
			return
		}
		if cmd.Name() == "help" {
			return // added by cobra on first Execute
		}
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			assert.NotEmpty(t, cmd.Example,
				"%s: leaf command missing Example field", cmd.CommandPath())
		})
	})
}

// TestNoEmbeddedExamplesInLong ensures no command embeds "Example:" or
// "Examples:" text inside the Long field.
func TestNoEmbeddedExamplesInLong(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			assert.False(t,
				strings.Contains(cmd.Long, "\nExample:") ||
					strings.Contains(cmd.Long, "\nExamples:"),
				"%s: Long contains embedded examples; move to Example field",
				cmd.CommandPath())
		})
	})
}

// TestAllFlagsHaveDescriptions verifies every registered flag across all
// commands has a non-empty usage description string.
func TestAllFlagsHaveDescriptions(t *testing.T) {
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			t.Run(cmd.CommandPath()+"/--"+f.Name, func(t *testing.T) {
				assert.NotEmpty(t, f.Usage,
					"flag --%s on %s has no description", f.Name, cmd.CommandPath())
			})
		})
	})
}

// TestSeedCommandsShareFlags checks that every command reading a mnemonic
// accepts the same input flags.
func TestSeedCommandsShareFlags(t *testing.T) {
	for _, cmd := range []*cobra.Command{deriveCmd, addressCmd, xpubCmd, mnemonicSeedCmd} {
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			for _, name := range []string{"mnemonic-file", "passphrase", "no-checksum"} {
				assert.NotNil(t, cmd.Flags().Lookup(name), "missing --%s", name)
			}
		})
	}
}

// TestCommandGroupsAssigned verifies all top-level commands (direct
// children of the root) have a GroupID set for organized help output.
func TestCommandGroupsAssigned(t *testing.T) {
	for _, cmd := range rootCmd.Commands() {
		if !cmd.IsAvailableCommand() {
			continue
		}
		t.Run(cmd.Name(), func(t *testing.T) {
			assert.NotEmpty(t, cmd.GroupID,
				"top-level command %q missing GroupID", cmd.Name())
		})
	}
}

// TestRootHelpContainsGroups verifies the root --help output shows the
// command groups rather than a flat "Available Commands:" list.
func TestRootHelpContainsGroups(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "", "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Mnemonics & Keys:")
	assert.Contains(t, stdout, "Derivation:")
	assert.Contains(t, stdout, "Configuration:")
	assert.NotContains(t, stdout, "Available Commands:")
}

// TestParentCommandsShowSubcommandsInHelp verifies that parent commands
// show their subcommands in the rendered help output.
func TestParentCommandsShowSubcommandsInHelp(t *testing.T) {
	parentCmds := []struct {
		name string
		cmd  *cobra.Command
	}{
		{"mnemonic", mnemonicCmd},
		{"xkey", xkeyCmd},
		{"path", pathCmd},
		{"config", configCmd},
	}

	for _, pc := range parentCmds {
		t.Run(pc.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			pc.cmd.SetOut(buf)
			t.Cleanup(func() { pc.cmd.SetOut(nil) })
			require.NoError(t, pc.cmd.Help())
			helpOutput := buf.String()

			assert.Contains(t, helpOutput, "Available Commands:",
				"parent command %q missing Available Commands section", pc.name)

			for _, sub := range pc.cmd.Commands() {
				if sub.IsAvailableCommand() {
					assert.Contains(t, helpOutput, sub.Name(),
						"parent %q missing subcommand %q in help", pc.name, sub.Name())
				}
			}
		})
	}
}

// TestLeafCommandHelpShowsExamplesSection verifies the rendered help
// output of representative leaf commands includes an "Examples:" section.
func TestLeafCommandHelpShowsExamplesSection(t *testing.T) {
	cmds := []*cobra.Command{
		mnemonicGenerateCmd,
		deriveCmd,
		addressCmd,
		xkeyInspectCmd,
	}

	for _, cmd := range cmds {
		t.Run(cmd.CommandPath(), func(t *testing.T) {
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			t.Cleanup(func() { cmd.SetOut(nil) })

			require.NoError(t, cmd.Help())
			helpOutput := buf.String()

			assert.Contains(t, helpOutput, "Examples:")
			assert.Contains(t, helpOutput, "keytree")
		})
	}
}

// TestEnrichParentLongListsSubcommands checks the generated subcommand
// summary appended to parent Long text.
func TestEnrichParentLongListsSubcommands(t *testing.T) {
	for _, sub := range mnemonicCmd.Commands() {
		assert.Contains(t, mnemonicCmd.Long, sub.Name())
	}
	assert.Contains(t, configCmd.Long, "set")
}

// TestWalkCommandsVisitsAll verifies walkCommands discovers every command.
func TestWalkCommandsVisitsAll(t *testing.T) {
	var visited []string
	walkCommands(rootCmd, func(cmd *cobra.Command) {
		visited = append(visited, cmd.CommandPath())
	})

	expectedPaths := []string{
		"keytree",
		"keytree mnemonic",
		"keytree mnemonic generate",
		"keytree mnemonic validate",
		"keytree mnemonic entropy",
		"keytree mnemonic from-entropy",
		"keytree mnemonic seed",
		"keytree derive",
		"keytree address",
		"keytree xpub",
		"keytree xkey",
		"keytree xkey inspect",
		"keytree path",
		"keytree path parse",
		"keytree config",
		"keytree config init",
		"keytree config show",
		"keytree config get",
		"keytree config set",
		"keytree version",
		"keytree completion",
	}

	for _, expected := range expectedPaths {
		assert.Contains(t, visited, expected, "walkCommands did not visit %q", expected)
	}
}
