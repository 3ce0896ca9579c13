package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/keytree/internal/config"
	"github.com/mrz1836/keytree/internal/output"
	kterr "github.com/mrz1836/keytree/pkg/errors"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "all fields populated",
			info: BuildInfo{
				Version: "v1.2.3",
				Commit:  "abc1234",
				Date:    "2024-01-15",
			},
			want: "v1.2.3 (commit: abc1234, built: 2024-01-15)",
		},
		{
			name: "all fields empty",
			info: BuildInfo{},
			want: "dev (commit: unknown, built: unknown)",
		},
		{
			name: "only version empty",
			info: BuildInfo{
				Commit: "def5678",
				Date:   "2024-02-20",
			},
			want: "dev (commit: def5678, built: 2024-02-20)",
		},
		{
			name: "only commit empty",
			info: BuildInfo{
				Version: "v2.0.0",
				Date:    "2024-03-25",
			},
			want: "v2.0.0 (commit: unknown, built: 2024-03-25)",
		},
		{
			name: "only date empty",
			info: BuildInfo{
				Version: "v3.0.0",
				Commit:  "ghi9012",
			},
			want: "v3.0.0 (commit: ghi9012, built: unknown)",
		},
		{
			name: "version and commit empty",
			info: BuildInfo{
				Date: "2024-04-30",
			},
			want: "dev (commit: unknown, built: 2024-04-30)",
		},
		{
			name: "version and date empty",
			info: BuildInfo{
				Commit: "jkl3456",
			},
			want: "dev (commit: jkl3456, built: unknown)",
		},
		{
			name: "commit and date empty",
			info: BuildInfo{
				Version: "v4.0.0",
			},
			want: "v4.0.0 (commit: unknown, built: unknown)",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, formatVersion(tc.info))
		})
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, kterr.ExitSuccess, ExitCode(nil))
	assert.Equal(t, kterr.ExitGeneral, ExitCode(errors.New("boom"))) //nolint:err113 // test error
	assert.Equal(t, kterr.ExitInput, ExitCode(kterr.ErrInvalidMnemonic))
	assert.Equal(t, kterr.ExitInput, ExitCode(kterr.Newf(kterr.ErrInvalidDerivationPath, "level %d", 3)))
	assert.Equal(t, kterr.ExitNotFound, ExitCode(kterr.ErrConfigNotFound))
}

func TestVersionCommand(t *testing.T) {
	buildInfo = BuildInfo{Version: "v0.9.0", Commit: "abc1234"}
	t.Cleanup(func() { buildInfo = BuildInfo{} })

	stdout, _, err := execute(t, t.TempDir(), "", "version")
	require.NoError(t, err)

	r := decode[versionResult](t, stdout)
	assert.Equal(t, "v0.9.0", r.Version)
	assert.Equal(t, "abc1234", r.Commit)
	assert.Equal(t, "unknown", r.Date)
	assert.Equal(t, runtime.Version(), r.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, r.Platform)

	out := run(t, "", "version", "-o", "text")
	assert.True(t, strings.HasPrefix(out, "keytree v0.9.0 (commit: abc1234"))
}

func TestExecute_FormatsErrors(t *testing.T) {
	home := t.TempDir()
	clearEnv(t)
	resetFlags()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs([]string{"--home", home, "path", "parse", "m/84'/0'"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	err := Execute(BuildInfo{Version: "v1.0.0"})
	require.Error(t, err)
	assert.Equal(t, kterr.ExitInput, ExitCode(err))
	assert.Empty(t, stdout.String())

	// A buffer is not a terminal, so the error is rendered as JSON.
	detail := decode[output.ErrorOutput](t, stderr.String())
	assert.Equal(t, "INVALID_DERIVATION_PATH", detail.Error.Code)
	assert.Equal(t, kterr.ExitInput, detail.Error.ExitCode)

	logged, readErr := os.ReadFile(filepath.Join(home, "keytree.log"))
	require.NoError(t, readErr)
	assert.Contains(t, string(logged), "command failed: INVALID_DERIVATION_PATH")
	assert.NotContains(t, string(logged), "m/84'/0'")
}

func TestInitGlobals_Defaults(t *testing.T) {
	home := t.TempDir()
	_, _, err := execute(t, home, "", "config", "show")
	require.NoError(t, err)

	require.NotNil(t, Config())
	assert.Equal(t, home, Config().Home)
	assert.Equal(t, "BTC", Config().Derivation.Coin)
	assert.Equal(t, filepath.Join(home, "keytree.log"), Config().Logging.File)
	assert.NotNil(t, Logger())
	assert.Equal(t, output.FormatJSON, Formatter().Format())
}

func TestInitGlobals_Environment(t *testing.T) {
	home := t.TempDir()
	clearEnv(t)
	resetFlags()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvCoin, "eth")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetIn(strings.NewReader(abandonPhrase))
	rootCmd.SetArgs([]string{"address"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		resetFlags()
	})

	require.NoError(t, rootCmd.Execute())
	r := decode[addressResult](t, stdout.String())
	assert.Equal(t, "ETH", r.Coin)
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", r.Address)
	assert.Equal(t, home, Config().Home)
}

func TestInitGlobals_FlagBeatsConfigFile(t *testing.T) {
	home := t.TempDir()
	cfgFile := config.Defaults()
	cfgFile.Home = home
	cfgFile.Logging.File = filepath.Join(home, "keytree.log")
	cfgFile.Derivation.Network = "testnet"
	require.NoError(t, config.Save(cfgFile, config.Path(home)))

	r := decode[addressResult](t, runIn(t, home, abandonPhrase, "address"))
	assert.Equal(t, "tb1q6rz28mcfaxtmd6v789l9rrlrusdprr9pqcpvkl", r.Address)

	r = decode[addressResult](t, runIn(t, home, abandonPhrase, "address", "--network", "mainnet"))
	assert.Equal(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", r.Address)
}

func TestInitGlobals_InvalidConfigFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(config.Path(home), []byte("derivation: [not a map"), 0o600))

	_, _, err := execute(t, home, "", "config", "show")
	require.Error(t, err)
	assert.True(t, kterr.Is(err, kterr.ErrConfigInvalid), "got %v", err)
}

// runIn executes in the given home and fails the test on error.
func runIn(t *testing.T, home, stdin string, args ...string) string {
	t.Helper()
	stdout, _, err := execute(t, home, stdin, args...)
	require.NoError(t, err)
	return stdout
}
