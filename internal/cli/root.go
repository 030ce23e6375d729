// Package cli implements the mintfactory command-line interface: deploying
// a ledger, minting batches, withdrawing funds and reading token state.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/mintfactory/internal/paths"
	"github.com/mesh-intelligence/mintfactory/pkg/mintfactory"
	"github.com/mesh-intelligence/mintfactory/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	envFile   string
	from      string
	jsonMode  bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags  rootFlags
	dirs   paths.Dirs
	cfg    *viper.Viper
	logger *slog.Logger
	stderr io.Writer
}

// NewRootCmd creates the top-level "mintfactory" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}

	root := &cobra.Command{
		Use:     "mintfactory",
		Short:   "Batch NFT minting ledger",
		Long:    "mintfactory deploys a token ledger, mints tokens in batches,\nwithdraws collected funds and reads back token ownership and metadata URIs.",
		Version: mintfactory.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stderr = cmd.ErrOrStderr()
			return a.setup()
		},
	}

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.mintfactory-db)")
	root.PersistentFlags().StringVar(&a.flags.envFile, "env-file", "", "dotenv file to load (default: $(CWD)/.env)")
	root.PersistentFlags().StringVar(&a.flags.from, "from", "", "caller address (default: config account)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newDeployCmd())
	root.AddCommand(a.newMintCmd())
	root.AddCommand(a.newWithdrawCmd())
	root.AddCommand(a.newInfoCmd())
	root.AddCommand(a.newOwnerOfCmd())
	root.AddCommand(a.newBalanceOfCmd())
	root.AddCommand(a.newTokenURICmd())
	root.AddCommand(a.newWalletCmd())
	root.AddCommand(a.newEventsCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	os.Exit(run(NewRootCmd(), os.Stderr))
}

// run executes root and maps its error to an exit code.
func run(root *cobra.Command, stderr io.Writer) int {
	err := root.Execute()
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}

// exitCode classifies err: caller input and authorization failures are
// user errors, everything else is a system error.
func exitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) || types.IsUserError(err) {
		return exitUserError
	}
	return exitSysError
}

// usageError marks invalid flags or arguments.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// setup resolves directories, loads the env file and config, and builds
// the logger.
func (a *app) setup() error {
	envFile, err := paths.ResolveEnvFile(a.flags.envFile)
	if err != nil {
		return err
	}
	if err := loadEnvFile(envFile, a.flags.envFile != ""); err != nil {
		return err
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.GetString(cfgKeyDataDir))
	if err != nil {
		return err
	}

	logger, err := newLogger(a.stderr, cfg.GetString(cfgKeyLogLevel), cfg.GetString(cfgKeyLogFormat))
	if err != nil {
		return err
	}

	a.dirs = paths.Dirs{Config: configDir, Data: dataDir, EnvFile: envFile}
	a.cfg = cfg
	a.logger = logger
	return nil
}
