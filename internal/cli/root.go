package cli

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/openstax/bookops/internal/version"
	"github.com/openstax/bookops/pkg/cobrax/topics"
	"github.com/openstax/bookops/pkg/config"
	"github.com/openstax/bookops/pkg/logging"
	"github.com/openstax/bookops/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

//go:embed topics
var topicFiles embed.FS

// globalFlags are the persistent flags of the root command.
type globalFlags struct {
	verbosity  int
	dryRun     bool
	configFile string
	root       string
	format     string
}

// app carries the state shared by subcommands of one invocation.
type app struct {
	flags   globalFlags
	cfg     *config.Config
	printer *ui.Printer
}

// load reads the configuration and sets up the printer. Commands that
// need neither do not call it.
func (a *app) load(cmd *cobra.Command) error {
	format, err := ui.ParseFormat(a.flags.format)
	if err != nil {
		return err
	}
	cfg, err := config.Load(config.Options{Root: a.flags.root, File: a.flags.configFile})
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.printer = ui.NewPrinter(cmd.OutOrStdout(), format)
	a.printer.SetDiagnostics(cmd.ErrOrStderr())
	log.Debug().Str("root", cfg.Root).Str("format", a.printer.Format().String()).Msg("Configuration loaded")
	return nil
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	a := &app{}
	rootCmd := &cobra.Command{
		Use:     "bookops",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(a.flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&a.flags.verbosity, "verbose", "v", MsgFlagVerbose)
	pf.BoolVar(&a.flags.dryRun, "dry-run", false, MsgFlagDryRun)
	pf.StringVar(&a.flags.configFile, "config", "", MsgFlagConfig)
	pf.StringVar(&a.flags.root, "root", "", MsgFlagRoot)
	pf.StringVarP(&a.flags.format, "format", "o", "auto", MsgFlagFormat)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "book", Title: "SINGLE BOOK:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newPrepCmd(a))
	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newBooksCmd(a))
	rootCmd.AddCommand(newOrphansCmd(a))
	rootCmd.AddCommand(newMetaCmd(a))
	rootCmd.AddCommand(newReadmeCmd(a))
	rootCmd.AddCommand(newLicenseCmd(a))
	rootCmd.AddCommand(newBranchesCmd(a))
	rootCmd.AddCommand(newURIsCmd(a))
	rootCmd.AddCommand(newMembersCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	sub, err := fs.Sub(topicFiles, "topics")
	if err == nil {
		var renderer topics.Renderer = &topics.PlainRenderer{}
		if stdoutIsTerminal() {
			renderer = &topics.GlamourRenderer{Width: 100}
		}
		if tm, err := topics.Load(sub, topics.Options{Renderer: renderer}); err == nil {
			tm.Install(rootCmd)
		}
	}

	return rootCmd
}
