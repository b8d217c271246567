package cli

import (
	"fmt"
	"path/filepath"

	"github.com/openstax/bookops/internal/version"
	"github.com/openstax/bookops/pkg/abl"
	"github.com/openstax/bookops/pkg/bookmeta"
	"github.com/openstax/bookops/pkg/cleanup"
	"github.com/openstax/bookops/pkg/cnxuris"
	"github.com/openstax/bookops/pkg/config"
	"github.com/openstax/bookops/pkg/errors"
	"github.com/openstax/bookops/pkg/gitrepo"
	"github.com/openstax/bookops/pkg/license"
	"github.com/openstax/bookops/pkg/pipeline"
	"github.com/openstax/bookops/pkg/poet"
	"github.com/openstax/bookops/pkg/setup"
	"github.com/openstax/bookops/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// pushModes are the positional arguments that turn on push mode.
var pushModes = []string{"p", "push", "sync"}

func isPushMode(arg string) bool {
	for _, m := range pushModes {
		if arg == m {
			return true
		}
	}
	return false
}

func (a *app) setupOptions() setup.Options {
	cfg := a.cfg
	opts := setup.Options{
		DotEnv:         filepath.Join(cfg.Root, config.DotEnvFile),
		BaseURL:        cfg.GitHub.BaseURL,
		Token:          cfg.GitHub.Token,
		CredentialsDir: cfg.GitHub.CredentialsDir,
		IdentityName:   cfg.Identity.Name,
		IdentityEmail:  cfg.Identity.Email,
	}
	if cfg.RepoPrep.Install {
		opts.NodeDir = cfg.RepoPrep.Dir
		opts.PoetDir = cfg.Poet.Dir
		opts.PoetRepository = cfg.Poet.Repository
	}
	return opts
}

func (a *app) ablLoader() *abl.Loader {
	return &abl.Loader{Path: a.cfg.ABL.Path, URL: a.cfg.ABL.URL}
}

func (a *app) licenseSyncer() *license.Syncer {
	return license.NewSyncer(afero.NewOsFs(), a.cfg.RepoPrep.LicensesDir, a.flags.dryRun)
}

// absArg resolves a book path argument against the working directory.
func absArg(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid path %s", path)
	}
	return abs, nil
}

func newPrepCmd(a *app) *cobra.Command {
	var (
		push      bool
		skipSetup bool
		jobs      int
		books     []string
	)
	cmd := &cobra.Command{
		Use:       "prep [p|push|sync]",
		Short:     MsgPrepShort,
		Long:      MsgPrepLong,
		Example:   MsgPrepExample,
		GroupID:   "core",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: pushModes,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if !isPushMode(args[0]) {
					return errors.Newf(errors.ErrInvalidInput, MsgPushModeArgument, args[0])
				}
				push = true
			}
			if err := a.load(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()
			cfg := a.cfg

			if !skipSetup {
				if err := setup.Init(ctx, a.setupOptions()); err != nil {
					return err
				}
			}
			if len(books) == 0 {
				names, err := a.ablLoader().Repositories(ctx)
				if err != nil {
					return err
				}
				books = names
			}
			p, err := poet.New(cfg.Poet.Command)
			if err != nil {
				return err
			}
			if jobs == 0 {
				jobs = cfg.Jobs
			}

			log.Info().Int("books", len(books)).Bool("push", push).Bool("dry_run", a.flags.dryRun).Msg("Preparing books")
			pl := pipeline.New(pipeline.Options{
				Org:       cfg.Org,
				Branch:    cfg.Branch,
				WorkDir:   cfg.WorkDir,
				BaseURL:   cfg.GitHub.BaseURL,
				StaticDir: cfg.RepoPrep.StaticDir,
				Push:      push && !a.flags.dryRun,
				Jobs:      jobs,
			}, p, a.licenseSyncer(), a.printer)
			results, err := pl.Run(ctx, books)
			if err != nil {
				return err
			}

			failed := pipeline.Failed(results)
			if a.printer.Structured() {
				if err := a.printer.Data(results); err != nil {
					return err
				}
			} else {
				a.printer.Summary(len(results), failed)
				if a.flags.dryRun {
					a.printer.Println(MsgDryRunNotice)
				}
			}
			if failed > 0 {
				return errors.Newf(errors.ErrBooksFailed, MsgBooksFailed, failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&push, "push", false, MsgFlagPush)
	cmd.Flags().BoolVar(&skipSetup, "skip-setup", false, MsgFlagSkipSetup)
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, MsgFlagJobs)
	cmd.Flags().StringSliceVar(&books, "book", nil, MsgFlagBook)
	return cmd
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "init",
		Short:   MsgInitShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			if err := setup.Init(cmd.Context(), a.setupOptions()); err != nil {
				return err
			}
			a.printer.Success("Tooling installed and git configured")
			return nil
		},
	}
}

func newBooksCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "books",
		Short:   MsgBooksShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			list, err := a.ablLoader().Load(cmd.Context())
			if err != nil {
				return err
			}
			if a.printer.Structured() {
				return a.printer.Data(list.ApprovedBooks)
			}
			for _, name := range list.Repositories() {
				a.printer.Println(name)
			}
			return nil
		},
	}
}

func newOrphansCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "orphans <book-path>",
		Short:   MsgOrphansShort,
		GroupID: "book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			bookPath, err := absArg(args[0])
			if err != nil {
				return err
			}
			p, err := poet.New(a.cfg.Poet.Command)
			if err != nil {
				return err
			}

			if a.flags.dryRun {
				orphans, err := p.Orphans(cmd.Context(), bookPath)
				if err != nil {
					return err
				}
				if a.printer.Structured() {
					return a.printer.Data(orphans)
				}
				for _, o := range orphans {
					a.printer.Println(o)
				}
				a.printer.Println(fmt.Sprintf(MsgOrphansFound, len(orphans), bookPath))
				return nil
			}

			removed, err := p.RemoveOrphans(cmd.Context(), bookPath, []string{bookPath})
			if err != nil {
				return err
			}
			a.printer.Success(fmt.Sprintf(MsgOrphansRemoved, removed, bookPath))
			return nil
		},
	}
}

func newMetaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "meta <book-path>",
		Short:   MsgMetaShort,
		GroupID: "book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			meta, err := bookmeta.Read(args[0])
			if err != nil {
				return err
			}
			if a.printer.Structured() {
				return a.printer.Data(meta)
			}
			return ui.NewPrinter(cmd.OutOrStdout(), ui.FormatJSON).Data(meta)
		},
	}
}

func newReadmeCmd(a *app) *cobra.Command {
	var preview bool
	cmd := &cobra.Command{
		Use:     "readme <book-path>",
		Short:   MsgReadmeShort,
		GroupID: "book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			bookPath := args[0]
			if preview || a.flags.dryRun {
				meta, err := bookmeta.Read(bookPath)
				if err != nil {
					return err
				}
				readme, err := bookmeta.RenderReadme(meta, a.cfg.RepoPrep.StaticDir)
				if err != nil {
					return err
				}
				return a.printer.Markdown(readme)
			}

			meta, err := bookmeta.Prepare(bookPath, a.cfg.RepoPrep.StaticDir)
			if err != nil {
				return err
			}
			if a.printer.Structured() {
				return a.printer.Data(meta)
			}
			a.printer.Success(fmt.Sprintf(MsgReadmeWritten, bookPath))
			return nil
		},
	}
	cmd.Flags().BoolVar(&preview, "preview", false, MsgFlagPreview)
	return cmd
}

func newLicenseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "license <book-path>",
		Short:   MsgLicenseShort,
		GroupID: "book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()
			bookPath, err := absArg(args[0])
			if err != nil {
				return err
			}
			meta, err := bookmeta.Read(bookPath)
			if err != nil {
				return err
			}
			lic, ok := meta.PrimaryLicense()
			if !ok {
				return errors.Newf(errors.ErrBookMeta, "no collections in %s", bookmeta.BooksXMLPath(bookPath))
			}
			repo, err := gitrepo.Open(ctx, gitrepo.Options{Path: bookPath, WorkingBranch: a.cfg.Branch})
			if err != nil {
				return err
			}

			res, err := a.licenseSyncer().Ensure(ctx, repo, bookPath, lic)
			if err != nil {
				return err
			}
			if a.printer.Structured() {
				return a.printer.Data(res)
			}
			msg := fmt.Sprintf(MsgLicenseStatus, res.Status, lic.Type+"-"+lic.Version)
			switch res.Status {
			case license.Unknown:
				a.printer.Warning(msg)
			case license.WouldUpdate:
				a.printer.Warning(msg)
				a.printer.Println(res.Diff)
			default:
				a.printer.Success(msg)
			}
			return nil
		},
	}
}

func newBranchesCmd(a *app) *cobra.Command {
	var push bool
	cmd := &cobra.Command{
		Use:     "branches <book-path>",
		Short:   MsgBranchesShort,
		GroupID: "book",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()
			bookPath, err := absArg(args[0])
			if err != nil {
				return err
			}
			repo, err := gitrepo.Open(ctx, gitrepo.Options{Path: bookPath, WorkingBranch: a.cfg.Branch})
			if err != nil {
				return err
			}

			var branches, tags []string
			if push && !a.flags.dryRun {
				if branches, err = cleanup.Branches(ctx, repo); err != nil {
					return err
				}
				if tags, err = cleanup.Tags(ctx, repo); err != nil {
					return err
				}
			} else {
				if branches, err = cleanup.PlannedBranches(ctx, repo); err != nil {
					return err
				}
				if tags, err = cleanup.PlannedTags(ctx, repo); err != nil {
					return err
				}
			}

			if a.printer.Structured() {
				return a.printer.Data(map[string][]string{"branches": branches, "tags": tags})
			}
			if push && !a.flags.dryRun {
				a.printer.Success(fmt.Sprintf("Deleted %d branch(es) and %d tag(s)", len(branches), len(tags)))
				return nil
			}
			a.printer.Plan("branches", branches)
			a.printer.Plan("tags", tags)
			return nil
		},
	}
	cmd.Flags().BoolVar(&push, "push", false, MsgFlagBranchPush)
	return cmd
}

func newURIsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "uris [archive-host] <cnx-id>",
		Short:   MsgURIsShort,
		GroupID: "misc",
		Example: "  bookops uris archive.cnx.org 7fccc9cf-9b71-44f6-800b-f9457fd64335",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd); err != nil {
				return err
			}
			host, cnxID := a.cfg.Archive.Host, args[0]
			if len(args) == 2 {
				host, cnxID = args[0], args[1]
			}

			uris, err := cnxuris.NewGenerator(host).Generate(cmd.Context(), cnxID)
			if err != nil {
				return err
			}
			path, err := cnxuris.Write(a.cfg.Archive.OutputDir, cnxID, uris)
			if err != nil {
				return err
			}
			log.Info().Str("path", path).Int("uris", len(uris)).Msg("URIs written")
			if a.printer.Structured() {
				return a.printer.Data(uris)
			}
			a.printer.Println(MsgURIsSuccess)
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				_, err := fmt.Fprint(cmd.OutOrStdout(), config.DefaultsContent())
				return err
			}
			if err := a.load(cmd); err != nil {
				return err
			}
			if a.printer.Structured() {
				return a.printer.Data(config.Masked(a.cfg))
			}
			data, err := config.Dump(a.cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info(cmd.Root().Name()))
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "man",
		Short:   MsgManShort,
		GroupID: "misc",
		Hidden:  true,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &doc.GenManHeader{
				Title:   "BOOKOPS",
				Section: "1",
				Source:  "bookops " + version.Version,
				Manual:  "bookops manual",
			}
			return doc.GenMan(cmd.Root(), header, cmd.OutOrStdout())
		},
	}
}
