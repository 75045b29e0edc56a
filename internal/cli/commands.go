package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/fstree/internal/version"
	"github.com/arthur-debert/fstree/pkg/builder"
	"github.com/arthur-debert/fstree/pkg/config"
	"github.com/arthur-debert/fstree/pkg/errors"
	"github.com/arthur-debert/fstree/pkg/logging"
	"github.com/arthur-debert/fstree/pkg/reader"
	"github.com/arthur-debert/fstree/pkg/render"
	"github.com/arthur-debert/fstree/pkg/tree"
	"github.com/arthur-debert/fstree/pkg/types"
	"github.com/arthur-debert/fstree/pkg/writer"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		cfgFile   string
	)

	rootCmd := &cobra.Command{
		Use:     "fstree",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfiguration(config.Sources{File: cfgFile})
			if err != nil {
				return err
			}
			config.Initialize(cfg)

			// Setup logging based on verbosity
			logging.Setup(logging.Options{Verbosity: verbosity, File: cfg.Logging.File})
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/fstree/config.toml)")

	// Add all commands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newMergeCmd())
	rootCmd.AddCommand(newVerifyCmd())
	rootCmd.AddCommand(newGenConfigCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Long:  MsgVersionLong,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, MsgVersionFormat, version.Version)
			if version.Commit != "" {
				_, _ = fmt.Fprintf(out, MsgCommitFormat, version.Commit)
			}
			if version.Date != "" {
				_, _ = fmt.Fprintf(out, MsgBuiltFormat, version.Date)
			}
		},
	}
}

// readFlags are the reader settings every reading command accepts
type readFlags struct {
	aware      bool
	bestEffort bool
	workers    int
}

func (f *readFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.aware, "aware", false, "Record symlinks instead of following them")
	cmd.Flags().BoolVar(&f.bestEffort, "best-effort", false, "Skip failing entries instead of aborting")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Read sibling directories in parallel (default from config)")
}

// options starts from the configured reader settings and applies the flags
// the user actually set.
func (f *readFlags) options(cmd *cobra.Command) reader.Options {
	opts := config.Get().ReadOptions()
	if f.aware {
		opts.Mode = types.ModeAware
	}
	if f.bestEffort {
		opts.Policy = types.PolicyBestEffort
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = f.workers
	}
	return opts
}

func newShowCmd() *cobra.Command {
	var (
		rf       readFlags
		maxDepth int
		only     []string
	)

	cmd := &cobra.Command{
		Use:   "show PATH",
		Short: MsgShowShort,
		Args:  cobra.ExactArgs(1),
		Example: `  fstree show ~/.config
  fstree show --aware --max-depth 2 .
  fstree show --only symlink ~/dotfiles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds, err := parseKinds(only)
			if err != nil {
				return err
			}

			res, err := reader.ReadAt(cmd.Context(), args[0], rf.options(cmd))
			if err != nil {
				return err
			}
			if err := render.Tree(cmd.OutOrStdout(), args[0], res.Tree, render.Options{
				MaxDepth: maxDepth,
				Only:     kinds,
			}); err != nil {
				return err
			}
			reportSkipped(cmd.ErrOrStderr(), res.Errors)
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Draw at most this many levels (0 draws everything)")
	cmd.Flags().StringSliceVar(&only, "only", nil, "Draw only these kinds: regular, dir, symlink")
	return cmd
}

func newLsCmd() *cobra.Command {
	var rf readFlags

	cmd := &cobra.Command{
		Use:   "ls PATH",
		Short: MsgLsShort,
		Long:  MsgLsShort + ".\n\n" + MsgPathTextHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := reader.ReadAt(cmd.Context(), args[0], rf.options(cmd))
			if err != nil {
				return err
			}
			if !res.Tree.IsDir() {
				return errors.Newf(errors.ErrInvalidInput, "%s is a %s, not a directory", args[0], res.Tree.Describe())
			}
			if err := builder.Format(cmd.OutOrStdout(), res.Tree); err != nil {
				return err
			}
			reportSkipped(cmd.ErrOrStderr(), res.Errors)
			return nil
		},
	}
	rf.register(cmd)
	return cmd
}

// writeFlags are the writer settings the writing commands accept
type writeFlags struct {
	overwrite  bool
	bestEffort bool
	atomic     bool
}

func (f *writeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Replace existing entries of another kind")
	cmd.Flags().BoolVar(&f.bestEffort, "best-effort", false, "Skip failing entries instead of aborting")
	cmd.Flags().BoolVar(&f.atomic, "atomic", false, "Undo everything if any entry fails")
}

func (f *writeFlags) options() writer.Options {
	opts := config.Get().WriteOptions()
	if f.overwrite {
		opts.Overwrite = true
	}
	if f.bestEffort {
		opts.Policy = types.PolicyBestEffort
	}
	if f.atomic {
		opts.Atomic = true
	}
	return opts
}

func newBuildCmd() *cobra.Command {
	var wf writeFlags

	cmd := &cobra.Command{
		Use:   "build SPECFILE TARGET",
		Short: MsgBuildShort,
		Long:  MsgBuildLong,
		Args:  cobra.ExactArgs(2),
		Example: `  fstree build layout.txt ./out
  printf 'src/\nREADME\n' | fstree build - ./project`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := parseSpecFile(cmd, args[0])
			if err != nil {
				return err
			}
			return writeTree(cmd, root, args[1], wf.options())
		},
	}
	wf.register(cmd)
	return cmd
}

func newMergeCmd() *cobra.Command {
	var wf writeFlags

	cmd := &cobra.Command{
		Use:   "merge A B TARGET",
		Short: MsgMergeShort,
		Long:  MsgMergeLong,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := config.Get().ReadOptions()
			a, err := reader.Aware(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			b, err := reader.Aware(cmd.Context(), args[1], opts)
			if err != nil {
				return err
			}

			merged, err := tree.Merge(a, b)
			if err != nil {
				for _, c := range tree.ConflictsOf(err) {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), MsgConflictFormat, c)
				}
				return err
			}
			return writeTree(cmd, merged, args[2], wf.options())
		},
	}
	wf.register(cmd)
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var aware bool

	cmd := &cobra.Command{
		Use:   "verify SPECFILE PATH",
		Short: MsgVerifyShort,
		Long:  MsgVerifyLong,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, err := parseSpecFile(cmd, args[0])
			if err != nil {
				return err
			}

			opts := config.Get().VerifyOptions()
			if aware {
				opts.Mode = types.ModeAware
			}
			d, err := writer.ReadCopyAt(cmd.Context(), expected, args[1], opts)
			if err != nil {
				return err
			}
			if d != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgDivergeFormat, d)
				return errors.Newf(errors.ErrInvalidInput, "%s does not match %s", args[1], args[0]).
					WithDetail(errors.DetailPath, d.Path)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), MsgVerifyOK)
			return nil
		},
	}
	cmd.Flags().BoolVar(&aware, "aware", false, "Compare symlinks instead of following them")
	return cmd
}

func newGenConfigCmd() *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:   "genconfig",
		Short: MsgGenConfigShort,
		Long: `Print the default configuration with every value commented out, ready to be
saved as ` + "$XDG_CONFIG_HOME/fstree/config.toml. With --effective, print the values\nin use after every layer has been applied.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if effective {
				return config.Generate(cmd.OutOrStdout(), config.Get())
			}
			_, err := io.WriteString(cmd.OutOrStdout(), config.GenerateConfigContent())
			return err
		},
	}
	cmd.Flags().BoolVar(&effective, "effective", false, "Print the configuration currently in use")
	return cmd
}

// parseSpecFile reads path text from name, or from stdin when name is "-".
func parseSpecFile(cmd *cobra.Command, name string) (*tree.Node, error) {
	if name == "-" {
		return builder.Parse(cmd.InOrStdin())
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.FromOS(err, "open", name, name)
	}
	defer func() { _ = f.Close() }()

	root, err := builder.Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, errors.GetErrorCode(err), "%s", name)
	}
	return root, nil
}

func writeTree(cmd *cobra.Command, root *tree.Node, target string, opts writer.Options) error {
	report, err := writer.WriteAt(cmd.Context(), root, target, opts)
	if err != nil {
		return err
	}
	reportSkipped(cmd.ErrOrStderr(), report.Errors)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgWriteSummary, len(report.Created), len(report.Replaced), len(report.Unchanged))
	if !report.OK() {
		return report.Errors.Err()
	}
	return nil
}

func reportSkipped(w io.Writer, errs types.ErrorList) {
	for _, err := range errs {
		path := errors.GetErrorDetails(err)[errors.DetailPath]
		_, _ = fmt.Fprintf(w, MsgSkippedFormat, path, err)
	}
}

// parseKinds maps --only values onto node kinds.
func parseKinds(names []string) ([]tree.Kind, error) {
	kinds := make([]tree.Kind, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "regular", "file", "f":
			kinds = append(kinds, tree.Regular)
		case "dir", "directory", "d":
			kinds = append(kinds, tree.Directory)
		case "symlink", "link", "l":
			kinds = append(kinds, tree.Symlink)
		default:
			return nil, errors.Newf(errors.ErrInvalidInput, "unknown kind %q (want regular, dir or symlink)", name)
		}
	}
	return kinds, nil
}
