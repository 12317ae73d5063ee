package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/stash/internal/version"
	"github.com/arthur-debert/stash/pkg/logging"
	"github.com/arthur-debert/stash/pkg/resolver"
)

var (
	verbosity int

	flagName    string
	flagCopy    bool
	flagForce   bool
	flagRestore bool

	flagPush bool
	flagPop  bool
	flagPeek bool

	flagList    bool
	flagInfo    bool
	flagHistory bool
	flagDump    bool
	flagInit    bool
	flagSearch  string
	flagRename  string
	flagTar     string
	flagUntar   string
	flagClean   int

	rootCmd = &cobra.Command{
		Use:   "stash [paths...]",
		Short: "A context-inferring file stash",
		Long: `stash moves files and directories out of your working tree into a
managed store and restores them later. The operation is inferred from
context: paths that exist are stashed, a single name that doesn't is
restored.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := requestFromFlags(cmd, args)
			if err := dispatch(req); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}
			return nil
		},
	}
)

// Execute runs the root command. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

// requestFromFlags maps the flag surface onto the resolver's request.
// Flags the user did not pass stay nil so the resolver can tell "not
// given" from a zero value.
func requestFromFlags(cmd *cobra.Command, args []string) resolver.Request {
	req := resolver.Request{
		Items:   args,
		Name:    flagName,
		Copy:    flagCopy,
		Force:   flagForce,
		Restore: flagRestore,
		Push:    flagPush,
		Pop:     flagPop,
		Peek:    flagPeek,
		List:    flagList,
		Info:    flagInfo,
		History: flagHistory,
		Dump:    flagDump,
		Init:    flagInit,
	}
	if cmd.Flags().Changed("search") {
		req.Search = &flagSearch
	}
	if cmd.Flags().Changed("rename") {
		req.Rename = &flagRename
	}
	if cmd.Flags().Changed("tar") {
		req.Tar = &flagTar
	}
	if cmd.Flags().Changed("untar") {
		req.Untar = &flagUntar
	}
	if cmd.Flags().Changed("clean") {
		req.Clean = &flagClean
	}
	return req
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.Flags().StringVarP(&flagName, "name", "n", "", "Name the new entry")
	rootCmd.Flags().BoolVarP(&flagCopy, "copy", "c", false, "Copy instead of move (originals or entry kept)")
	rootCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Overwrite existing files when restoring")
	rootCmd.Flags().BoolVarP(&flagRestore, "restore", "r", false, "Restore to the entry's original directory")

	rootCmd.Flags().BoolVar(&flagPush, "push", false, "Explicitly stash the given paths")
	rootCmd.Flags().BoolVar(&flagPop, "pop", false, "Explicitly restore an entry")
	rootCmd.Flags().BoolVar(&flagPeek, "peek", false, "Copy an entry out without removing it")

	rootCmd.Flags().BoolVarP(&flagList, "list", "l", false, "List all entries")
	rootCmd.Flags().BoolVarP(&flagInfo, "info", "i", false, "Show details for an entry")
	rootCmd.Flags().BoolVar(&flagHistory, "history", false, "Show the operation history")
	rootCmd.Flags().BoolVar(&flagDump, "dump", false, "Restore every entry to the current directory")
	rootCmd.Flags().BoolVar(&flagInit, "init", false, "Initialize the store")
	rootCmd.Flags().StringVarP(&flagSearch, "search", "s", "", "Search entries by name")
	rootCmd.Flags().StringVar(&flagRename, "rename", "", "Rename an entry (OLD:NEW)")
	rootCmd.Flags().StringVar(&flagTar, "tar", "", "Export the store to a tar.gz archive")
	rootCmd.Flags().StringVar(&flagUntar, "untar", "", "Import entries from a tar.gz archive")
	rootCmd.Flags().IntVar(&flagClean, "clean", 0, "Remove entries older than N days")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stash version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}
