package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"forge3d/internal/catalog"
	"forge3d/internal/history"
)

func newHistoryCmd(e *env) *cobra.Command {
	hist := &cobra.Command{Use: "history", Short: "Manage generated and imported models", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("history requires a subcommand: list|rename|delete|clear")
	}}

	list := &cobra.Command{Use: "list", Aliases: []string{"ls"}, Short: "List history, newest first", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStores(cmd.Context(), e.cfg, e.log)
		if err != nil {
			return err
		}
		defer s.Close()
		return printEntries(e.out, s.history.List())
	}}
	rename := &cobra.Command{Use: "rename <id> <name>", Short: "Rename an entry", Args: cobra.ExactArgs(2), RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStores(cmd.Context(), e.cfg, e.log)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.history.Rename(cmd.Context(), args[0], args[1])
	}}
	del := &cobra.Command{Use: "delete <id>", Aliases: []string{"rm"}, Short: "Delete an entry and its model file", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStores(cmd.Context(), e.cfg, e.log)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.history.Delete(cmd.Context(), args[0])
	}}
	clearCmd := &cobra.Command{Use: "clear", Short: "Delete every entry and its model file", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStores(cmd.Context(), e.cfg, e.log)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.history.DeleteAll(cmd.Context())
	}}
	hist.AddCommand(list, rename, del, clearCmd)
	return hist
}

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{Use: "import <path>", Short: "Copy a local model file into the library", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStores(cmd.Context(), e.cfg, e.log)
		if err != nil {
			return err
		}
		defer s.Close()
		entry, err := s.history.Import(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "imported %s as %s\n", entry.ModelURL, entry.ID)
		return nil
	}}
}

func newSamplesCmd(e *env) *cobra.Command {
	return &cobra.Command{Use: "samples", Short: "List bundled sample models", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		assets, err := catalog.LoadDir(e.cfg.Storage.BundledDir)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFORMAT\tSIZE\tPATH")
		for _, a := range assets {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", a.ID, a.Format, a.Size, a.Path)
		}
		return w.Flush()
	}}
}

func printEntries(out io.Writer, entries []history.Entry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tSIZE\tCREATED")
	for _, en := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", en.ID, en.ModelName, en.GenerationType, en.FileSize, en.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
