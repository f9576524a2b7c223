package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/winspan/listsync/internal/reconcile"
)

func (a *App) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Download the configured lists and merge them into pihole",
		Example: `  listsync sync
  listsync sync --docker --list regex-blacklist
  listsync sync --dir /srv/pihole --dry-run`,
		Args: cobra.NoArgs,
		RunE: a.runSync,
	}
}

func (a *App) uninstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove every entry listsync added, keeping user entries",
		Args:  cobra.NoArgs,
		RunE:  a.runUninstall,
	}
}

func (a *App) listsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show the configured lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ls, err := a.selectedLists()
			if err != nil {
				return err
			}

			table := tablewriter.NewTable(a.stdout)
			table.Header("NAME", "KIND", "FORMAT", "FILE", "URL")
			for _, l := range ls {
				if err := table.Append(l.Name, l.Kind.String(), string(l.Format), l.File, l.URL); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

func (a *App) runSync(cmd *cobra.Command, _ []string) error {
	ls, err := a.selectedLists()
	if err != nil {
		return err
	}

	res, err := a.reconciler(cmd.Context()).RunAll(cmd.Context(), ls)
	a.writeMetrics()
	if err != nil {
		return err
	}

	printResult(a.stdout, res)
	return nil
}

func (a *App) runUninstall(cmd *cobra.Command, _ []string) error {
	ls, err := a.selectedLists()
	if err != nil {
		return err
	}

	res, err := a.reconciler(cmd.Context()).Uninstall(cmd.Context(), ls)
	a.writeMetrics()
	if err != nil {
		return err
	}

	printResult(a.stdout, res)
	return nil
}

// printResult 输出每个列表的最终条目，每行一个；以 # 开头的行是摘要
func printResult(w io.Writer, res *reconcile.Result) {
	for _, rep := range res.Reports {
		state := ""
		if rep.DryRun {
			state = " (dry run)"
		}
		fmt.Fprintf(w, "# %s [%s, %s]%s: +%d -%d, %d entries\n",
			rep.List, rep.Kind, rep.Mode, state, len(rep.Added), len(rep.Removed), len(rep.Entries))
		for _, e := range rep.Entries {
			fmt.Fprintln(w, e)
		}
	}
}
