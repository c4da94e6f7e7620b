package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/EGRM23/fisica-computacional-2024/internal/objectives"
)

func newObjectivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "objectives",
		Aliases: []string{"ls"},
		Short:   "List the registered objectives",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDIM\tDESCRIPTION")
			for _, o := range objectives.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Name, dimRange(o), o.Description)
			}
			return tw.Flush()
		},
	}
}

func dimRange(o objectives.Objective) string {
	switch {
	case o.MaxDim > 0 && o.MinDim == o.MaxDim:
		return fmt.Sprintf("%d", o.MinDim)
	case o.MaxDim > 0:
		return fmt.Sprintf("%d-%d", o.MinDim, o.MaxDim)
	case o.MinDim > 1:
		return fmt.Sprintf("%d+", o.MinDim)
	}
	return "any"
}
