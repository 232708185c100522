package main

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/vango-dev/mutate/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe an error code",
		Long: `Describe an error code such as M001. Without an argument, list every
code the engine and this tool can report.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				tbl := tablewriter.NewWriter(out)
				tbl.SetHeader([]string{"Code", "Category", "Message"})
				for _, code := range errors.GetAllCodes() {
					tmpl, _ := errors.GetTemplate(code)
					tbl.Append([]string{code, string(tmpl.Category), tmpl.Message})
				}
				tbl.Render()
				return nil
			}

			code := strings.ToUpper(args[0])
			if _, ok := errors.GetTemplate(code); !ok {
				return errors.New(errors.CodeUsage).
					WithDetail("No error is registered under " + code).
					WithSuggestion("Run 'mutatebench explain' to list the codes")
			}
			fmt.Fprint(out, errors.New(code).Format(false))
			return nil
		},
	}
}
