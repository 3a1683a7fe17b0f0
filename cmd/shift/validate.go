package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/shift/internal/compiler"
	"github.com/aretw0/shift/pkg/adapters/memory"
	"github.com/aretw0/shift/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a page definition for configuration problems",
	Long: `Parses every configured element of the page definition and reports
diagnostics: malformed time specs, unknown keywords, invalid ranges and
elements that cannot be initialized at all.`,
	Run: func(cmd *cobra.Command, args []string) {
		pagePath, _ := cmd.Flags().GetString("page")

		spec, err := memory.LoadPage(pagePath)
		if err != nil {
			fmt.Printf("Error loading page: %v\n", err)
			os.Exit(1)
		}
		host := memory.NewHost(*spec)

		parser := compiler.NewParser(compiler.StandardDefaults)
		problems := 0
		fatal := 0
		for _, id := range host.Configured() {
			attrs, err := host.Attributes(id)
			if err != nil {
				continue
			}
			if _, isContainer := attrs[domain.AttrTarget]; isContainer {
				continue
			}

			_, diags, err := parser.Parse(attrs)
			for _, d := range diags {
				problems++
				fmt.Printf("  %s: %s\n", id, d)
			}
			if err != nil {
				if errors.Is(err, domain.ErrNoStates) {
					fatal++
					fmt.Printf("  %s: element cannot be initialized: %v\n", id, err)
				} else {
					fmt.Printf("  %s: %v\n", id, err)
				}
			}
		}

		if problems == 0 && fatal == 0 {
			fmt.Println("OK: no configuration problems found")
			return
		}
		fmt.Printf("%d problem(s), %d element(s) not initializable\n", problems, fatal)
		if fatal > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
