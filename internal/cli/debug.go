package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotsetgreg/claimcheck/internal/claims"
	"github.com/dotsetgreg/claimcheck/internal/variants"
)

var debugJSON bool

// variantsCmd prints the naming-convention spellings of a term
var variantsCmd = &cobra.Command{
	Use:   "variants <term>",
	Short: "Show the naming-convention variants of an identifier",
	Long: `Variants prints every spelling the verifier would search for:
PascalCase, camelCase, snake_case, SCREAMING_SNAKE, kebab-case, and the
lowercase concatenation.

Example:
  claimcheck variants getUserData
  claimcheck variants user_service --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set := variants.Generate(args[0])
		if debugJSON {
			return printJSON(set)
		}
		for _, v := range set.All {
			fmt.Println(v)
		}
		return nil
	},
}

// parseCmd shows what the claim parser extracts from text
var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Show the claims parsed out of a piece of text",
	Long: `Parse runs the claim parser over the text and prints every claim it
finds, without verifying anything.

Example:
  claimcheck parse "I renamed UserService to AuthService and removed LegacyAuth"
  claimcheck parse "updated the timeout in config files" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		parsed := claims.ParseAll(text)
		if len(parsed) == 0 {
			claim, err := claims.Parse(text)
			if err != nil {
				return err
			}
			parsed = append(parsed, claim)
		}

		if debugJSON {
			return printJSON(parsed)
		}
		for _, claim := range parsed {
			fmt.Printf("%-7s old=%q", claim.Action, claim.OldValue)
			if claim.NewValue != "" {
				fmt.Printf(" new=%q", claim.NewValue)
			}
			if claim.ScopePattern != "" {
				fmt.Printf(" scope=%s(%s)", claim.Scope, claim.ScopePattern)
			}
			fmt.Println()
		}
		return nil
	},
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	rootCmd.AddCommand(variantsCmd)
	rootCmd.AddCommand(parseCmd)

	variantsCmd.Flags().BoolVar(&debugJSON, "json", false, "JSON output")
	parseCmd.Flags().BoolVar(&debugJSON, "json", false, "JSON output")
}
