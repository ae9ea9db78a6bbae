package main

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/dhamidi/markscan/grammar"
	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"
)

func newGrammarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grammar",
		Short:         "Inspect the link grammar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newGrammarCheckCmd())
	cmd.AddCommand(newGrammarShowCmd())
	cmd.AddCommand(newGrammarMatchCmd())

	return cmd
}

func newGrammarCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:           "check [file]",
		Short:         "Parse and verify an EBNF grammar (default: the built-in link grammar)",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			g, err := loadGrammar(args)
			if err != nil {
				printErrors(out, err)
				return err
			}

			start := startProduction
			if start == "" && len(args) == 0 {
				start = grammar.Start
			}
			if start == "" {
				fmt.Fprintf(out, "%d productions, syntax ok\n", len(g))
				return nil
			}

			if err := grammar.Verify(g, start); err != nil {
				printErrors(out, err)
				return err
			}
			fmt.Fprintf(out, "%d productions, verified from %s\n", len(g), start)
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (for a file, if empty only checks syntax)")

	return cmd
}

func newGrammarShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the built-in link grammar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := io.WriteString(cmd.OutOrStdout(), grammar.Source())
			return err
		},
	}
}

func newGrammarMatchCmd() *cobra.Command {
	var production string

	cmd := &cobra.Command{
		Use:   "match <text>",
		Short: "Report how much of text a production of the link grammar derives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grammar.Load()
			if err != nil {
				return err
			}
			if _, ok := g[production]; !ok {
				return fmt.Errorf("unknown production: %s", production)
			}

			n := grammar.NewMatcher(g).Match(production, args[0])
			out := cmd.OutOrStdout()
			switch {
			case n < 0:
				fmt.Fprintf(out, "%s: no match\n", production)
			case n == len([]rune(args[0])):
				fmt.Fprintf(out, "%s: full match\n", production)
			default:
				fmt.Fprintf(out, "%s: matched %q\n", production, string([]rune(args[0])[:n]))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&production, "production", "p", grammar.Start, "production to match")

	return cmd
}

func loadGrammar(args []string) (ebnf.Grammar, error) {
	if len(args) == 0 {
		return grammar.Load()
	}
	return grammar.LoadFile(args[0])
}

// printErrors prints each error of an ebnf error list on its own line.
func printErrors(w io.Writer, err error) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		v := reflect.ValueOf(e)
		if v.Kind() == reflect.Slice {
			for i := 0; i < v.Len(); i++ {
				fmt.Fprintln(w, v.Index(i).Interface())
			}
			return
		}
	}
	fmt.Fprintln(w, err)
}
