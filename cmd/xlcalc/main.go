package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/midbel/cli"
	"github.com/oarkflow/log"
)

var errFail = errors.New("fail")

var (
	summary = "xlcalc"
	help    = "compute the formulas of spreadsheets from the command line"
)

var logger = log.DefaultLogger

func main() {
	var (
		set     = cli.NewFlagSet("xlcalc")
		root    = prepare()
		verbose bool
	)
	set.BoolVar(&verbose, "v", false, "print debug messages")
	root.SetSummary(summary)
	root.SetHelp(help)
	if err := set.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			root.Help()
			os.Exit(2)
		}
	}
	logger.Level = log.InfoLevel
	if verbose {
		logger.Level = log.DebugLevel
	}
	err := root.Execute(set.Args())
	if err != nil {
		if s, ok := err.(cli.SuggestionError); ok && len(s.Others) > 0 {
			fmt.Fprintln(os.Stderr, "similar command(s)")
			for _, n := range s.Others {
				fmt.Fprintln(os.Stderr, "-", n)
			}
		}
		if !errors.Is(err, errFail) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func prepare() *cli.CommandTrie {
	root := cli.New()
	root.Register([]string{"eval"}, &evalCmd)
	root.Register([]string{"calc"}, &calcCmd)
	root.Register([]string{"tree"}, &treeCmd)
	root.Register([]string{"info"}, &infoCmd)
	return root
}

var evalCmd = cli.Command{
	Name:    "eval",
	Alias:   []string{"exec"},
	Summary: "evaluate formulas, optionally against the sheets of a spreadsheet",
	Usage:   "eval [-f file] [-s sheet] [-d name=value] <formula> [<formula>,...]",
	Handler: &EvalCommand{},
}

var calcCmd = cli.Command{
	Name:    "calc",
	Alias:   []string{"recalc"},
	Summary: "compute all the formulas of a spreadsheet",
	Usage:   "calc [-o file] [-s sheet] [-m] <spreadsheet>",
	Handler: &CalcCommand{},
}

var treeCmd = cli.Command{
	Name:    "tree",
	Alias:   []string{"ast"},
	Summary: "print the tree of a formula or of the formula of a cell",
	Usage:   "tree [-f file] <formula|cell>",
	Handler: &TreeCommand{},
}

var infoCmd = cli.Command{
	Name:    "info",
	Summary: "get informations about sheets in given file",
	Usage:   "info <spreadsheet>",
	Handler: &GetInfoCommand{},
}
