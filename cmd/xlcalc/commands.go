package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/midbel/cli"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/midbel/xlcalc/calc"
	"github.com/midbel/xlcalc/doc"
	"github.com/midbel/xlcalc/format"
	"github.com/midbel/xlcalc/formula"
	"github.com/midbel/xlcalc/grid"
	"github.com/midbel/xlcalc/layout"
	"github.com/midbel/xlcalc/value"
)

type EvalCommand struct {
	File      string
	Sheet     string
	Number    string
	Date      string
	Variables map[string]value.Value
}

func (c EvalCommand) Run(args []string) error {
	c.Variables = make(map[string]value.Value)

	set := cli.NewFlagSet("eval")
	set.StringVar(&c.File, "f", "", "spreadsheet used to resolve references")
	set.StringVar(&c.Sheet, "s", "", "sheet used to resolve references without sheet")
	set.StringVar(&c.Number, "n", "", "pattern used to print numbers")
	set.StringVar(&c.Date, "t", format.DefaultDatePattern, "pattern used to print dates")
	set.Func("d", "define a variable (name=value)", func(str string) error {
		name, raw, ok := strings.Cut(str, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("%s: invalid variable definition", str)
		}
		c.Variables[strings.TrimSpace(name)] = value.Parse(raw)
		return nil
	})
	if err := set.Parse(args); err != nil {
		return err
	}
	vf, err := c.formatter()
	if err != nil {
		return err
	}
	var file *grid.File
	if c.File != "" {
		if file, err = doc.Open(c.File); err != nil {
			return err
		}
	}
	engine := calc.New(file, calc.WithLogger(&logger), calc.WithVariables(c.Variables))

	var failed bool
	for _, str := range set.Args() {
		res, err := engine.Evaluate(c.Sheet, str)
		if err != nil {
			failed = true
			fmt.Fprintf(os.Stderr, "%s: %s", str, err)
			fmt.Fprintln(os.Stderr)
			continue
		}
		out, err := vf.Format(res)
		if err != nil {
			out = res.String()
		}
		fmt.Fprintln(os.Stdout, out)
	}
	if failed {
		return errFail
	}
	return nil
}

func (c EvalCommand) formatter() (*format.ValueFormatter, error) {
	vf := format.FormatValue()
	vf.Set(value.TypeBool, format.FormatBoolUpper())
	if c.Number != "" {
		if err := vf.Number(c.Number); err != nil {
			return nil, err
		}
	}
	if err := vf.Date(c.Date); err != nil {
		return nil, err
	}
	return vf, nil
}

type CalcCommand struct {
	OutFile string
	Sheet   string
	Stats   bool
	NoMemo  bool
	Width   int
	Sep     string
}

func (c CalcCommand) Run(args []string) error {
	set := cli.NewFlagSet("calc")
	set.StringVar(&c.OutFile, "o", "", "write result to output file (xlsx or csv)")
	set.StringVar(&c.Sheet, "s", "", "sheet to print or to export as csv")
	set.BoolVar(&c.Stats, "m", false, "print evaluation counters")
	set.BoolVar(&c.NoMemo, "x", false, "compute shared dependencies again for each cell")
	set.IntVar(&c.Width, "w", 12, "column width")
	set.StringVar(&c.Sep, "c", "|", "column separator")
	if err := set.Parse(args); err != nil {
		return err
	}
	file, err := doc.Open(set.Arg(0))
	if err != nil {
		return err
	}
	var (
		reg    = prometheus.NewRegistry()
		engine = calc.New(file, calc.WithLogger(&logger), calc.WithRegisterer(reg), calc.WithMemo(!c.NoMemo))
	)
	if err := engine.Recalculate(); err != nil {
		logger.Warn().Err(err).Msg("some formulas can not be computed")
	}
	if c.Stats {
		printStats(reg)
	}
	if c.OutFile != "" {
		return doc.Save(file, c.Sheet, c.OutFile)
	}
	sheets := file.Sheets()
	if c.Sheet != "" {
		sh, err := file.Sheet(c.Sheet)
		if err != nil {
			return err
		}
		sheets = []*grid.Sheet{sh}
	}
	for _, sh := range sheets {
		c.printSheet(sh)
	}
	return nil
}

func (c CalcCommand) printSheet(sheet *grid.Sheet) {
	if c.Width <= 0 {
		c.Width = 16
	}
	fmt.Fprintf(os.Stdout, "# %s", sheet.Name)
	fmt.Fprintln(os.Stdout)
	var (
		codes = format.NewCodes()
		pos   = layout.Position{Sheet: sheet.Name}
	)
	for row := range sheet.Rows() {
		pos.Line++
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(os.Stdout, c.Sep)
			}
			pos.Column = int64(i) + 1
			fmt.Fprintf(os.Stdout, " %-*s ", c.Width, codes.Format(sheet.NumberFormat(pos), v))
		}
		fmt.Fprintln(os.Stdout)
	}
}

func printStats(reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn().Err(err).Msg("counters not available")
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, p := range m.GetLabel() {
				labels = append(labels, p.GetName()+"="+p.GetValue())
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(os.Stderr, "%s %v", name, m.GetCounter().GetValue())
			fmt.Fprintln(os.Stderr)
		}
	}
}

type TreeCommand struct {
	File  string
	Sheet string
}

func (c TreeCommand) Run(args []string) error {
	set := cli.NewFlagSet("tree")
	set.StringVar(&c.File, "f", "", "spreadsheet with the cell to print")
	set.StringVar(&c.Sheet, "s", "", "sheet of the cell")
	if err := set.Parse(args); err != nil {
		return err
	}
	text := set.Arg(0)
	var file *grid.File
	if c.File != "" {
		f, err := doc.Open(c.File)
		if err != nil {
			return err
		}
		if text, err = c.cellFormula(f, text); err != nil {
			return err
		}
		file = f
	}
	engine := calc.New(file, calc.WithLogger(&logger))
	expr, err := engine.Parse(text)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, formula.Dump(expr))
	if refs := formula.References(expr); len(refs) > 0 {
		fmt.Fprintf(os.Stdout, "references: %s", strings.Join(refs, ", "))
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

func (c TreeCommand) cellFormula(file *grid.File, addr string) (string, error) {
	pos, err := layout.ParsePosition(addr)
	if err != nil {
		return "", err
	}
	if pos.Sheet == "" {
		pos.Sheet = c.Sheet
	}
	var sh *grid.Sheet
	if pos.Sheet == "" {
		sh, err = file.ActiveSheet()
	} else {
		sh, err = file.Sheet(pos.Sheet)
	}
	if err != nil {
		return "", err
	}
	cell, ok := sh.Cell(pos)
	if !ok || !cell.IsFormula() {
		return "", fmt.Errorf("%s: no formula in cell", addr)
	}
	return cell.Formula.Value(), nil
}

type GetInfoCommand struct{}

func (c GetInfoCommand) Run(args []string) error {
	set := cli.NewFlagSet("info")
	if err := set.Parse(args); err != nil {
		return err
	}
	f, err := doc.Open(set.Arg(0))
	if err != nil {
		return err
	}
	pattern := "%d %s%s(%s): %d lines, %d columns - %d formulas"
	for _, s := range f.Sheets() {
		active := " "
		if s.Active {
			active = "*"
		}
		var count int
		for c := range s.Cells() {
			if c.IsFormula() {
				count++
			}
		}
		fmt.Fprintf(os.Stdout, pattern, s.Index, active, s.Name, s.Status(), s.Size.Lines, s.Size.Columns, count)
		fmt.Fprintln(os.Stdout)
	}
	return nil
}
