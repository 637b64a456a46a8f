package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lox/nodccalc/internal/config"
	"github.com/lox/nodccalc/internal/convert"
	"github.com/lox/nodccalc/internal/nutrients"
	"github.com/lox/nodccalc/internal/pipeline"
	"github.com/lox/nodccalc/internal/seawater"
	"github.com/lox/nodccalc/internal/table"
)

type DeriveCmd struct {
	RuleFlags `embed:""`

	In          string `help:"Input CSV; '-' reads stdin." default:"-" env:"NODCCALC_IN"`
	Out         string `help:"Output CSV; '-' writes stdout." default:"-" env:"NODCCALC_OUT"`
	Workers     int    `help:"Concurrent row chunks (0 uses GOMAXPROCS)." default:"0" env:"NODCCALC_WORKERS"`
	MetricsFile string `help:"Write Prometheus metrics to this textfile after the run." env:"NODCCALC_METRICS_FILE"`
}

func (c *DeriveCmd) Run(ctx context.Context) error {
	rs, err := c.ruleSet()
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(c.In)
	if err != nil {
		return err
	}
	defer closeIn()

	frame, err := readCSV(in, rs.Columns.FlagColumns())
	if err != nil {
		return fmt.Errorf("read %s: %w", c.In, err)
	}
	log.Printf("derive: read %d rows from %s", frame.Len(), c.In)

	p := pipeline.New(*rs, seawater.EOS80{}, pipeline.WithWorkers(c.Workers))
	if err := p.Process(ctx, frame); err != nil {
		return err
	}

	out, closeOut, err := openOutput(c.Out)
	if err != nil {
		return err
	}
	if err := writeCSV(out, frame); err != nil {
		closeOut()
		return fmt.Errorf("write %s: %w", c.Out, err)
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("close %s: %w", c.Out, err)
	}

	if c.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(c.MetricsFile, prometheus.DefaultGatherer); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

func (f RuleFlags) ruleSet() (*config.RuleSet, error) {
	rs, err := config.Load(f.Rules, f.Preset)
	if err != nil {
		return nil, err
	}
	if f.Scheme != "" {
		withScheme, err := rs.WithScheme(f.Scheme)
		if err != nil {
			return nil, err
		}
		rs = &withScheme
	}
	return rs, nil
}

type RulesCmd struct {
	RuleFlags `embed:""`
}

func (c *RulesCmd) Run() error {
	return c.write(os.Stdout)
}

// write prints the rule-set as YAML, headed by the DIN rule evaluation
// order as a comment so the output still loads as a rule-set file.
func (c *RulesCmd) write(w io.Writer) error {
	rs, err := c.ruleSet()
	if err != nil {
		return err
	}
	data, err := rs.YAML()
	if err != nil {
		return err
	}
	order := nutrients.NewResolver(rs.NutrientOptions()).Rules()
	if _, err := fmt.Fprintf(w, "# DIN rule order: %s\n", strings.Join(order, ", ")); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

type ConvertCmd struct {
	Unit    string    `arg:"" help:"oxygen (mL/L to µmol/kg) or a nutrient (${nutrients}; g/L to mol/L). Case-insensitive."`
	Values  []float64 `arg:"" optional:"" help:"Values to convert."`
	Inverse bool      `help:"Convert in the opposite direction."`

	In     string `help:"Convert a column of this CSV instead of values; '-' reads stdin."`
	Out    string `help:"Output CSV for --in; '-' writes stdout." default:"-"`
	Column string `help:"Column to convert when reading --in."`
	To     string `help:"Name of the converted column (default <column>_umol or <column>_mol)."`
}

func (c *ConvertCmd) Validate() error {
	if !c.isOxygen() {
		if _, ok := convert.MolarMass(c.Unit); !ok {
			return fmt.Errorf("unknown unit %q: want oxygen or one of %s", c.Unit, strings.Join(convert.Nutrients(), ", "))
		}
	}
	switch {
	case c.In == "" && len(c.Values) == 0:
		return errors.New("nothing to convert: give values or --in")
	case c.In != "" && len(c.Values) > 0:
		return errors.New("give either values or --in, not both")
	case c.In != "" && c.Column == "":
		return errors.New("--column is required with --in")
	case c.In != "" && c.Inverse:
		return errors.New("--inverse is not supported for column conversion")
	}
	return nil
}

func (c *ConvertCmd) Run() error {
	if c.In == "" {
		return c.write(os.Stdout)
	}

	in, closeIn, err := openInput(c.In)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(c.Out)
	if err != nil {
		return err
	}
	if err := c.convertCSV(in, out); err != nil {
		closeOut()
		return err
	}
	return closeOut()
}

func (c *ConvertCmd) write(w io.Writer) error {
	for _, v := range c.Values {
		if _, err := fmt.Fprintf(w, "%g\n", c.convert(v)); err != nil {
			return err
		}
	}
	return nil
}

// convertCSV appends the converted column and writes the whole table back.
func (c *ConvertCmd) convertCSV(r io.Reader, w io.Writer) error {
	f, err := readCSV(r, nil)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.In, err)
	}

	if c.isOxygen() {
		err = convert.OxygenColumn(f, c.Column, c.target())
	} else {
		err = convert.NutrientColumn(f, c.Unit, c.Column, c.target())
	}
	if err != nil {
		return err
	}
	log.Printf("convert: %s -> %s for %d rows", c.Column, c.target(), f.Len())

	return writeCSV(w, f)
}

func (c *ConvertCmd) isOxygen() bool {
	return strings.EqualFold(strings.TrimSpace(c.Unit), "oxygen")
}

func (c *ConvertCmd) target() string {
	switch {
	case c.To != "":
		return c.To
	case c.isOxygen():
		return c.Column + "_umol"
	default:
		return c.Column + "_mol"
	}
}

func (c *ConvertCmd) convert(v float64) float64 {
	switch {
	case c.isOxygen() && c.Inverse:
		return convert.OxygenUmolToML(v)
	case c.isOxygen():
		return convert.OxygenMLToUmol(v)
	case c.Inverse:
		return convert.MolesToGrams(c.Unit, v)
	default:
		return convert.GramsToMoles(c.Unit, v)
	}
}

func openInput(path string) (io.Reader, func() error, error) {
	if path == "-" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func presetList() string {
	return strings.Join(config.PresetNames(), ", ")
}

func nutrientList() string {
	return strings.Join(convert.Nutrients(), ", ")
}

func schemeList() string {
	return strings.Join(table.SchemeNames(), ", ")
}
