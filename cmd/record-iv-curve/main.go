// Command record-iv-curve sweeps a uSMU through a linear voltage ramp and
// records the measured IV curve as CSV.
//
// With a single uSMU attached it needs no arguments:
//
//	record-iv-curve -start -1 -end 1 -steps 50 -o curve.csv
//
// With multiple units attached, disambiguate with -port or -serial-number.
// Without -o the curve is written to standard output.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/microvolt/go-usmu/logger"
	"github.com/microvolt/go-usmu/scpi"
	"github.com/microvolt/go-usmu/sweep"
	"github.com/microvolt/go-usmu/unit"
	"github.com/microvolt/go-usmu/usmu"
)

type arguments struct {
	port         string
	serialNumber string

	startVoltage float64
	endVoltage   float64
	steps        int
	currentLimit float64 // milliamps
	overSampling uint
	delay        time.Duration

	output  string
	format  string
	verbose bool
}

func parseArguments() *arguments {
	args := &arguments{}

	flag.StringVar(&args.port, "port", "", "serial port path of the uSMU")
	flag.StringVar(&args.serialNumber, "serial-number", "", "device identity of the uSMU")
	flag.Float64Var(&args.startVoltage, "start", -1, "start voltage in volts")
	flag.Float64Var(&args.endVoltage, "end", 1, "end voltage in volts")
	flag.IntVar(&args.steps, "steps", 50, "number of voltage steps")
	flag.Float64Var(&args.currentLimit, "current-limit", 20, "current limit in milliamps")
	flag.UintVar(&args.overSampling, "over-sampling", 10, "samples averaged per measurement")
	flag.DurationVar(&args.delay, "delay", 0, "delay before taking each measurement")
	flag.StringVar(&args.output, "o", "", "output file path (default: standard output)")
	flag.StringVar(&args.format, "format", "csv", "output format (csv)")
	flag.BoolVar(&args.verbose, "v", false, "enable debug logging")
	flag.Parse()

	return args
}

func main() {
	args := parseArguments()

	level := logger.InfoLevel
	if args.verbose {
		level = logger.DebugLevel
	}
	log := logger.NewSlog(level, false)

	if err := run(args, log); err != nil {
		renderError(err)
		os.Exit(1)
	}
}

func run(args *arguments, log logger.Logger) error {
	if args.format != "csv" {
		return fmt.Errorf("unsupported output format %q", args.format)
	}
	if args.overSampling > 65535 {
		return fmt.Errorf("over-sampling %d exceeds the device maximum 65535", args.overSampling)
	}

	dev, err := usmu.Discover(args.port, args.serialNumber, usmu.WithLogger(log))
	if err != nil {
		return err
	}
	defer dev.Close()

	cfg := sweep.Config{
		Start:        unit.Volts(float32(args.startVoltage)),
		End:          unit.Volts(float32(args.endVoltage)),
		Steps:        args.steps,
		CurrentLimit: unit.Milliamperes(float32(args.currentLimit)),
		OverSampling: uint16(args.overSampling),
		Delay:        args.delay,
	}

	log.Info("recording IV curve",
		"start", cfg.Start.Volts(),
		"end", cfg.End.Volts(),
		"steps", cfg.Steps,
		"currentLimitMilliamps", cfg.CurrentLimit.Milliamperes(),
	)

	samples, err := sweep.Run(dev, cfg)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(args.output)
	if err != nil {
		return err
	}
	defer closeOut()

	return writeCSV(out, samples)
}

// openOutput returns the output writer and a close function. An empty path
// selects standard output.
func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}

	return f, func() { _ = f.Close() }, nil
}

// writeCSV writes the samples as a two-column table of voltage and current,
// one row per sample, preceded by a header row.
func writeCSV(out io.Writer, samples []sweep.Sample) error {
	w := csv.NewWriter(out)

	if err := w.Write([]string{"voltage", "current"}); err != nil {
		return err
	}

	for _, s := range samples {
		record := []string{
			scpi.FormatFloat32(s.Voltage.Volts()),
			scpi.FormatFloat32(s.Current.Amperes()),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}

// renderError prints err for a human. An ambiguous device selection lists
// the candidates so the user can pick a -port or -serial-number value.
func renderError(err error) {
	var ambErr *usmu.AmbiguousError
	if errors.As(err, &ambErr) {
		fmt.Fprintln(os.Stderr, "Available devices:")
		for _, c := range ambErr.Candidates {
			fmt.Fprintf(os.Stderr, "  %s - %s\n", c.Path, c.Identity)
		}
		fmt.Fprintln(os.Stderr, "Multiple uSMUs are attached; specify -port or -serial-number to disambiguate.")

		return
	}

	fmt.Fprintf(os.Stderr, "record-iv-curve: %v\n", err)
}
