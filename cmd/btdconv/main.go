package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	btd "github.com/reoring/btdconv"
	"github.com/reoring/btdconv/i18n"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "convert":
		convertCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "btdconv\n\nUsage:\n  btdconv convert [-v] [-lang en|ja] [-validate-only] [-export-parsed file.json] <input.{json,yaml}> <output.json>\n  btdconv validate [-v] [-lang en|ja] <input.{json,yaml}>\n\nconvert parses and validates a thermal model document and writes a build\nmanifest; validate (or convert -validate-only) stops after validation and\nreports every issue found.")
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "btdconv: logger: %v\n", err)
		os.Exit(1)
	}
	return log
}

func convertCmd(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var verbose bool
	var lang string
	var exportParsed string
	var validateOnly bool
	fs.BoolVar(&verbose, "v", false, "verbose logging")
	fs.StringVar(&lang, "lang", "", "diagnostic language (en, ja)")
	fs.StringVar(&exportParsed, "export-parsed", "", "also write the parsed model back out as JSON")
	fs.BoolVar(&validateOnly, "validate-only", false, "stop after validation, do not run the builder")
	_ = fs.Parse(args)
	if fs.NArg() != 2 && !(validateOnly && fs.NArg() == 1) {
		fs.Usage()
		os.Exit(2)
	}
	input, output := fs.Arg(0), fs.Arg(1)

	log := newLogger(verbose)
	defer func() { _ = log.Sync() }()
	setLang(lang)

	model := parseOrExit(log, input)
	log.Info("model parsed",
		zap.String("model", model.Name()),
		zap.Int("components", model.Summary().Components),
		zap.Int("materials", len(model.MaterialNames())),
		zap.Int("warnings", len(model.Warnings())))

	if validateOnly {
		log.Info("validate-only, builder skipped")
		return
	}

	if exportParsed != "" {
		data, err := btd.Export(model)
		if err != nil {
			log.Error("export failed", zap.Error(err))
			os.Exit(1)
		}
		if err := os.WriteFile(exportParsed, data, 0o644); err != nil {
			log.Error("write failed", zap.String("path", exportParsed), zap.Error(err))
			os.Exit(1)
		}
		log.Debug("parsed model written", zap.String("path", exportParsed))
	}

	var builder btd.ManifestBuilder
	if err := builder.Build(context.Background(), model, output); err != nil {
		log.Error("build failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("manifest written", zap.String("path", output))
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var verbose bool
	var lang string
	fs.BoolVar(&verbose, "v", false, "verbose logging")
	fs.StringVar(&lang, "lang", "", "diagnostic language (en, ja)")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	log := newLogger(verbose)
	defer func() { _ = log.Sync() }()
	setLang(lang)

	model := parseOrExit(log, fs.Arg(0))
	s := model.Summary()
	log.Info("model valid",
		zap.String("model", s.Name),
		zap.Int("components", s.Components),
		zap.Int("base_materials", s.BaseMaterials),
		zap.Int("composites", s.Composites),
		zap.Int("power_maps", s.PowerMaps),
		zap.Int("warnings", s.Warnings))
	printIssues(model.Warnings())
}

func setLang(lang string) {
	switch lang {
	case "":
	case "en", "ja":
		i18n.SetLanguage(lang)
	default:
		fmt.Fprintf(os.Stderr, "btdconv: unknown language %q\n", lang)
		os.Exit(2)
	}
}

func parseOrExit(log *zap.Logger, input string) *btd.ThermalInfo {
	model, err := btd.ParseFile(input)
	if err != nil {
		var pe *btd.ParseError
		var ve *btd.ValidationError
		switch {
		case errors.As(err, &pe):
			log.Error("parse failed", zap.String("input", input), zap.String("section", pe.Section))
			printIssues(pe.Issues)
		case errors.As(err, &ve):
			log.Error("validation failed", zap.String("input", input))
			printIssues(ve.Issues)
		default:
			log.Error("parse failed", zap.String("input", input), zap.Error(err))
		}
		os.Exit(1)
	}
	printIssues(model.Warnings())
	return model
}

// printIssues renders one line per issue, warnings prefixed distinctly so
// scripts can grep fatal entries.
func printIssues(iss btd.Issues) {
	for _, it := range iss {
		level := "error"
		if it.Severity == btd.SeverityWarn {
			level = "warn"
		}
		fmt.Fprintf(os.Stderr, "  %s %s at %s: %s\n", level, it.Code, it.Path, it.Message)
	}
}
