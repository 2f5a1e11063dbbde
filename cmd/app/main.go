package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"tails/internal/evaluator"
	"tails/internal/foreign"
	"tails/internal/object"
	"tails/internal/parser"
	"tails/internal/repl"
	"tails/internal/util"
)

const (
	DefaultRootPath = "."
	HistoryFileName = ".tails_history"
)

var (
	// Version is the current version of the tails binary, set at build time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configFile   string
	rootPath     string
	debugAST     bool
	maxCallDepth int
	locale       string
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	flag.StringVar(&configFile, "config", "", "Path to a TOML config file (default $TAILS_HOME/config.toml)")
	// evaluator config
	flag.StringVar(&rootPath, "root", DefaultRootPath, "Set the root directory script paths are resolved against")
	flag.IntVar(&maxCallDepth, "max-call-depth", evaluator.DefaultMaxCallDepth, "Maximum number of nested function calls")
	flag.StringVar(&locale, "locale", util.DefaultLocale, "Default locale for date and number formatting")
	// parser config
	flag.BoolVar(&debugAST, "debug-ast", false, "Render the AST as a JSON file")
	// log config
	flag.StringVar(&logLevel, "log-level", "NONE", "Log level: debug, info, warn, error, none")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {
	flag.Parse()

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Creates a new Logger that uses a JSONHandler to write to the log writer
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions))
	slog.SetDefault(defaultLogger)

	registry := foreign.NewRegistry(config)
	ev := evaluator.New(
		evaluator.WithRegistry(registry),
		evaluator.WithMaxCallDepth(config.MaxCallDepth),
	)

	exitCode := 0
	if flag.NArg() > 0 {
		exitCode = runFile(ev, config, flag.Arg(0), flag.Args()[1:])
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			repl.SetHistoryPath(filepath.Join(home, HistoryFileName))
		}
		fmt.Printf("tails %s\nType exit to quit.\n", Version)
		repl.Start(ev, os.Stdin, os.Stdout)
	}

	if err := registry.Close(); err != nil {
		slog.Error("failed to release resources", slog.Any("error", err))
	}
	os.Exit(exitCode)
}

// loadConfiguration layers defaults, the config file and then any flag
// given explicitly on the command line.
func loadConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	config.TailsHome = os.Getenv("TAILS_HOME")

	if path := util.ConfigPath(configFile, config.TailsHome); path != "" {
		if err := util.LoadConfigFile(path, &config); err != nil {
			return config, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "root":
			config.RootPath = rootPath
		case "max-call-depth":
			config.MaxCallDepth = maxCallDepth
		case "locale":
			config.Locale = locale
		case "debug-ast":
			config.DebugAST = debugAST
		case "log-level":
			config.LogLevel = logLevel
		case "log-file":
			config.LogFile = logFile
		}
	})
	return config, nil
}

func runFile(ev *evaluator.Evaluator, config util.Configuration, filename string, args []string) int {
	path := filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(config.RootPath, path)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read %s: %v\n", path, err)
		return 1
	}
	src := string(source)

	program, err := parser.Parse(src, ev)
	if err != nil {
		printParseError(path, src, err)
		return 1
	}

	if config.DebugAST {
		json, err := parser.RenderASTAsJSON(program)
		if err != nil {
			slog.Error("Failed to render AST as JSON", slog.Any("error", err))
		} else if err := os.WriteFile(path+".ast.json", []byte(json), 0o644); err != nil {
			slog.Error("Failed to write AST as JSON", slog.Any("error", err))
		}
	}

	scriptArgs := make([]object.Object, len(args))
	for i, a := range args {
		scriptArgs[i] = &object.String{Value: a}
	}
	ev.Set("args", object.NewList(scriptArgs...))

	slog.Debug("running script", slog.String("path", path), slog.Int("args", len(args)))
	if _, err := ev.EvalProgram(program); err != nil {
		var raised *evaluator.RaisedError
		if errors.As(err, &raised) && raised.Err.Code != "" {
			fmt.Fprintf(os.Stderr, "Error [%s]: %s\n", raised.Err.Code, raised.Err.Message)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func printParseError(path, src string, err error) {
	var perr *parser.Error
	if !errors.As(err, &perr) {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", path, perr.Line, perr.Column, perr.Message)
	if lines := util.GetContextLines(src, perr.Line, perr.Column); lines != "" {
		fmt.Fprintln(os.Stderr, lines)
	}
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {
	fmt.Printf("tails version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: tails [options] [filename [args...]]

Options:
  -config <path>          Load settings from a TOML file. Default is $TAILS_HOME/config.toml.
  -root <path>            Directory relative script paths are resolved against. Default is '.'
  -max-call-depth <n>     Maximum number of nested function calls. Default is %d.
  -locale <tag>           Default locale for dates and numbers. Default is '%s'.
  -debug-ast              Render the AST as a JSON file next to the script.
  -help                   Display this help information and exit.
  -version                Display version information and exit.
  -log-level <level>      Set the log level: debug, info, warn, error, none. Default is 'none'.
  -log-file <path>        Specify a log file to write logs. Default is stderr.

Details:
Run a script by passing its filename; the remaining arguments are bound to ~args.
Without a filename the interactive REPL starts. Flags given on the command
line override values from the config file.

Examples:
  tails                          Start the interactive REPL
  tails -log-level=debug         Start with debug logging enabled
  tails script.tails             Execute the provided file
  tails script.tails a b         Execute the file with ~args set to [a, b]

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, evaluator.DefaultMaxCallDepth, util.DefaultLocale, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
