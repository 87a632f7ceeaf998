package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"scout/config"
	"scout/convert"
	"scout/misc"
	"scout/settings"
	"scout/state"
)

// initializeAppContext prepares application context before command execution but
// after command line has been parsed
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		// nothing to do, just return
		return ctx, nil
	}

	env := state.EnvFromContext(ctx)

	configFile := cmd.String("config")
	if env.Cfg, err = config.LoadConfiguration(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		if env.Rpt, err = env.Cfg.Reporting.Prepare(); err != nil {
			return ctx, fmt.Errorf("unable to prepare debug reporter: %w", err)
		}
		if len(configFile) > 0 {
			if data, err := config.Dump(env.Cfg); err == nil {
				env.Rpt.StoreData(fmt.Sprintf("config/%s", filepath.Base(configFile)), data)
			}
		}
	}
	if env.Log, err = env.Cfg.Logging.Prepare(env.Rpt); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	env.RedirectStdLog()

	settingsFile := cmd.String("settings")
	if len(settingsFile) == 0 {
		if settingsFile, err = settings.DefaultPath(); err != nil {
			env.Log.Warn("User settings are not available", zap.Error(err))
		}
	}
	if len(settingsFile) > 0 {
		env.Settings = settings.NewFileStore(settingsFile)
	}

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
	}
	if len(configFile) == 0 {
		env.Log.Debug("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	env.RestoreStdLog()

	// log is synced now and could be put into report, errors must go to
	// stderr directly from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// remove empty panic file if any
	if env.Cfg != nil && len(env.Cfg.Logging.FileLogger.Destination) > 0 {
		debug.SetCrashOutput(nil, debug.CrashOptions{})
		fname := filepath.Join(filepath.Dir(env.Cfg.Logging.FileLogger.Destination), misc.GetAppName()+"-panic.log")
		if fi, er := os.Stat(fname); er == nil && fi.Size() == 0 {
			if er := os.Remove(fname); er != nil {
				err = multierr.Append(err, fmt.Errorf("unable to remove empty panic log file '%s': %w", fname, er))
			}
		}
	}
	return
}

// Subcommands return regular errors, cli.Exit is not used.
var errWasHandled bool

// called before application context is destroyed, so error could be logged
func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// reported either by exitErrHandler or on exit directly to stderr
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

func main() {
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "chapter based manuscript tool: imports text and markdown, exports RTF and EPUB",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.StringFlag{Name: "settings", DefaultText: "user configuration directory", Usage: "keep user settings in `FILE` (JSON)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
		},
		Commands: []*cli.Command{
			{
				Name:         "create",
				Usage:        "Creates new empty project",
				OnUsageError: usageErrorHandler,
				Action:       createProject,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "project `TITLE`, directory name when absent"},
					&cli.StringFlag{Name: "author", Usage: "project `AUTHOR`"},
				},
				ArgsUsage: "PROJECT",
			},
			{
				Name:         "import",
				Usage:        "Converts text and markdown files into new chapters",
				OnUsageError: usageErrorHandler,
				Action:       convert.Import,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "filename-titles", Aliases: []string{"ft"}, Usage: "name chapters after imported files"},
					&cli.StringFlag{Name: "delimiter", Usage: "split files into chapters at lines starting with `TEXT`"},
					&cli.BoolFlag{Name: "extract-titles", Aliases: []string{"et"}, Usage: "take chapter titles from delimiter lines"},
				},
				ArgsUsage: "PROJECT SOURCE...",
				CustomHelpTemplate: fmt.Sprintf(`%s
PROJECT:
    path to project directory

SOURCE:
    ".txt" or ".md" file, directory (all such files under it) or zip archive
    (all such files inside), directories and archives are processed in
    natural name order, processing of archives inside archives is not supported
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "export",
				Usage:        "Exports project chapters to specified format",
				OnUsageError: usageErrorHandler,
				Action:       convert.Export,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "to", Value: config.OutputFmtEpub.String(),
						Usage: "export output `TYPE` (supported types: " + strings.Join(config.OutputFmtNames(), ", ") + ")"},
					&cli.StringFlag{Name: "chapters", Usage: "comma separated chapter `IDS` to export, all when absent"},
					&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite existing output file"},
				},
				ArgsUsage: "PROJECT [DESTINATION]",
				CustomHelpTemplate: fmt.Sprintf(`%s
PROJECT:
    path to project directory

DESTINATION:
    directory to put output file to, file name is derived from project title
    and current date. If absent - project export directory or parent of the
    project directory
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "asset",
				Usage:        "Copies image into project assets and prints its data URL",
				OnUsageError: usageErrorHandler,
				Action:       importAsset,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "url", Usage: "print data URL instead of stored name"},
				},
				ArgsUsage: "PROJECT IMAGE",
			},
			{
				Name:         "rename",
				Usage:        "Changes chapter title",
				OnUsageError: usageErrorHandler,
				Action:       renameChapter,
				ArgsUsage:    "PROJECT ID TITLE",
			},
			{
				Name:         "delete",
				Usage:        "Removes chapter from project",
				OnUsageError: usageErrorHandler,
				Action:       deleteChapter,
				ArgsUsage:    "PROJECT ID",
			},
			{
				Name:         "save",
				Usage:        "Replaces chapter content with JSON document",
				OnUsageError: usageErrorHandler,
				Action:       saveChapter,
				ArgsUsage:    "PROJECT ID [FILE]",
				CustomHelpTemplate: fmt.Sprintf(`%s
FILE:
    chapter document in JSON, if absent or "-" - STDIN. Content which is not a
    valid chapter document is rejected and chapter is left intact
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "list",
				Usage:        "Lists project chapters",
				OnUsageError: usageErrorHandler,
				Action:       listChapters,
				ArgsUsage:    "[PROJECT]",
			},
			{
				Name:         "settings",
				Usage:        "Shows or changes user settings",
				OnUsageError: usageErrorHandler,
				Action:       changeSettings,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "font", Usage: "font `FAMILY`, recorded in PROJECT as well when it is given"},
					&cli.StringFlag{Name: "export-dir", Usage: "default export `DIRECTORY` of PROJECT, empty to reset"},
				},
				ArgsUsage: "[PROJECT]",
			},
			{
				Name:  "dumpconfig",
				Usage: "Dumps either default or actual configuration (YAML)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "default", Usage: "output default embedded configuration"},
				},
				OnUsageError: usageErrorHandler,
				Action:       outputConfiguration,
				ArgsUsage:    "DESTINATION",
				CustomHelpTemplate: fmt.Sprintf(`%s

DESTINATION:
    file name to write configuration to, if absent - STDOUT

Produces file with actual "active" configuration values which is composition of
default values and values specified in configuration file. To see default
configuration embedded into the program use --default flag.
`, cli.CommandHelpTemplate),
			},
		},
	}

	var err error
	// NOTE: os.Exit is called at the end of main to set exit code, make sure
	// there are no other deferred functions after that
	defer func() {
		stop()
		if err != nil {
			// log may be not set yet or already closed
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		err   error
		data  []byte
		state string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer out.Close()
	}

	if cmd.Bool("default") {
		state = "default"
		data, err = config.Prepare()
	} else {
		state = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Outputting configuration", zap.String("state", state), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
