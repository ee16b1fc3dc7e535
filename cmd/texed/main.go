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

	"texed/common"
	"texed/config"
	"texed/figure"
	"texed/mathlib"
	"texed/misc"
	"texed/project"
	"texed/state"
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
		// save complete processed configuration if external configuration was provided
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

	env.Log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", misc.GetVersion()), zap.String("runtime", runtime.Version()), zap.String("hash", misc.GetGitHash()))

	if env.Rpt != nil {
		env.Log.Info("Creating debug report", zap.String("location", env.Rpt.Name()))
		if err := env.Rpt.StoreCopy("settings", env.Cfg.Math.SettingsPath); err != nil {
			env.Log.Debug("Math settings are not in the report", zap.Error(err))
		}
	}
	if len(configFile) == 0 && env.Log != nil {
		env.Log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Debug("Program ended", zap.Duration("elapsed", env.Uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
	}

	// close logging
	env.RestoreStdLog()

	// log is synced now and result can be used in report if necessary, errors
	// must be reported directly to stderr from now on
	if env.Rpt != nil {
		if er := env.Rpt.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close debug report: %w", er))
		}
	}
	// reporting is closed now - remove empty panic file if any
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

// Subcommands return regular errors, they are logged here before application
// context is destroyed.
var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {

	env := state.EnvFromContext(ctx)

	if env.Log != nil {
		env.Log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	// error is reported either by exitErrHandler or on exit directly to stderr.
	return err
}

func subcommandNotFoundHandler(ctx context.Context, _ *cli.Command, name string) {
	state.EnvFromContext(ctx).Log.Warn("Unknown command, nothing to do", zap.String("command", name))
}

func textFlag() cli.Flag {
	return &cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "read text from `FILE` instead of arguments or STDIN"}
}

func tableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "delimiter", Value: common.DelimiterComma.String(),
			Usage: "field `DELIMITER` of delimited text sources (" + strings.Join(common.DelimiterNames(), ", ") + ")"},
		&cli.StringFlag{Name: "decimal", Value: common.DecimalDot.String(),
			Usage: "decimal `SEPARATOR` of numbers in delimited text sources (" + strings.Join(common.DecimalNames(), ", ") + ")"},
		&cli.StringFlag{Name: "charset",
			Usage: "character set `ENCODING` of delimited text sources (see IANA.org for character set names), UTF-8 if absent"},
	}
}

func mathKinds() string {
	keys := make([]string, 0, len(mathlib.Kinds()))
	for _, k := range mathlib.Kinds() {
		keys = append(keys, k.Key())
	}
	return strings.Join(keys, ", ")
}

func main() {

	// allow graceful shutdown on interrupt.
	ctx, stop := signal.NotifyContext(state.ContextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            misc.GetAppName(),
		Usage:           "editor core for LaTeX documents assembled from named sections",
		Version:         misc.GetVersion() + " (" + runtime.Version() + ") : " + misc.GetGitHash(),
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		CommandNotFound: subcommandNotFoundHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, DefaultText: "", Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "changes program behavior to help troubleshooting, produces report archive"},
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Value: ".", Usage: "project `DIRECTORY` to work on"},
		},
		Commands: []*cli.Command{
			{
				Name:         "new",
				Usage:        "Creates new project with fresh document",
				OnUsageError: usageErrorHandler,
				Action:       project.New,
				ArgsUsage:    "NAME [PARENT]",
				CustomHelpTemplate: fmt.Sprintf(`%s
NAME:
    project title, directory name is derived from it

PARENT:
    directory to create project in, if absent - current working directory
`, cli.CommandHelpTemplate),
			},
			{
				Name:         "sections",
				Usage:        "Works with document sections",
				OnUsageError: usageErrorHandler,
				Commands: []*cli.Command{
					{Name: "list", Usage: "Lists sections in document order", Action: project.ListSections},
					{Name: "show", Usage: "Outputs section text", Action: project.ShowSection, ArgsUsage: "SECTION"},
					{Name: "add", Usage: "Adds new empty section at the end", Action: project.AddSection, ArgsUsage: "SECTION"},
					{Name: "remove", Usage: "Removes section", Action: project.RemoveSection, ArgsUsage: "SECTION"},
					{Name: "append", Usage: "Appends text to section", Action: project.AppendSection, ArgsUsage: "SECTION [TEXT|-]",
						Flags: []cli.Flag{textFlag()}},
					{Name: "set", Usage: "Replaces section text", Action: project.SetSection, ArgsUsage: "SECTION [TEXT|-]",
						Flags: []cli.Flag{textFlag()}},
				},
			},
			{
				Name:         "figure",
				Usage:        "Copies picture into project and appends figure to section",
				OnUsageError: usageErrorHandler,
				Action:       project.InsertFigure,
				ArgsUsage:    "SOURCE SECTION",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "asset `NAME` inside project, source file name if absent"},
				},
				CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to picture, supported types: %s
`, cli.CommandHelpTemplate, strings.Join(figure.Extensions(), ", ")),
			},
			{
				Name:         "table",
				Usage:        "Imports tables from delimited text or spreadsheets",
				OnUsageError: usageErrorHandler,
				Commands: []*cli.Command{
					{Name: "sheets", Usage: "Lists tables available in source", Action: project.ListSheets, ArgsUsage: "SOURCE",
						Flags: tableFlags()},
					{Name: "insert", Usage: "Appends table to section", Action: project.InsertTable, ArgsUsage: "SOURCE SECTION",
						Flags: append(tableFlags(),
							&cli.StringFlag{Name: "sheet", Usage: "`NAME` of the sheet to use, first sheet if absent"})},
				},
			},
			{
				Name:         "math",
				Usage:        "Works with shared library of named math fragments",
				OnUsageError: usageErrorHandler,
				Commands: []*cli.Command{
					{Name: "list", Usage: "Lists defined fragments", Action: project.ListMath,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "kind", Usage: "list only fragments of `KIND` (" + mathKinds() + ")"},
							&cli.BoolFlag{Name: "bodies", Usage: "output fragment bodies too"},
						}},
					{Name: "define", Usage: "Defines new fragment", Action: project.DefineMath, ArgsUsage: "KIND NAME [BODY|-]",
						Flags: []cli.Flag{textFlag()}},
					{Name: "insert", Usage: "Appends fragment to section", Action: project.InsertMath, ArgsUsage: "KIND NAME SECTION"},
				},
			},
			{
				Name:         "export",
				Usage:        "Regenerates compilable document and its assets in destination",
				OnUsageError: usageErrorHandler,
				Action:       project.Export,
				ArgsUsage:    "DESTINATION",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "zip", Usage: "additionally pack exported files into `ARCHIVE`"},
				},
				CustomHelpTemplate: fmt.Sprintf(`%s
DESTINATION:
    directory to put output into, it is removed and created anew on every export
`, cli.CommandHelpTemplate),
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
			// It may happen that log is either not set yet (argument parsing) or already closed,
			// report errors to stderr directly
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) (err error) {

	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fname := cmd.Args().Get(0)

	var (
		data []byte
		kind string
	)

	out := os.Stdout
	if len(fname) > 0 {
		out, err = os.Create(fname)
		if err != nil {
			return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
		}
		defer func() {
			err = multierr.Append(err, out.Close())
		}()
	}

	if cmd.Bool("default") {
		kind = "default"
		data, err = config.Prepare()
	} else {
		kind = "actual"
		data, err = config.Dump(env.Cfg)
	}
	if err != nil {
		return fmt.Errorf("unable to get configuration: %w", err)
	}

	if len(fname) == 0 {
		fname = "STDOUT"
	}
	env.Log.Info("Writing configuration", zap.String("state", kind), zap.String("file", fname))

	if _, err = out.Write(data); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	return nil
}
