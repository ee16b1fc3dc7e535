package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"texed/misc"
)

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"required,oneof=none debug normal"`
	Destination string `yaml:"destination,omitempty" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	Mode        string `yaml:"mode,omitempty" validate:"omitempty,oneof=append overwrite"`
	// when positive file log is rotated after reaching this size (megabytes)
	MaxSize    int  `yaml:"max_size,omitempty" validate:"gte=0"`
	MaxBackups int  `yaml:"max_backups,omitempty" validate:"gte=0"`
	Compress   bool `yaml:"compress,omitempty"`
}

type LoggingConfig struct {
	FileLogger    LoggerConfig `yaml:"file"`
	ConsoleLogger LoggerConfig `yaml:"console"`
}

// Prepare returns configured program logger. Console messages all go to
// stderr: stdout belongs to command output (section text, listings) and
// must stay clean when redirected.
func (conf *LoggingConfig) Prepare(rpt *Report) (*zap.Logger, error) {
	file, redirected, err := conf.FileLogger.fileCore(rpt)
	if err != nil {
		return nil, err
	}

	log := zap.New(zapcore.NewTee(conf.ConsoleLogger.consoleCore(), file), zap.AddCaller())
	if len(redirected) != 0 {
		log.Warn("Log file was redirected to new location", zap.String("location", redirected))
	}
	return log.Named(misc.GetAppName()), nil
}

func (conf *LoggerConfig) consoleCore() zapcore.Core {
	var enabled zapcore.Level
	switch conf.Level {
	case "debug":
		enabled = zapcore.DebugLevel
	case "normal":
		enabled = zapcore.InfoLevel
	default:
		return zapcore.NewNopCore()
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	if EnableColorOutput(os.Stderr) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	}
	return zapcore.NewCore(consoleEncoder{zapcore.NewConsoleEncoder(ec)}, zapcore.Lock(os.Stderr), enabled)
}

// fileCore returns core writing to configured destination. When debug report
// is requested file log is always complete: debug level, overwritten and
// never rotated. If destination is not writable log goes to temporary file
// which name is returned.
func (conf *LoggerConfig) fileCore(rpt *Report) (core zapcore.Core, redirected string, err error) {
	level, mode := conf.Level, conf.Mode
	if rpt != nil {
		level, mode = "debug", "overwrite"
	}

	var enabler zapcore.Level
	switch level {
	case "debug":
		enabler = zapcore.DebugLevel
	case "normal":
		enabler = zapcore.InfoLevel
	default:
		return zapcore.NewNopCore(), "", nil
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	capturePanics(filepath.Dir(conf.Destination), mode, rpt)

	if conf.MaxSize > 0 && rpt == nil {
		return zapcore.NewCore(enc, zapcore.AddSync(&lumberjack.Logger{
			Filename:   conf.Destination,
			MaxSize:    conf.MaxSize,
			MaxBackups: conf.MaxBackups,
			Compress:   conf.Compress,
		}), enabler), "", nil
	}

	f, err := openLog(conf.Destination, mode)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+".*.log"); err != nil {
			return nil, "", fmt.Errorf("unable to access file log destination (%s): %w", conf.Destination, err)
		}
		redirected = f.Name()
	}
	rpt.Store("final.log", f.Name())
	return zapcore.NewCore(enc, zapcore.Lock(f), enabler), redirected, nil
}

// capturePanics sends runtime crash output next to the log, failing that to
// temporary file. Empty file is removed when program ends.
func capturePanics(dir, mode string, rpt *Report) {
	f, err := openLog(filepath.Join(dir, misc.GetAppName()+"-panic.log"), mode)
	if err != nil {
		if f, err = os.CreateTemp("", misc.GetAppName()+"-panic.*.log"); err != nil {
			return
		}
	}
	if err := multierr.Append(debug.SetCrashOutput(f, debug.CrashOptions{}), f.Close()); err != nil {
		return
	}
	rpt.Store("panic.log", f.Name())
}

func openLog(name, mode string) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if mode == "append" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(name, flags, 0644)
}

// consoleEncoder prints errors as their message only, verbose error details
// (multierr lists, stack traces) go to file log.
type consoleEncoder struct {
	zapcore.Encoder
}

func (c consoleEncoder) Clone() zapcore.Encoder {
	return consoleEncoder{c.Encoder.Clone()}
}

func (c consoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	short := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if e, ok := f.Interface.(error); ok && f.Type == zapcore.ErrorType {
			f.Interface = errors.New(e.Error())
		}
		short = append(short, f)
	}
	return c.Encoder.EncodeEntry(ent, short)
}
