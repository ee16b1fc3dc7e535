// Package project implements command line actions working on a document
// project: directory with persisted document and its assets.
package project

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"texed/common"
	"texed/config"
	"texed/document"
	"texed/latex"
	"texed/mathlib"
	"texed/state"
)

//go:embed start.tex
var defaultPreamble []byte

// Project is opened document together with its location.
type Project struct {
	Dir   string
	Store string
	Doc   *document.Document

	env *state.LocalEnv
}

// preamble returns template every document starts with, either configured
// or embedded one.
func preamble(env *state.LocalEnv) ([]byte, error) {
	if env.Preamble != nil {
		return env.Preamble, nil
	}
	env.Preamble = defaultPreamble
	if path := env.Cfg.Document.PreamblePath; path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			env.Preamble = nil
			return nil, fmt.Errorf("unable to read preamble template from %q: %w: %w", path, common.ErrTemplateMissing, err)
		}
		env.Preamble = data
	}
	return env.Preamble, nil
}

func labeler(cfg *config.Config) latex.Labeler {
	if cfg.Document.Unique() {
		return latex.Unique
	}
	return latex.Placeholder
}

func documentOptions(cfg *config.Config) []document.Option {
	return []document.Option{
		document.WithIntroduction(cfg.Document.IntroductionText),
		document.WithLabels(labeler(cfg)),
	}
}

func mathStore(env *state.LocalEnv) *mathlib.Store {
	return mathlib.NewStore(env.Cfg.Math.SettingsPath, env.Log)
}

// open loads document of the project selected with "project" flag.
func open(ctx context.Context, cmd *cli.Command) (*Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)

	dir, err := filepath.Abs(cmd.String("project"))
	if err != nil {
		return nil, err
	}
	if fi, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("unable to open project: %w", err)
	} else if !fi.IsDir() {
		return nil, fmt.Errorf("project %q is not a directory", dir)
	}

	tmpl, err := preamble(env)
	if err != nil {
		return nil, err
	}

	p := &Project{Dir: dir, Store: filepath.Join(dir, env.Cfg.Document.StoreName), env: env}
	if p.Doc, err = document.OpenWithTemplate(string(tmpl), p.Store, documentOptions(env.Cfg)...); err != nil {
		return nil, err
	}
	env.Log.Debug("Project opened", zap.String("dir", p.Dir), zap.Int("sections", len(p.Doc.ExportOrder())))
	return p, nil
}

// save persists document, when debugging snapshot of the result goes to
// the report.
func (p *Project) save() error {
	if err := p.Doc.Save(p.Store); err != nil {
		return err
	}
	if err := p.env.Rpt.StoreCopy("project/"+filepath.Base(p.Store), p.Store); err != nil {
		p.env.Log.Warn("Unable to store document in debug report", zap.Error(err))
	}
	return nil
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// text returns user text for section operations: from file specified with
// "file" flag, from command arguments starting at index or from standard
// input when there are no arguments or argument is "-".
func text(cmd *cli.Command, index int) (string, error) {
	if name := cmd.String("file"); name != "" {
		data, err := os.ReadFile(name)
		if err != nil {
			return "", fmt.Errorf("unable to read text from %q: %w", name, err)
		}
		return string(data), nil
	}
	args := cmd.Args().Slice()
	if len(args) > index && !(len(args) == index+1 && args[index] == "-") {
		return strings.Join(args[index:], " "), nil
	}

	in := cmd.Root().Reader
	if in == nil {
		in = os.Stdin
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("unable to read text from standard input: %w", err)
	}
	return string(data), nil
}

func requireArgs(cmd *cli.Command, names ...string) error {
	if cmd.Args().Len() < len(names) {
		return fmt.Errorf("missing %s: %w", strings.Join(names[cmd.Args().Len():], ", "), common.ErrEmptyInput)
	}
	return nil
}
