package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"texed/common"
	"texed/document"
	"texed/state"
)

// DirName converts project title to directory name.
func DirName(title string) string {
	return slug.Make(title)
}

// New creates project directory with fresh document in it.
func New(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("project")

	title := strings.TrimSpace(cmd.Args().Get(0))
	if title == "" {
		return fmt.Errorf("project name: %w", common.ErrEmptyInput)
	}
	name := DirName(title)
	if name == "" {
		return fmt.Errorf("project name %q has no usable characters: %w", title, common.ErrEmptyInput)
	}

	parent := cmd.Args().Get(1)
	if parent == "" {
		parent = "."
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}
	dir, err := filepath.Abs(filepath.Join(parent, name))
	if err != nil {
		return err
	}

	store := filepath.Join(dir, env.Cfg.Document.StoreName)
	if _, err := os.Stat(store); err == nil {
		return fmt.Errorf("project %q already exists in %q", title, dir)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to check project %q: %w", dir, err)
	}

	tmpl, err := preamble(env)
	if err != nil {
		return err
	}
	p := &Project{
		Dir:   dir,
		Store: store,
		Doc:   document.Merge(string(tmpl), nil, documentOptions(env.Cfg)...),
		env:   env,
	}
	// Save creates project directory
	if err := p.save(); err != nil {
		return err
	}

	log.Info("Project created", zap.String("title", title), zap.String("dir", dir))
	fmt.Fprintln(output(cmd), dir)
	return nil
}
