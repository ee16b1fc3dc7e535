package project

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// ListSections prints section names in export order.
func ListSections(ctx context.Context, cmd *cli.Command) error {
	p, err := open(ctx, cmd)
	if err != nil {
		return err
	}
	w := output(cmd)
	for _, name := range p.Doc.ExportOrder() {
		fmt.Fprintln(w, name)
	}
	return nil
}

// ShowSection prints section body.
func ShowSection(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, "SECTION"); err != nil {
		return err
	}
	p, err := open(ctx, cmd)
	if err != nil {
		return err
	}
	body, err := p.Doc.Section(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(output(cmd), body)
	return err
}

// AddSection appends new empty section.
func AddSection(ctx context.Context, cmd *cli.Command) error {
	return modify(ctx, cmd, "Section added", func(p *Project) error {
		return p.Doc.AddSection(cmd.Args().Get(0))
	})
}

// RemoveSection deletes section.
func RemoveSection(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, "SECTION"); err != nil {
		return err
	}
	return modify(ctx, cmd, "Section removed", func(p *Project) error {
		return p.Doc.RemoveSection(cmd.Args().Get(0))
	})
}

// AppendSection adds text to the end of section.
func AppendSection(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, "SECTION"); err != nil {
		return err
	}
	return modify(ctx, cmd, "Text appended", func(p *Project) error {
		txt, err := text(cmd, 1)
		if err != nil {
			return err
		}
		return p.Doc.AppendToSection(cmd.Args().Get(0), txt)
	})
}

// SetSection replaces section body.
func SetSection(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, "SECTION"); err != nil {
		return err
	}
	return modify(ctx, cmd, "Section replaced", func(p *Project) error {
		txt, err := text(cmd, 1)
		if err != nil {
			return err
		}
		return p.Doc.SetSection(cmd.Args().Get(0), txt)
	})
}

// modify opens project, applies change and saves document only when change
// succeeded.
func modify(ctx context.Context, cmd *cli.Command, done string, change func(p *Project) error) error {
	p, err := open(ctx, cmd)
	if err != nil {
		return err
	}
	if err := change(p); err != nil {
		return err
	}
	if err := p.save(); err != nil {
		return err
	}
	p.env.Log.Named("project").Info(done, zap.String("dir", p.Dir), zap.Strings("args", cmd.Args().Slice()))
	return nil
}
