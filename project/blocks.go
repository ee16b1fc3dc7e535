package project

import (
	"context"
	"fmt"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"texed/common"
	"texed/figure"
	"texed/mathlib"
	"texed/state"
	"texed/tableimport"
)

// InsertFigure copies figure into project and appends figure block to the
// section.
func InsertFigure(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, "SOURCE", "SECTION"); err != nil {
		return err
	}
	src, target := cmd.Args().Get(0), cmd.Args().Get(1)
	asset := cmd.String("name")
	if asset == "" {
		asset = figure.AssetName(src)
	}
	return modify(ctx, cmd, "Figure inserted", func(p *Project) error {
		cfg := p.env.Cfg
		e := figure.New(cfg.Figures.MaxWidth, cfg.Figures.JPEGQuality, labeler(cfg), p.env.Log)
		return p.Doc.AppendFigure(e, src, asset, p.Dir, target)
	})
}

func tableOptions(cmd *cli.Command) (tableimport.Options, error) {
	var (
		opts tableimport.Options
		err  error
	)
	if opts.Delimiter, err = common.ParseDelimiter(cmd.String("delimiter")); err != nil {
		return opts, err
	}
	if opts.Decimal, err = common.ParseDecimal(cmd.String("decimal")); err != nil {
		return opts, err
	}
	opts.Charset = cmd.String("charset")
	return opts, nil
}

func readTables(cmd *cli.Command) (*tableimport.Workbook, error) {
	opts, err := tableOptions(cmd)
	if err != nil {
		return nil, err
	}
	return tableimport.ReadFile(cmd.Args().Get(0), opts)
}

// ListSheets prints sheets of the table source with their dimensions.
func ListSheets(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireArgs(cmd, "SOURCE"); err != nil {
		return err
	}
	wb, err := readTables(cmd)
	if err != nil {
		return err
	}
	w := output(cmd)
	for _, s := range wb.Sheets {
		fmt.Fprintf(w, "%s\t%d columns\t%d rows\n", s.Name, s.Table.ColsNum(), s.Table.RowsNum())
	}
	return nil
}

// InsertTable reads table source and appends rendered table to the section.
func InsertTable(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, "SOURCE", "SECTION"); err != nil {
		return err
	}
	wb, err := readTables(cmd)
	if err != nil {
		return err
	}
	table, err := wb.Sheet(cmd.String("sheet"))
	if err != nil {
		return err
	}
	return modify(ctx, cmd, "Table inserted", func(p *Project) error {
		return p.Doc.AppendTable(table, cmd.Args().Get(1))
	})
}

// ListMath prints fragments of the shared math library.
func ListMath(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	kinds := mathlib.Kinds()
	if name := cmd.String("kind"); name != "" {
		kind, err := mathlib.ParseKind(name)
		if err != nil {
			return err
		}
		kinds = []mathlib.Kind{kind}
	}

	store := mathStore(env)
	w := output(cmd)
	for _, kind := range kinds {
		frags, err := store.Load(kind)
		if err != nil {
			return err
		}
		for _, f := range frags {
			if cmd.Bool("bodies") {
				fmt.Fprintf(w, "%s\t%s\t%s\n", kind.Key(), f.Name, f.Body)
				continue
			}
			fmt.Fprintf(w, "%s\t%s\n", kind.Key(), f.Name)
		}
	}
	return nil
}

// DefineMath adds named fragment to the shared math library.
func DefineMath(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireArgs(cmd, "KIND", "NAME"); err != nil {
		return err
	}
	env := state.EnvFromContext(ctx)

	kind, err := mathlib.ParseKind(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	body, err := text(cmd, 2)
	if err != nil {
		return err
	}
	store := mathStore(env)
	if err := store.Define(kind, cmd.Args().Get(1), body); err != nil {
		return err
	}
	env.Log.Info("Math fragment defined", zap.Stringer("kind", kind), zap.String("name", cmd.Args().Get(1)), zap.String("store", store.Path()))
	return nil
}

// InsertMath appends named fragment from the shared math library to the
// section.
func InsertMath(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, "KIND", "NAME", "SECTION"); err != nil {
		return err
	}
	kind, err := mathlib.ParseKind(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	return modify(ctx, cmd, "Math inserted", func(p *Project) error {
		return p.Doc.AppendMath(mathStore(p.env), kind, cmd.Args().Get(1), cmd.Args().Get(2))
	})
}
