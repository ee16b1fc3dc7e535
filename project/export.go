package project

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"texed/export"
)

// Export regenerates compilable output of the project in destination
// directory.
func Export(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, "DESTINATION"); err != nil {
		return err
	}
	p, err := open(ctx, cmd)
	if err != nil {
		return err
	}
	log := p.env.Log

	dst, err := filepath.Abs(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	name, err := export.OutputName(p.env.Cfg.Export.OutputNameTemplate, export.NewValues(p.Doc, p.Dir, time.Now()))
	if err != nil {
		log.Warn("Unable to prepare output filename, using default", zap.Error(err))
		name = export.DefaultOutputName
	}

	defer func(start time.Time) {
		log.Debug("Export finished", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	res, err := export.Export(p.Doc, p.Dir, dst, export.Options{
		OutputName: name,
		Extension:  p.env.Cfg.Export.Extension,
		Bundle:     cmd.String("zip"),
		StoreName:  p.env.Cfg.Document.StoreName,
	}, log)
	if err != nil {
		return err
	}

	p.env.Rpt.Store("export", dst)
	if res.Bundle != "" {
		p.env.Rpt.Store("bundle"+filepath.Ext(res.Bundle), res.Bundle)
	}
	fmt.Fprintln(output(cmd), res.Main)
	return nil
}
