// Package export regenerates compilable output of a document: single LaTeX
// source file plus every asset of the project next to it.
package export

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"texed/common"
	"texed/document"
	"texed/latex"
)

// storeExtensions are persisted stores which never go to export.
var storeExtensions = []string{".json", ".yaml", ".yml"}

// Options controls export output.
type Options struct {
	// OutputName is output file name without extension.
	OutputName string
	// Extension of the output file, without leading dot.
	Extension string
	// Bundle is path of optional zip archive with all exported files.
	Bundle string
	// StoreName is file name of persisted document inside project
	// directory, it is never exported whatever its extension.
	StoreName string
}

// Result describes produced files.
type Result struct {
	Main   string
	Assets []string
	Bundle string
}

type asset struct {
	src, name string
}

// Render concatenates document sections: Preamble verbatim, section heading
// followed by body for every user section and End verbatim.
func Render(doc *document.Document) string {
	var b strings.Builder
	for _, s := range doc.Sections() {
		switch s.Name {
		case document.Preamble, document.End:
			b.WriteString(s.Body)
		default:
			b.WriteString(latex.SectionHeading(s.Name))
			b.WriteString(s.Body)
		}
	}
	return b.String()
}

// Export removes destFolder, recreates it and writes rendered document and
// all project assets into it. Files directly under projectDir keep their
// names, files from subdirectories are prefixed with their relative path.
// Partially produced output is left as is on failure.
func Export(doc *document.Document, projectDir, destFolder string, opts Options, log *zap.Logger) (*Result, error) {
	log = log.Named("export")

	if opts.OutputName == "" {
		opts.OutputName = DefaultOutputName
	}
	if opts.Extension == "" {
		opts.Extension = "tex"
	}
	mainName := opts.OutputName + "." + strings.TrimPrefix(opts.Extension, ".")

	assets, err := collectAssets(projectDir, destFolder, mainName, opts.StoreName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrExport, err)
	}

	if err := os.RemoveAll(destFolder); err != nil {
		return nil, fmt.Errorf("unable to remove %q: %w: %w", destFolder, common.ErrExport, err)
	}
	if err := os.MkdirAll(destFolder, 0755); err != nil {
		return nil, fmt.Errorf("unable to create %q: %w: %w", destFolder, common.ErrExport, err)
	}

	res := &Result{Main: filepath.Join(destFolder, mainName)}
	if err := os.WriteFile(res.Main, []byte(Render(doc)), 0644); err != nil {
		return nil, fmt.Errorf("unable to write %q: %w: %w", res.Main, common.ErrExport, err)
	}
	log.Debug("Document written", zap.String("file", res.Main))

	for _, a := range assets {
		dst := filepath.Join(destFolder, a.name)
		if err := copyFile(a.src, dst); err != nil {
			return nil, fmt.Errorf("unable to copy asset %q: %w: %w", a.src, common.ErrExport, err)
		}
		log.Debug("Asset copied", zap.String("from", a.src), zap.String("to", dst))
		res.Assets = append(res.Assets, a.name)
	}

	if opts.Bundle != "" {
		files := append([]string{mainName}, res.Assets...)
		if err := bundle(opts.Bundle, destFolder, files); err != nil {
			return nil, fmt.Errorf("unable to create bundle %q: %w: %w", opts.Bundle, common.ErrExport, err)
		}
		res.Bundle = opts.Bundle
	}

	log.Info("Export completed", zap.String("destination", destFolder), zap.Int("assets", len(res.Assets)))
	return res, nil
}

// AssetName maps path relative to project directory to the flat name used in
// export folder.
func AssetName(rel string) string {
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "_")
}

func isStore(name string) bool {
	return slices.Contains(storeExtensions, strings.ToLower(filepath.Ext(name)))
}

// collectAssets plans copy before anything is touched so collisions never
// leave half written export. Export folder located inside project is skipped.
func collectAssets(projectDir, destFolder, mainName, storeName string) ([]asset, error) {
	skip, err := filepath.Abs(destFolder)
	if err != nil {
		return nil, err
	}
	project, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, err
	}
	if rel, err := filepath.Rel(skip, project); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("project %q is inside export folder %q", projectDir, destFolder)
	}

	var rels []string
	err = filepath.WalkDir(projectDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if abs, err := filepath.Abs(path); err == nil && abs == skip {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || isStore(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(projectDir, path)
		if err != nil {
			return err
		}
		if storeName != "" && rel == storeName {
			return nil
		}
		rels = append(rels, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to walk project %q: %w", projectDir, err)
	}
	slices.SortFunc(rels, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})

	taken := map[string]string{mainName: "exported document"}
	assets := make([]asset, 0, len(rels))
	for _, rel := range rels {
		name := AssetName(rel)
		if prev, ok := taken[name]; ok {
			return nil, fmt.Errorf("assets %q and %q both export as %q", prev, rel, name)
		}
		taken[name] = rel
		assets = append(assets, asset{src: filepath.Join(projectDir, rel), name: name})
	}
	return assets, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, in.Close())
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	_, err = io.Copy(out, in)
	return err
}

func bundle(path, dir string, names []string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	w := zip.NewWriter(f)
	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	for _, name := range names {
		if err := addToBundle(w, filepath.Join(dir, name), name); err != nil {
			return err
		}
	}
	return nil
}

func addToBundle(w *zip.Writer, src, name string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, in.Close())
	}()

	out, err := w.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(out, in)
	return err
}
