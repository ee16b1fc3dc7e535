// Package figure embeds external image assets into a project: it copies the
// image into project asset folder and produces figure block referencing it.
package figure

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"texed/common"
	"texed/latex"
)

// accepted source extensions and filetype extension their content should be
// detected as
var supported = map[string]string{
	".jpg":  "jpg",
	".jpeg": "jpg",
	".png":  "png",
	".pdf":  "pdf",
}

// Supported reports whether path has one of accepted figure extensions.
func Supported(path string) bool {
	_, ok := supported[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns accepted figure extensions.
func Extensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".pdf"}
}

// AssetName returns default asset name for the source - its base name.
func AssetName(sourcePath string) string {
	return filepath.Base(sourcePath)
}

// Embedder copies figures into project asset folder.
type Embedder struct {
	// raster images wider than that are downscaled, 0 disables
	maxWidth int
	quality  int
	labels   latex.Labeler
	log      *zap.Logger
}

// New returns embedder. When maxWidth is positive raster figures wider than
// maxWidth pixels are downscaled, JPEGs are re-encoded with quality.
func New(maxWidth, quality int, labels latex.Labeler, log *zap.Logger) *Embedder {
	if labels == nil {
		labels = latex.Placeholder
	}
	return &Embedder{maxWidth: maxWidth, quality: quality, labels: labels, log: log.Named("figure")}
}

// Embed copies source to destFolder/assetName and returns figure block
// referencing assetName. Extension of the source is checked before anything
// touches the file system.
func (e *Embedder) Embed(sourcePath, assetName, destFolder string) (string, error) {
	detect, ok := supported[strings.ToLower(filepath.Ext(sourcePath))]
	if !ok {
		return "", fmt.Errorf("figure %q (accepted: %s): %w",
			filepath.Base(sourcePath), strings.Join(Extensions(), ", "), common.ErrUnsupportedAssetType)
	}
	if len(assetName) == 0 {
		assetName = AssetName(sourcePath)
	}
	if assetName != filepath.Base(assetName) || assetName == "." || assetName == ".." {
		return "", fmt.Errorf("asset name %q must be a plain file name: %w", assetName, common.ErrAssetCopy)
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", fmt.Errorf("unable to read figure: %w: %w", common.ErrAssetCopy, err)
	}

	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown && kind.Extension != detect {
		e.log.Warn("Figure content does not match its extension",
			zap.String("file", sourcePath), zap.String("detected", kind.MIME.Value))
	}

	if detect != "pdf" {
		data = e.downscale(data, detect, sourcePath)
	}

	if err := os.MkdirAll(destFolder, 0755); err != nil {
		return "", fmt.Errorf("unable to create asset folder: %w: %w", common.ErrAssetCopy, err)
	}
	dst := filepath.Join(destFolder, assetName)
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("unable to write figure: %w: %w", common.ErrAssetCopy, err)
	}

	e.log.Debug("Figure embedded", zap.String("from", sourcePath), zap.String("to", dst))
	return latex.Figure(assetName, e.labels(latex.FigurePrefix)), nil
}

// downscale returns image data resized to configured maximum width. Any
// problem with image is not fatal - original data is used as is.
func (e *Embedder) downscale(data []byte, format, src string) []byte {
	if e.maxWidth <= 0 {
		return data
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		e.log.Warn("Unable to decode figure, copying as is", zap.String("file", src), zap.Error(err))
		return data
	}
	if cfg.Width <= e.maxWidth {
		return data
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		e.log.Warn("Unable to decode figure, copying as is", zap.String("file", src), zap.Error(err))
		return data
	}
	img = imaging.Resize(img, e.maxWidth, 0, imaging.Lanczos)

	var out []byte
	if format == "png" {
		buf := new(bytes.Buffer)
		if err = imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err == nil {
			out = buf.Bytes()
		}
	} else {
		out, err = encodeJPEG(img, e.quality)
	}
	if err != nil {
		e.log.Warn("Unable to encode resized figure, copying as is", zap.String("file", src), zap.Error(err))
		return data
	}

	e.log.Debug("Figure downscaled", zap.String("file", src),
		zap.Int("from", cfg.Width), zap.Int("to", img.Bounds().Dx()))
	return out
}
