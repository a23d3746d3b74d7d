// Package pathgen provides the functionality for the pathgen
// binary as a library.
package pathgen

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulhankin/pathgen/geo"
	"github.com/paulhankin/pathgen/internal/config"
	"github.com/paulhankin/pathgen/paths"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Formats understood by Run. Geographic formats are projected to the
// screen before generalizing.
const (
	FormatSVG      = "svg"
	FormatCSV      = "csv"
	FormatGPX      = "gpx"
	FormatGeoJSON  = "geojson"
	FormatPolyline = "polyline"
)

func isGeographic(format string) bool {
	return format == FormatGPX || format == FormatGeoJSON || format == FormatPolyline
}

// FormatOf guesses a format from a file name.
func FormatOf(name string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".svg":
		return FormatSVG, nil
	case ".csv":
		return FormatCSV, nil
	case ".gpx":
		return FormatGPX, nil
	case ".geojson", ".json":
		return FormatGeoJSON, nil
	case ".polyline", ".txt":
		return FormatPolyline, nil
	default:
		return "", errors.Errorf("can't tell the format of %q; set it explicitly", name)
	}
}

type Config struct {
	In  string // "-" or empty for stdin
	Out string // "-" or empty for stdout

	InFormat  string // guessed from In if empty
	OutFormat string // guessed from Out if empty, else svg

	Options    *paths.Options
	Projection config.ProjectionConfig

	// Size and Offset place planar output: the paths are scaled to Size
	// (keeping their aspect ratio if one side is zero) and moved by Offset.
	Size   paths.Vec2
	Offset paths.Vec2
	// Clip drops everything outside the bounds of the input.
	Clip bool

	Log *zap.Logger
}

// input is what was read: planar paths, and for geographic sources the
// projection that produced them and the track names.
type input struct {
	ps    *paths.Paths
	proj  geo.Projector
	names []string
}

func (cfg *Config) logger() *zap.Logger {
	if cfg.Log == nil {
		return zap.NewNop()
	}
	return cfg.Log
}

func fitBounds(sz, delta paths.Vec2, b paths.Bounds) (paths.Bounds, error) {
	ow := b.Max[0] - b.Min[0]
	oh := b.Max[1] - b.Min[1]
	if sz[0] == 0 && sz[1] == 0 {
		sz[0] = ow
		sz[1] = oh
	} else if sz[1] == 0 {
		if ow == 0 {
			return paths.Bounds{}, errors.Errorf("can't scale an image of zero width to width %g", sz[0])
		}
		sz[1] = sz[0] * oh / ow
	} else if sz[0] == 0 {
		if oh == 0 {
			return paths.Bounds{}, errors.Errorf("can't scale an image of zero height to height %g", sz[1])
		}
		sz[0] = sz[1] * ow / oh
	} else if ow != 0 && oh != 0 && !(math.Abs(sz[0]/sz[1]-ow/oh) < 1e-3) {
		return paths.Bounds{}, errors.Errorf("target size %g,%g not compatible with image size %g,%g", sz[0], sz[1], ow, oh)
	}
	return paths.Bounds{
		Min: delta,
		Max: paths.Vec2{sz[0] + delta[0], sz[1] + delta[1]},
	}, nil
}

func (cfg *Config) projector(tracks []geo.Track) geo.Projector {
	p := cfg.Projection
	m := &geo.Mercator{
		Zoom:     p.Zoom,
		Center:   geo.Location{Lat: p.CenterLat, Lon: p.CenterLon},
		Viewport: paths.Vec2{p.Width, p.Height},
	}
	if p.AutoCenter {
		if c, ok := geo.Centroid(tracks...); ok {
			m.Center = c
		}
	}
	return m
}

func readPolylines(r io.Reader) ([]geo.Track, error) {
	var tracks []geo.Track
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 16<<20)
	for line := 1; sc.Scan(); line++ {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		ls, err := geo.DecodePolyline(s)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		tracks = append(tracks, geo.Track{Name: fmt.Sprintf("line %d", line), Points: ls})
	}
	return tracks, sc.Err()
}

func (cfg *Config) read(r io.Reader, format string) (*input, error) {
	var tracks []geo.Track
	var err error
	switch format {
	case FormatSVG:
		ps, err := paths.FromSVG(r)
		return &input{ps: ps}, err
	case FormatCSV:
		ps, err := paths.ReadCSV(r)
		return &input{ps: ps}, err
	case FormatGPX:
		tracks, err = geo.ReadGPX(r)
	case FormatGeoJSON:
		tracks, err = geo.ReadGeoJSON(r)
	case FormatPolyline:
		tracks, err = readPolylines(r)
	default:
		return nil, errors.Errorf("unknown input format %q", format)
	}
	if err != nil {
		return nil, err
	}
	proj := cfg.projector(tracks)
	in := &input{ps: geo.ProjectTracks(proj, tracks...), proj: proj}
	for _, t := range tracks {
		in.names = append(in.names, t.Name)
	}
	return in, nil
}

// outputLayer picks the layer written by single-layer formats: the
// most generalized layer that was computed.
func outputLayer(l paths.Layer) paths.Layer {
	for _, want := range []paths.Layer{paths.LayerCombined, paths.LayerSimplified, paths.LayerAveraged, paths.LayerOriginal} {
		if l&want != 0 {
			return want
		}
	}
	return paths.LayerOriginal
}

func (cfg *Config) write(w io.Writer, format string, opts *paths.Options, in *input, reports []*paths.Report) error {
	if isGeographic(format) && in.proj == nil {
		return errors.Errorf("can't write %s from planar input", format)
	}
	layer := outputLayer(opts.Layers)
	switch format {
	case FormatSVG:
		return paths.WriteLayersSVG(w, in.ps.Bounds, reports)
	case FormatCSV:
		out := &paths.Paths{Bounds: in.ps.Bounds}
		for _, r := range reports {
			out.P = append(out.P, paths.Path{V: r.Layer(layer)})
		}
		return out.WriteCSV(w)
	case FormatGeoJSON:
		var fs []geo.Feature
		for i, r := range reports {
			for _, l := range opts.Layers.Layers() {
				fs = append(fs, geo.Feature{
					Track: geo.Track{
						Name:   in.names[i],
						Points: geo.UnprojectPoints(in.proj, r.Layer(l)),
					},
					Properties: map[string]interface{}{"layer": l.String(), "path": i},
				})
			}
		}
		return geo.WriteGeoJSON(w, fs)
	case FormatPolyline:
		bw := bufio.NewWriter(w)
		for _, r := range reports {
			fmt.Fprintln(bw, geo.EncodePolyline(geo.UnprojectPoints(in.proj, r.Layer(layer))))
		}
		return bw.Flush()
	}
	return errors.Errorf("unknown output format %q", format)
}

// Process reads paths from r, generalizes them and writes the result to w.
func Process(cfg *Config, r io.Reader, w io.Writer) error {
	log := cfg.logger()
	opts := cfg.Options
	if opts == nil {
		opts = paths.DefaultOptions()
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	inFormat, outFormat := cfg.InFormat, cfg.OutFormat
	var err error
	if inFormat == "" {
		if inFormat, err = FormatOf(cfg.In); err != nil {
			return err
		}
	}
	if outFormat == "" {
		outFormat = FormatSVG
		if cfg.Out != "" && cfg.Out != "-" {
			if outFormat, err = FormatOf(cfg.Out); err != nil {
				return err
			}
		}
	}

	in, err := cfg.read(r, inFormat)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s input", inFormat)
	}
	log.Debug("read input",
		zap.String("format", inFormat),
		zap.Int("paths", len(in.ps.P)),
		zap.Int("points", in.ps.Len()))

	if in.proj == nil && (cfg.Size != (paths.Vec2{}) || cfg.Offset != (paths.Vec2{})) {
		b, err := fitBounds(cfg.Size, cfg.Offset, in.ps.Bounds)
		if err != nil {
			return err
		}
		in.ps = in.ps.Transformed(b)
	}
	if cfg.Clip {
		if in.proj != nil {
			return errors.New("clipping geographic input is not supported")
		}
		in.ps = in.ps.Clipped(in.ps.Bounds)
	}

	reports, err := in.ps.Generalize(opts)
	if err != nil {
		return err
	}
	for i, r := range reports {
		c := r.Counts()
		log.Info("generalized path",
			zap.Int("path", i),
			zap.Stringer("order", opts.Order),
			zap.Int("original", c.Original),
			zap.Int("simplified", c.Simplified),
			zap.Int("averaged", c.Averaged),
			zap.Int("combined", c.Combined))
	}

	if err := cfg.write(w, outFormat, opts, in, reports); err != nil {
		return errors.Wrapf(err, "failed to write %s output", outFormat)
	}
	return nil
}

// Run is Process on the files named in cfg.
func Run(cfg *Config) error {
	var r io.Reader = os.Stdin
	if cfg.In != "" && cfg.In != "-" {
		f, err := os.Open(cfg.In)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	} else if cfg.InFormat == "" {
		return errors.New("reading stdin needs an explicit input format")
	}

	if cfg.Out == "" || cfg.Out == "-" {
		return Process(cfg, r, os.Stdout)
	}
	out, err := os.Create(cfg.Out)
	if err != nil {
		return errors.Wrap(err, "failed to open output file")
	}
	if err := Process(cfg, r, out); err != nil {
		out.Close()
		return err
	}
	return errors.Wrap(out.Close(), "failed to write output")
}
