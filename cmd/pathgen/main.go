// Command pathgen simplifies and smooths polylines read from SVG, CSV,
// GPX, GeoJSON or encoded polyline files, or serves the same over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/paulhankin/pathgen/cmd/pathgen/pathgen"
	"github.com/paulhankin/pathgen/internal/config"
	"github.com/paulhankin/pathgen/internal/logging"
	"github.com/paulhankin/pathgen/internal/server"
	"github.com/paulhankin/pathgen/paths"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// vec2Value is a pflag.Value holding "x,y". A single number sets x.
type vec2Value paths.Vec2

func (v *vec2Value) String() string {
	return fmt.Sprintf("%g,%g", v[0], v[1])
}

func (v *vec2Value) Type() string {
	return "x,y"
}

func parsePart(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func (v *vec2Value) Set(s string) error {
	var err error
	parts := strings.Split(s, ",")
	if len(parts) > 2 {
		return fmt.Errorf("can't parse %q as x,y", s)
	}
	if v[0], err = parsePart(parts[0]); err != nil {
		return err
	}
	v[1] = 0
	if len(parts) == 2 {
		if v[1], err = parsePart(parts[1]); err != nil {
			return err
		}
	}
	return nil
}

var _ pflag.Value = (*vec2Value)(nil)

var (
	vp         = config.New()
	configFile string
	cfg        *config.Config
	logger     *zap.Logger
)

// io flags shared by the conversion commands.
var (
	flagIn        string
	flagOut       string
	flagInFormat  string
	flagOutFormat string
	flagSize      vec2Value
	flagOffset    vec2Value
	flagClip      bool
)

var rootCmd = &cobra.Command{
	Use:           "pathgen",
	Short:         "Generalize polylines by simplification and moving averages",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(vp, configFile); err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		return err
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ./pathgen.yaml if present)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", "console", "log format: console or json")
	pf.Float64("tolerance", 4, "simplification tolerance")
	pf.Int("window", 5, "moving average window")
	pf.Bool("high-quality", true, "skip the radial distance pre-pass when simplifying")
	pf.String("order", "smooth-first", "order of the combined layer: smooth-first or simplify-first")
	pf.StringSlice("layers", []string{"all"}, "layers to compute: original, simplified, averaged, combined or all")
	pf.Float64("zoom", 14, "zoom level for geographic input")
	pf.Float64("width", 1024, "viewport width for geographic input")
	pf.Float64("height", 768, "viewport height for geographic input")
	pf.Float64("center-lat", 0, "latitude at the center of the viewport")
	pf.Float64("center-lon", 0, "longitude at the center of the viewport")
	pf.Bool("auto-center", true, "center the viewport on the input tracks")

	for key, flag := range map[string]string{
		"log.level":               "log-level",
		"log.format":              "log-format",
		"generalize.tolerance":    "tolerance",
		"generalize.window":       "window",
		"generalize.high_quality": "high-quality",
		"generalize.order":        "order",
		"generalize.layers":       "layers",
		"projection.zoom":         "zoom",
		"projection.width":        "width",
		"projection.height":       "height",
		"projection.center_lat":   "center-lat",
		"projection.center_lon":   "center-lon",
		"projection.auto_center":  "auto-center",
	} {
		if err := vp.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}

	for _, c := range []*cobra.Command{generalizeCmd, simplifyCmd, smoothCmd} {
		f := c.Flags()
		f.StringVarP(&flagIn, "in", "i", "", "input file, or - for stdin")
		f.StringVarP(&flagOut, "out", "o", "", "output file (default stdout)")
		f.StringVar(&flagInFormat, "in-format", "", "input format: svg, csv, gpx, geojson or polyline (default from the file name)")
		f.StringVar(&flagOutFormat, "out-format", "", "output format (default from the file name, else svg)")
		f.Var(&flagSize, "size", "scale planar input to this size")
		f.Var(&flagOffset, "offset", "move planar input by this much")
		f.BoolVar(&flagClip, "clip", false, "drop everything outside the input's bounds")
		rootCmd.AddCommand(c)
	}

	serveCmd.Flags().String("addr", ":8080", "address to listen on")
	if err := vp.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(serveCmd)
}

// convert runs pathgen.Run with the configured options, restricted to
// layers if it is non-zero.
func convert(layers paths.Layer) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	if layers != 0 {
		opts.Layers = layers
	}
	return pathgen.Run(&pathgen.Config{
		In:         flagIn,
		Out:        flagOut,
		InFormat:   flagInFormat,
		OutFormat:  flagOutFormat,
		Options:    opts,
		Projection: cfg.Projection,
		Size:       paths.Vec2(flagSize),
		Offset:     paths.Vec2(flagOffset),
		Clip:       flagClip,
		Log:        logger,
	})
}

var generalizeCmd = &cobra.Command{
	Use:   "generalize",
	Short: "Compute the configured layers and write them out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return convert(0)
	},
}

var simplifyCmd = &cobra.Command{
	Use:   "simplify",
	Short: "Simplify paths with Douglas-Peucker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return convert(paths.LayerSimplified)
	},
}

var smoothCmd = &cobra.Command{
	Use:   "smooth",
	Short: "Smooth paths with a moving average",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return convert(paths.LayerAveraged)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generalization over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := cfg.Options()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return server.New(cfg.Server, opts, logger).Run(ctx)
	},
}

func main() {
	err := rootCmd.ExecuteContext(context.Background())
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Wrap(err, "pathgen"))
		os.Exit(2)
	}
}
