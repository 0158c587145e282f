// Command starbox resolves a star in SIMBAD, collects the objects around it
// that fall inside a distance window and renders them as a 3D chart.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/starbox/internal/catalog"
	"github.com/banshee-data/starbox/internal/config"
	"github.com/banshee-data/starbox/internal/fsutil"
	"github.com/banshee-data/starbox/internal/httputil"
	"github.com/banshee-data/starbox/internal/monitoring"
	"github.com/banshee-data/starbox/internal/starbox"
	"github.com/banshee-data/starbox/internal/version"
	"github.com/banshee-data/starbox/internal/viewer"
)

// options holds the parsed command line.
type options struct {
	configPath  string
	params      *config.Params
	assetsHost  string
	bins        int
	rate        float64
	metrics     bool
	trace       bool
	verbose     bool
	showVersion bool
}

// runEnv carries the collaborators run needs, so tests can swap them.
type runEnv struct {
	client  httputil.HTTPClient
	fsys    fsutil.FileSystem
	stdout  io.Writer
	metrics *monitoring.Metrics
}

// parseFlags reads args into options. Only flags the user actually set
// become params, so a config file value is not clobbered by a flag default.
func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("starbox", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  = fs.String("config", "", "Path to a JSON params file")
		star        = fs.String("star", "", "Name of the star to centre the box on (e.g. \"HD 984\")")
		radius      = fs.Float64("radius", config.DefaultRadius, "Search radius around the star")
		radiusUnit  = fs.String("radius-unit", config.DefaultRadiusUnit, "Radius unit: deg, arcmin or arcsec")
		depthStart  = fs.Float64("depth-start", config.DefaultDepthStart, "Near edge of the distance window (pc, exclusive)")
		depthEnd    = fs.Float64("depth-end", config.DefaultDepthEnd, "Far edge of the distance window (pc, exclusive)")
		out         = fs.String("out", "", "HTML output path (default starbox-<run id>.html)")
		png         = fs.String("png", "", "Optional PNG output path")
		serve       = fs.String("serve", "", "Serve the chart on this address until interrupted (e.g. :8080)")
		endpoint    = fs.String("endpoint", catalog.DefaultEndpoint, "SIMBAD script endpoint")
		limit       = fs.Int("limit", 0, "Maximum rows per catalog query (0 for no limit)")
		timeout     = fs.String("timeout", config.DefaultTimeout.String(), "Catalog request timeout")
		assetsHost  = fs.String("assets-host", "", "Override the echarts assets host")
		bins        = fs.Int("bins", starbox.DefaultHistogramBins, "Number of depth histogram bins")
		rateLimit   = fs.Float64("rate", httputil.DefaultRequestsPerSecond, "Maximum catalog requests per second (0 for no limit)")
		metrics     = fs.Bool("metrics", false, "Expose Prometheus metrics at /metrics on the viewer")
		traceSpans  = fs.Bool("trace", false, "Write trace spans to stderr")
		verbose     = fs.Bool("v", false, "Verbose logging")
		showVersion = fs.Bool("version", false, "Print version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	p := config.EmptyParams()
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "star":
			p.StarName = star
		case "radius":
			p.Radius = radius
		case "radius-unit":
			p.RadiusUnit = radiusUnit
		case "depth-start":
			p.DepthStart = depthStart
		case "depth-end":
			p.DepthEnd = depthEnd
		case "out":
			p.HTMLOut = out
		case "png":
			p.PNGOut = png
		case "serve":
			p.ServeAddr = serve
		case "endpoint":
			p.Endpoint = endpoint
		case "limit":
			p.RowLimit = limit
		case "timeout":
			p.Timeout = timeout
		}
	})

	return &options{
		configPath:  *configPath,
		params:      p,
		assetsHost:  *assetsHost,
		bins:        *bins,
		rate:        *rateLimit,
		metrics:     *metrics,
		trace:       *traceSpans,
		verbose:     *verbose,
		showVersion: *showVersion,
	}, nil
}

// resolveParams merges the config file (if any) with the flag overrides
// and validates the result.
func resolveParams(opts *options) (*config.Params, error) {
	p := config.EmptyParams()
	if opts.configPath != "" {
		loaded, err := config.LoadParams(opts.configPath)
		if err != nil {
			return nil, err
		}
		p = loaded
	}
	p.Override(opts.params)
	if p.GetStarName() == "" {
		return nil, errors.New("a star name is required (-star or star_name)")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return p, nil
}

// run builds one star box and writes its outputs. When a serve address is
// set it blocks serving the chart until ctx is cancelled.
func run(ctx context.Context, p *config.Params, opts *options, env runEnv) error {
	req := starbox.Request{
		StarName: p.GetStarName(),
		Radius:   p.GetRadius(),
		Window:   p.GetWindow(),
		Query:    p.QueryConfig(),
	}
	box, err := starbox.MakeStarBox(ctx, catalog.NewSimbadClient(env.client), req)
	if err != nil {
		return err
	}
	env.metrics.SetBoxCounts(box.RegionCount, len(box.Points))
	fmt.Fprintln(env.stdout, box.DistanceLine())

	ro := starbox.RenderOptions{AssetsHost: opts.assetsHost, HistogramBins: opts.bins}

	htmlOut := p.GetHTMLOut()
	if htmlOut == "" {
		htmlOut = fmt.Sprintf("starbox-%s.html", box.RunID)
	}
	if err := starbox.WriteHTML(env.fsys, htmlOut, box, ro); err != nil {
		return fmt.Errorf("write %s: %w", htmlOut, err)
	}
	monitoring.Logf("wrote %s", htmlOut)

	if pngOut := p.GetPNGOut(); pngOut != "" {
		if err := starbox.RenderPNG(env.fsys, pngOut, box, ro); err != nil {
			return fmt.Errorf("write %s: %w", pngOut, err)
		}
		monitoring.Logf("wrote %s", pngOut)
	}

	addr := p.GetServeAddr()
	if addr == "" {
		return nil
	}
	html, err := env.fsys.ReadFile(htmlOut)
	if err != nil {
		return err
	}
	v := viewer.New(box, html).WithHistogramBins(opts.bins)
	if env.metrics != nil {
		v = v.WithMetrics(env.metrics)
	}
	return viewer.Serve(ctx, addr, v, func(a net.Addr) {
		monitoring.Logf("serving %s on http://%s/ (Ctrl-C to stop)", box.StarName, a)
	})
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if opts.showVersion {
		fmt.Println(version.String())
		return
	}
	monitoring.SetDebug(opts.verbose)

	p, err := resolveParams(opts)
	if err != nil {
		log.Fatalf("starbox: %v", err)
	}

	var spanOut io.Writer
	if opts.trace {
		spanOut = os.Stderr
	}
	shutdownTracing, err := monitoring.InitTracing(spanOut)
	if err != nil {
		log.Fatalf("starbox: tracing: %v", err)
	}

	var metrics *monitoring.Metrics
	if opts.metrics {
		if metrics, err = monitoring.NewMetrics(nil); err != nil {
			log.Fatalf("starbox: metrics: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	env := runEnv{
		client:  newCatalogClient(p, opts, metrics),
		fsys:    fsutil.OSFileSystem{},
		stdout:  os.Stdout,
		metrics: metrics,
	}
	err = run(ctx, p, opts, env)
	stop()
	monitoring.ShutdownTracing(shutdownTracing)
	if err != nil {
		log.Fatalf("starbox: %v", err)
	}
}

// newCatalogClient stacks pacing and instrumentation on a timeout-bounded
// HTTP client.
func newCatalogClient(p *config.Params, opts *options, m *monitoring.Metrics) httputil.HTTPClient {
	var c httputil.HTTPClient = httputil.NewTimeoutClient(p.GetTimeout())
	c = httputil.NewInstrumentedClient(c, m)
	return httputil.NewRateLimitedClient(c, opts.rate, 1)
}
