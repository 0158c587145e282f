// Package starbox builds the 3D neighbourhood of a named star: the star
// itself plus every catalog object within an angular radius whose distance
// falls inside a depth window.
package starbox

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/banshee-data/starbox/internal/catalog"
	"github.com/banshee-data/starbox/internal/monitoring"
	"github.com/banshee-data/starbox/internal/region"
	"github.com/banshee-data/starbox/internal/skycoord"
	"github.com/banshee-data/starbox/internal/units"
)

// ErrNoParallax is returned when the target star has no parallax, so its
// distance is unknown.
var ErrNoParallax = errors.New("target has no parallax measurement")

const tracerName = "github.com/banshee-data/starbox/internal/starbox"

// Request describes one star box.
type Request struct {
	StarName string
	Radius   units.Angle
	Window   region.Window
	Query    catalog.QueryConfig
}

// Validate checks the request before any catalog traffic.
func (r Request) Validate() error {
	if strings.TrimSpace(r.StarName) == "" {
		return fmt.Errorf("star name is required")
	}
	if err := r.Radius.Validate(); err != nil {
		return fmt.Errorf("radius: %w", err)
	}
	return r.Window.Validate()
}

// Point is an object placed in 3D: sky position in degrees plus distance.
type Point struct {
	Object     catalog.Object `json:"object"`
	Coord      skycoord.Coord `json:"coord"`
	DistancePC float64        `json:"distance_pc"`
}

// Box is the result of MakeStarBox.
type Box struct {
	RunID    string        `json:"run_id"`
	StarName string        `json:"star_name"`
	Target   Point         `json:"target"`
	Points   []Point       `json:"points"`
	Radius   units.Angle   `json:"radius"`
	Window   region.Window `json:"window"`
	// RegionCount is the number of rows the region query returned before
	// the depth filter.
	RegionCount int `json:"region_count"`
}

// DistanceLine is the human-readable distance report printed by the CLI.
func (b *Box) DistanceLine() string {
	return fmt.Sprintf("The distance to %s is %.4f pc", b.StarName, b.Target.DistancePC)
}

// Distances returns the distance of every region point, in point order.
func (b *Box) Distances() []float64 {
	out := make([]float64, len(b.Points))
	for i, p := range b.Points {
		out[i] = p.DistancePC
	}
	return out
}

// MakeStarBox resolves the named star, queries the region around it and
// keeps the objects inside the depth window.
func MakeStarBox(ctx context.Context, cat catalog.Catalog, req Request) (box *Box, err error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "MakeStarBox", trace.WithAttributes(
		attribute.String("star.name", req.StarName),
		attribute.String("radius", req.Radius.String()),
		attribute.Float64("window.start_pc", req.Window.Start),
		attribute.Float64("window.end_pc", req.Window.End),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rctx, rspan := tracer.Start(ctx, "ResolveObject")
	target, err := cat.ResolveObject(rctx, req.StarName, req.Query)
	rspan.End()
	if err != nil {
		return nil, err
	}
	if !target.HasParallax() {
		return nil, fmt.Errorf("%s: %w", req.StarName, ErrNoParallax)
	}
	targetPoint, err := toPoint(target)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", req.StarName, err)
	}

	qctx, qspan := tracer.Start(ctx, "QueryRegion")
	objects, err := cat.QueryRegion(qctx, targetPoint.Coord, req.Radius, req.Query)
	qspan.SetAttributes(attribute.Int("objects", len(objects)))
	qspan.End()
	if err != nil {
		return nil, err
	}

	kept := region.Filter(objects, req.Window)
	points := make([]Point, 0, len(kept))
	for _, o := range kept {
		p, err := toPoint(o)
		if err != nil {
			return nil, fmt.Errorf("region object %s: %w", o.ID, err)
		}
		points = append(points, p)
	}
	span.SetAttributes(
		attribute.Int("objects.region", len(objects)),
		attribute.Int("objects.kept", len(points)),
	)

	monitoring.Logf("star box %s: %d of %d objects within %s of %s fall in %s",
		req.StarName, len(points), len(objects), req.Radius, req.StarName, req.Window)

	return &Box{
		RunID:       uuid.NewString(),
		StarName:    req.StarName,
		Target:      targetPoint,
		Points:      points,
		Radius:      req.Radius,
		Window:      req.Window,
		RegionCount: len(objects),
	}, nil
}

// toPoint parses the position of an object that has a parallax.
func toPoint(o catalog.Object) (Point, error) {
	c, err := o.Coord()
	if err != nil {
		return Point{}, err
	}
	d, _ := region.Distance(o)
	return Point{Object: o, Coord: c, DistancePC: d}, nil
}
