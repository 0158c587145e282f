// Package config loads run parameters for the star box builder.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/starbox/internal/catalog"
	"github.com/banshee-data/starbox/internal/region"
	"github.com/banshee-data/starbox/internal/units"
)

// Defaults applied by the Get* accessors.
const (
	DefaultRadius     = 1.0
	DefaultRadiusUnit = units.Degrees
	DefaultDepthStart = 0.0
	DefaultDepthEnd   = 100.0
	DefaultTimeout    = 30 * time.Second
)

// Params is the JSON schema of a run parameters file. Every field is
// optional; omitted fields fall back to the defaults above, so partial
// files are safe.
type Params struct {
	StarName   *string  `json:"star_name,omitempty"`
	Radius     *float64 `json:"radius,omitempty"`
	RadiusUnit *string  `json:"radius_unit,omitempty"`
	DepthStart *float64 `json:"depth_start_pc,omitempty"`
	DepthEnd   *float64 `json:"depth_end_pc,omitempty"`

	// Catalog params
	Endpoint *string `json:"endpoint,omitempty"`
	RowLimit *int    `json:"row_limit,omitempty"`
	Timeout  *string `json:"timeout,omitempty"` // duration string like "30s"
	// Fields narrows the catalog columns by name (see fieldNames); id, ra
	// and dec are always required.
	Fields []string `json:"fields,omitempty"`

	// Output params
	HTMLOut   *string `json:"html_out,omitempty"`
	PNGOut    *string `json:"png_out,omitempty"`
	ServeAddr *string `json:"serve_addr,omitempty"`
}

// fieldNames maps the params-file column names to catalog fields.
var fieldNames = map[string]catalog.Field{
	"id":            catalog.FieldID,
	"ra":            catalog.FieldRA,
	"dec":           catalog.FieldDec,
	"parallax":      catalog.FieldParallax,
	"object_type":   catalog.FieldObjectType,
	"spectral_type": catalog.FieldSpectralType,
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyParams returns Params with every field unset.
func EmptyParams() *Params {
	return &Params{}
}

// LoadParams loads Params from a JSON file. The file must have a .json
// extension and be under 1MB.
func LoadParams(path string) (*Params, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	p := EmptyParams()
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return p, nil
}

// Validate checks the fields that are set, plus the combined radius and
// depth window.
func (p *Params) Validate() error {
	if p.StarName != nil && strings.ContainsAny(*p.StarName, "\r\n") {
		return fmt.Errorf("star_name must be a single line")
	}
	if err := p.GetRadius().Validate(); err != nil {
		return fmt.Errorf("radius: %w", err)
	}
	if err := p.GetWindow().Validate(); err != nil {
		return err
	}
	if p.RowLimit != nil && *p.RowLimit < 0 {
		return fmt.Errorf("row_limit must be non-negative, got %d", *p.RowLimit)
	}
	if p.Timeout != nil && *p.Timeout != "" {
		d, err := time.ParseDuration(*p.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout '%s': %w", *p.Timeout, err)
		}
		if d < 0 {
			return fmt.Errorf("timeout must be non-negative, got %s", d)
		}
	}
	for _, name := range p.Fields {
		if _, ok := fieldNames[name]; !ok {
			return fmt.Errorf("unknown field '%s'", name)
		}
	}
	if err := p.QueryConfig().Validate(); err != nil {
		return err
	}
	return nil
}

// GetStarName returns the star name, or "" when unset.
func (p *Params) GetStarName() string {
	if p.StarName == nil {
		return ""
	}
	return strings.TrimSpace(*p.StarName)
}

// GetRadius returns the search radius with its unit.
func (p *Params) GetRadius() units.Angle {
	a := units.Angle{Value: DefaultRadius, Unit: DefaultRadiusUnit}
	if p.Radius != nil {
		a.Value = *p.Radius
	}
	if p.RadiusUnit != nil && *p.RadiusUnit != "" {
		a.Unit = *p.RadiusUnit
	}
	return a
}

// GetWindow returns the depth window in parsecs.
func (p *Params) GetWindow() region.Window {
	w := region.Window{Start: DefaultDepthStart, End: DefaultDepthEnd}
	if p.DepthStart != nil {
		w.Start = *p.DepthStart
	}
	if p.DepthEnd != nil {
		w.End = *p.DepthEnd
	}
	return w
}

// GetTimeout parses and returns the catalog request timeout.
func (p *Params) GetTimeout() time.Duration {
	if p.Timeout == nil || *p.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(*p.Timeout)
	if err != nil {
		return DefaultTimeout // default on parse error
	}
	return d
}

// GetHTMLOut returns the HTML output path, or "" to let the caller choose.
func (p *Params) GetHTMLOut() string {
	if p.HTMLOut == nil {
		return ""
	}
	return *p.HTMLOut
}

// GetPNGOut returns the PNG output path, or "" to skip the PNG.
func (p *Params) GetPNGOut() string {
	if p.PNGOut == nil {
		return ""
	}
	return *p.PNGOut
}

// GetServeAddr returns the viewer listen address, or "" to not serve.
func (p *Params) GetServeAddr() string {
	if p.ServeAddr == nil {
		return ""
	}
	return *p.ServeAddr
}

// QueryConfig builds the catalog query configuration for one run.
func (p *Params) QueryConfig() catalog.QueryConfig {
	qc := catalog.DefaultQueryConfig()
	if p.Endpoint != nil && *p.Endpoint != "" {
		qc.Endpoint = *p.Endpoint
	}
	if p.RowLimit != nil {
		qc = qc.WithLimit(*p.RowLimit)
	}
	if len(p.Fields) > 0 {
		fields := make([]catalog.Field, 0, len(p.Fields))
		for _, name := range p.Fields {
			if f, ok := fieldNames[name]; ok {
				fields = append(fields, f)
			}
		}
		qc = qc.WithFields(fields...)
	}
	return qc
}

// Override copies every field set in o over p.
func (p *Params) Override(o *Params) {
	if o == nil {
		return
	}
	if o.StarName != nil {
		p.StarName = ptrString(*o.StarName)
	}
	if o.Radius != nil {
		p.Radius = ptrFloat64(*o.Radius)
	}
	if o.RadiusUnit != nil {
		p.RadiusUnit = ptrString(*o.RadiusUnit)
	}
	if o.DepthStart != nil {
		p.DepthStart = ptrFloat64(*o.DepthStart)
	}
	if o.DepthEnd != nil {
		p.DepthEnd = ptrFloat64(*o.DepthEnd)
	}
	if o.Endpoint != nil {
		p.Endpoint = ptrString(*o.Endpoint)
	}
	if o.RowLimit != nil {
		p.RowLimit = ptrInt(*o.RowLimit)
	}
	if o.Timeout != nil {
		p.Timeout = ptrString(*o.Timeout)
	}
	if o.Fields != nil {
		p.Fields = append([]string(nil), o.Fields...)
	}
	if o.HTMLOut != nil {
		p.HTMLOut = ptrString(*o.HTMLOut)
	}
	if o.PNGOut != nil {
		p.PNGOut = ptrString(*o.PNGOut)
	}
	if o.ServeAddr != nil {
		p.ServeAddr = ptrString(*o.ServeAddr)
	}
}
