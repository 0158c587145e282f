package catalog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/banshee-data/starbox/internal/httputil"
	"github.com/banshee-data/starbox/internal/monitoring"
	"github.com/banshee-data/starbox/internal/skycoord"
	"github.com/banshee-data/starbox/internal/units"
)

// maxResponseBytes bounds how much of a SIMBAD reply is read.
const maxResponseBytes = 16 << 20

// SimbadClient implements Catalog over SIMBAD's script interface.
type SimbadClient struct {
	client httputil.HTTPClient
}

// NewSimbadClient returns a client that sends requests through c.
func NewSimbadClient(c httputil.HTTPClient) *SimbadClient {
	if c == nil {
		c = httputil.NewStandardClient(nil)
	}
	return &SimbadClient{client: c}
}

// ResolveObject runs "query id" and returns the first row.
func (s *SimbadClient) ResolveObject(ctx context.Context, name string, cfg QueryConfig) (Object, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Object{}, fmt.Errorf("object name is required")
	}
	if strings.ContainsAny(name, "\r\n") {
		return Object{}, fmt.Errorf("object name %q must be a single line", name)
	}

	objs, err := s.run(ctx, cfg, "query id "+name)
	if err != nil {
		var qe *QueryError
		if errors.As(err, &qe) && qe.NotFound() {
			return Object{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return Object{}, fmt.Errorf("resolve %q: %w", name, err)
	}
	if len(objs) == 0 {
		return Object{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return objs[0], nil
}

// QueryRegion runs "query coo" around center. The radius is always sent in
// degrees whatever unit the caller measured it in.
func (s *SimbadClient) QueryRegion(ctx context.Context, center skycoord.Coord, radius units.Angle, cfg QueryConfig) ([]Object, error) {
	if err := radius.Validate(); err != nil {
		return nil, err
	}
	cmd := fmt.Sprintf("query coo %s radius=%sd", center, strconv.FormatFloat(radius.Degrees(), 'f', -1, 64))
	if cfg.Frame != "" {
		cmd += " frame=" + cfg.Frame
	}

	objs, err := s.run(ctx, cfg, cmd)
	if err != nil {
		var qe *QueryError
		if errors.As(err, &qe) && qe.NotFound() {
			return []Object{}, nil
		}
		return nil, fmt.Errorf("query region around %s: %w", center, err)
	}
	return objs, nil
}

// run posts one script and parses its data section.
func (s *SimbadClient) run(ctx context.Context, cfg QueryConfig, query string) ([]Object, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	script := buildScript(cfg, query)
	monitoring.Debugf("simbad script to %s:\n%s", cfg.Endpoint, script)

	form := url.Values{"script": {script}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	objs, err := parseResponse(string(body), cfg.Fields)
	if err != nil {
		return nil, err
	}
	monitoring.Debugf("simbad returned %d rows", len(objs))
	return objs, nil
}

// buildScript assembles the SIMBAD script for one query.
func buildScript(cfg QueryConfig, query string) string {
	var b strings.Builder
	b.WriteString("output console=off script=off\n")
	if cfg.Limit > 0 {
		fmt.Fprintf(&b, "set limit %d\n", cfg.Limit)
	}
	b.WriteString(cfg.formatDirective())
	b.WriteString("\n")
	b.WriteString(query)
	b.WriteString("\n")
	return b.String()
}

type section int

const (
	sectionNone section = iota
	sectionData
	sectionError
)

// parseResponse reads SIMBAD script output. Rows live under "::data::",
// failures under "::error::"; any other "::name::" section is skipped.
func parseResponse(body string, fields []Field) ([]Object, error) {
	var (
		objs   = []Object{}
		errs   []string
		sec    = sectionNone
		lineNo int
	)

	sc := bufio.NewScanner(strings.NewReader(body))
	sc.Buffer(make([]byte, 64*1024), maxResponseBytes)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, "::") {
			switch {
			case strings.HasPrefix(line, "::data::"):
				sec = sectionData
			case strings.HasPrefix(line, "::error::"):
				sec = sectionError
			default:
				sec = sectionNone
			}
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		switch sec {
		case sectionError:
			errs = append(errs, strings.TrimSpace(line))
		case sectionData:
			obj, err := parseRow(line, fields)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			objs = append(objs, obj)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan response: %w", err)
	}
	if len(errs) > 0 {
		return nil, &QueryError{Messages: errs}
	}
	return objs, nil
}

func parseRow(line string, fields []Field) (Object, error) {
	cols := strings.Split(line, "|")
	if len(cols) != len(fields) {
		return Object{}, fmt.Errorf("want %d columns, got %d in %q", len(fields), len(cols), line)
	}

	var obj Object
	for i, f := range fields {
		v := strings.TrimSpace(cols[i])
		switch f {
		case FieldID:
			obj.ID = strings.Join(strings.Fields(v), " ")
		case FieldRA:
			obj.RA = v
		case FieldDec:
			obj.Dec = v
		case FieldParallax:
			if v == "" || v == "~" {
				continue
			}
			p, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return Object{}, fmt.Errorf("bad parallax %q: %w", v, err)
			}
			obj.Parallax = &p
		case FieldObjectType:
			obj.ObjectType = blankTilde(v)
		case FieldSpectralType:
			obj.SpectralType = blankTilde(v)
		}
	}
	return obj, nil
}

func blankTilde(v string) string {
	if v == "~" {
		return ""
	}
	return v
}
