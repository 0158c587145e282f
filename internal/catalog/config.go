package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultEndpoint is SIMBAD's script interface.
const DefaultEndpoint = "https://simbad.cds.unistra.fr/simbad/sim-script"

// Field is a SIMBAD format directive selecting one output column.
type Field string

// Columns understood by the response parser.
const (
	FieldID           Field = "%IDLIST(1)"
	FieldRA           Field = "%COO(A)"
	FieldDec          Field = "%COO(D)"
	FieldParallax     Field = "%PLX(V)"
	FieldObjectType   Field = "%OTYPE(S)"
	FieldSpectralType Field = "%SP(S)"
)

var knownFields = map[Field]bool{
	FieldID:           true,
	FieldRA:           true,
	FieldDec:          true,
	FieldParallax:     true,
	FieldObjectType:   true,
	FieldSpectralType: true,
}

// QueryConfig selects the endpoint and output columns for one query. It is
// passed by value to every call; the client keeps no query state of its own.
type QueryConfig struct {
	Endpoint string
	// Frame is the coordinate frame named in region queries.
	Frame string
	// Limit caps the rows returned; 0 leaves SIMBAD's default in place.
	Limit  int
	Fields []Field
}

// DefaultQueryConfig returns the configuration used by the CLI: ICRS
// positions with identifier, parallax, object type and spectral type.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		Endpoint: DefaultEndpoint,
		Frame:    "ICRS",
		Fields: []Field{
			FieldID, FieldRA, FieldDec, FieldParallax, FieldObjectType, FieldSpectralType,
		},
	}
}

// WithFields returns a copy of c selecting the given columns.
func (c QueryConfig) WithFields(fields ...Field) QueryConfig {
	c.Fields = append([]Field(nil), fields...)
	return c
}

// WithLimit returns a copy of c with a row limit.
func (c QueryConfig) WithLimit(n int) QueryConfig {
	c.Limit = n
	return c
}

// Validate checks that the endpoint parses and that the identifier and
// position columns are selected.
func (c QueryConfig) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid catalog endpoint %q", c.Endpoint)
	}
	if c.Limit < 0 {
		return fmt.Errorf("row limit must be non-negative, got %d", c.Limit)
	}
	seen := make(map[Field]bool, len(c.Fields))
	for _, f := range c.Fields {
		if !knownFields[f] {
			return fmt.Errorf("unknown catalog field %q", f)
		}
		if seen[f] {
			return fmt.Errorf("duplicate catalog field %q", f)
		}
		seen[f] = true
	}
	for _, required := range []Field{FieldID, FieldRA, FieldDec} {
		if !seen[required] {
			return fmt.Errorf("catalog field %q is required", required)
		}
	}
	if strings.ContainsAny(c.Frame, "\r\n ") {
		return errors.New("frame must be a single word")
	}
	return nil
}

// formatDirective renders the "format object" script line.
func (c QueryConfig) formatDirective() string {
	cols := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		cols[i] = string(f)
	}
	return fmt.Sprintf("format object \"%s\"", strings.Join(cols, "|"))
}
