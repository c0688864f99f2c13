// Package pipeline runs the layout → render → serialize sequence shared by
// the CLI and the HTTP service.
//
// By centralizing this logic, both entry points apply the same defaults,
// validation and caching.
//
// # Usage
//
//	runner := pipeline.NewRunner(palette.New(), layout.DefaultParams(), logger)
//	result, err := runner.Execute(ctx, g, pipeline.Options{
//	    Width:   800,
//	    Height:  600,
//	    Formats: []string{"svg", "json"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Seeded runs are reproducible and, when the Runner has a Cache, their
// artifacts are cached. Unseeded runs always render.
package pipeline

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height.
	DefaultHeight = 600.0

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0

	// MaxExtent bounds the canvas on each axis.
	MaxExtent = 20000.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// SVG engines.
const (
	// EngineNative draws SVG from the scene tree.
	EngineNative = "native"

	// EngineGraphviz draws SVG with Graphviz neato from the pinned DOT
	// export. The click script is not available with this engine.
	EngineGraphviz = "graphviz"
)

// ValidFormats lists the supported output formats in display order.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatDOT}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a single pipeline run. It supports JSON for API
// requests.
type Options struct {
	Width  float64 `json:"width,omitempty" validate:"gte=0,lte=20000"`
	Height float64 `json:"height,omitempty" validate:"gte=0,lte=20000"`
	// Seed fixes the initial placement. Zero means a fresh random placement
	// on every run; such runs are never cached.
	Seed uint64 `json:"seed,omitempty"`

	Formats     []string `json:"formats,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	EmbedFont   bool     `json:"embed_font,omitempty"`
	Selected    string   `json:"selected,omitempty"`
	Scale       float64  `json:"scale,omitempty" validate:"gte=0,lte=8"`
	Title       string   `json:"title,omitempty"`
	Engine      string   `json:"engine,omitempty" validate:"omitempty,oneof=native graphviz"`

	// Pinned fixes node positions; pinned nodes are still clamped to the
	// canvas.
	Pinned map[string]r2.Vec `json:"-" validate:"-"`

	Logger *log.Logger `json:"-" validate:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Positions holds the final node centers. It is nil when every artifact
	// was served from the cache.
	Positions layout.Positions

	// Width and Height are the canvas extent after flooring.
	Width, Height float64

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Cached reports that all artifacts came from the cache.
	Cached bool

	Stats Stats
}

// Stats contains execution statistics.
type Stats struct {
	NodeCount      int
	EdgeCount      int
	ValidEdgeCount int
	LayoutTime     time.Duration
	RenderTime     time.Duration
}

var validate = validator.New()

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, trimming blanks and
// dropping duplicates.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Engine == "" {
		o.Engine = EngineNative
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks numeric ranges and formats.
func (o *Options) Validate() error {
	for _, v := range []float64{o.Width, o.Height, o.Scale} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "dimensions must be finite")
		}
	}
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	return ValidateFormats(o.Formats)
}

// cacheParts are the option fields that change artifact bytes.
func (o *Options) cacheParts(format string) []any {
	return []any{format, o.Width, o.Height, o.Seed, o.Interactive, o.EmbedFont, o.Selected, o.Scale, o.Title, o.Engine, o.Pinned}
}

// String implements fmt.Stringer for log output.
func (o Options) String() string {
	return fmt.Sprintf("%gx%g seed=%d formats=%s", o.Width, o.Height, o.Seed, strings.Join(o.Formats, ","))
}
