package palette

import (
	"context"
	"io"
	"slices"
	"sync"
	"unicode/utf16"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/observability"
)

// Neutral is the color of nodes without a type.
const Neutral = "#1f2937"

// DefaultColors is the twelve-color palette.
var DefaultColors = []string{
	"#2563eb", "#ea580c", "#16a34a", "#7c3aed",
	"#0891b2", "#b91c1c", "#c026d3", "#0d9488",
	"#f59e0b", "#0ea5e9", "#10b981", "#9333ea",
}

// DefaultTypes are pre-seeded into the first palette slots, in order.
var DefaultTypes = []string{
	"Entity", "TextCollection", "TextNode", "Practice", "Event",
	"Rule", "Claim", "MediaAsset", "Note",
}

// Strategy selects how unseeded types map to palette slots.
type Strategy int

const (
	// StrategyHash derives the slot from a hash of the type name.
	StrategyHash Strategy = iota
	// StrategyFirstSeen assigns slots in order of first request.
	StrategyFirstSeen
)

// String implements fmt.Stringer.
func (s Strategy) String() string {
	switch s {
	case StrategyFirstSeen:
		return "first-seen"
	default:
		return "hash"
	}
}

// ParseStrategy parses "hash" or "first-seen".
func ParseStrategy(s string) (Strategy, bool) {
	switch s {
	case "hash", "":
		return StrategyHash, true
	case "first-seen", "firstseen", "first_seen":
		return StrategyFirstSeen, true
	default:
		return StrategyHash, false
	}
}

// Assignment is one type → color entry.
type Assignment struct {
	Type   string `json:"type"`
	Color  string `json:"color"`
	Seeded bool   `json:"seeded,omitempty"`
}

// Table assigns colors to node types. It is safe for concurrent use when its
// Store is.
type Table struct {
	colors   []string
	seeded   []string
	seedIdx  map[string]int
	strategy Strategy
	store    Store
	logger   *log.Logger

	// mu serializes slot allocation so first-seen order is well defined
	// within one process.
	mu sync.Mutex
}

// Option configures a Table.
type Option func(*Table)

// WithStrategy selects the assignment strategy.
func WithStrategy(s Strategy) Option {
	return func(t *Table) { t.strategy = s }
}

// WithStore sets the backing store. The default is a MemoryStore.
func WithStore(s Store) Option {
	return func(t *Table) {
		if s != nil {
			t.store = s
		}
	}
}

// WithColors replaces the palette. An empty list keeps the default.
func WithColors(colors []string) Option {
	return func(t *Table) {
		if len(colors) > 0 {
			t.colors = slices.Clone(colors)
		}
	}
}

// WithSeededTypes replaces the pre-seeded types.
func WithSeededTypes(types []string) Option {
	return func(t *Table) { t.seeded = slices.Clone(types) }
}

// WithLogger sets the logger for store failures.
func WithLogger(l *log.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// New creates a table and seeds its store with the default types.
func New(opts ...Option) *Table {
	t := &Table{
		colors: DefaultColors,
		seeded: DefaultTypes,
		store:  NewMemoryStore(),
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.seedIdx = make(map[string]int, len(t.seeded))
	for i, typ := range t.seeded {
		if _, ok := t.seedIdx[typ]; !ok && typ != "" {
			t.seedIdx[typ] = i
		}
	}
	t.seed(context.Background())
	return t
}

// Strategy returns the table's strategy.
func (t *Table) Strategy() Strategy { return t.strategy }

// Colors returns a copy of the palette.
func (t *Table) Colors() []string { return slices.Clone(t.colors) }

// ColorFor returns the fill color for typ.
func (t *Table) ColorFor(typ string) string {
	return t.ColorForContext(context.Background(), typ)
}

// ColorForContext is ColorFor with a context for store calls. Store failures
// are logged and fall back to the hash slot, so a color is always returned.
func (t *Table) ColorForContext(ctx context.Context, typ string) string {
	if typ == "" {
		return Neutral
	}

	if c, ok, err := t.store.Get(ctx, typ); err != nil {
		t.logger.Warn("palette store read failed", "type", typ, "err", err)
		return t.fallback(typ)
	} else if ok {
		return c
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	color, err := t.allocate(ctx, typ)
	if err != nil {
		t.logger.Warn("palette slot allocation failed", "type", typ, "err", err)
		return t.fallback(typ)
	}
	stored, err := t.store.SetIfAbsent(ctx, typ, color)
	if err != nil {
		t.logger.Warn("palette store write failed", "type", typ, "err", err)
		return color
	}
	observability.Palette().OnAssign(ctx, typ, stored, t.strategy.String())
	return stored
}

// Assignments lists stored assignments: seeded types first in seed order,
// then the rest sorted by type name.
func (t *Table) Assignments() ([]Assignment, error) {
	return t.AssignmentsContext(context.Background())
}

// AssignmentsContext is Assignments with a context.
func (t *Table) AssignmentsContext(ctx context.Context) ([]Assignment, error) {
	all, err := t.store.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Assignment, 0, len(all))
	for _, typ := range t.seeded {
		if c, ok := all[typ]; ok {
			out = append(out, Assignment{Type: typ, Color: c, Seeded: true})
			delete(all, typ)
		}
	}
	rest := make([]string, 0, len(all))
	for typ := range all {
		rest = append(rest, typ)
	}
	slices.Sort(rest)
	for _, typ := range rest {
		out = append(out, Assignment{Type: typ, Color: all[typ]})
	}
	return out, nil
}

// Reset clears every assignment and re-seeds the default types.
func (t *Table) Reset() error {
	return t.ResetContext(context.Background())
}

// ResetContext is Reset with a context.
func (t *Table) ResetContext(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.store.Reset(ctx); err != nil {
		return err
	}
	t.seed(ctx)
	return nil
}

func (t *Table) seed(ctx context.Context) {
	for typ, i := range t.seedIdx {
		if _, err := t.store.SetIfAbsent(ctx, typ, t.colors[i%len(t.colors)]); err != nil {
			t.logger.Warn("palette seed failed", "type", typ, "err", err)
		}
	}
}

func (t *Table) allocate(ctx context.Context, typ string) (string, error) {
	if i, ok := t.seedIdx[typ]; ok {
		return t.colors[i%len(t.colors)], nil
	}
	if t.strategy == StrategyFirstSeen {
		n, err := t.store.Len(ctx)
		if err != nil {
			return "", err
		}
		return t.colors[n%len(t.colors)], nil
	}
	return t.fallback(typ), nil
}

func (t *Table) fallback(typ string) string {
	if i, ok := t.seedIdx[typ]; ok {
		return t.colors[i%len(t.colors)]
	}
	return t.colors[HashIndex(typ, len(t.colors))]
}

// HashIndex returns the palette slot for typ under StrategyHash: a 32-bit
// polynomial hash (h*31 + c) over the UTF-16 code units of typ, taken in
// absolute value modulo n.
func HashIndex(typ string, n int) int {
	if n <= 0 {
		return 0
	}
	var h int32
	for _, c := range utf16.Encode([]rune(typ)) {
		h = (h << 5) - h + int32(c)
	}
	a := int64(h)
	if a < 0 {
		a = -a
	}
	return int(a % int64(n))
}
