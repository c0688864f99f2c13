package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// =============================================================================
// Layout - Computed Positions
// =============================================================================

// Layout is the export format for a rendered scene: canvas extent, node
// placement and the valid edges that were drawn. It is write-only.
type Layout struct {
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Seed   uint64       `json:"seed,omitempty"`
	Nodes  []LayoutNode `json:"nodes"`
	Edges  []Edge       `json:"edges"`
}

// LayoutNode is a node with its final position and assigned fill color.
type LayoutNode struct {
	ID     string  `json:"id"`
	Name   string  `json:"name,omitempty"`
	Type   string  `json:"type,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Color  string  `json:"color"`
	Center bool    `json:"center,omitempty"`
}

// MarshalLayout serializes a layout to indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLayout(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteLayout writes a layout as indented JSON to w.
func WriteLayout(l Layout, w io.Writer) error {
	if l.Nodes == nil {
		l.Nodes = []LayoutNode{}
	}
	if l.Edges == nil {
		l.Edges = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}
