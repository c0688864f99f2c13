package scene

import "testing"

func TestElementTree(t *testing.T) {
	root := NewElement("svg")
	g := root.AppendNew("g", "layer")
	c := g.AppendNew("circle").SetNum("cx", 1.005).SetNum("r", 3)

	if c.Parent() != g || g.Parent() != root || c.Root() != root {
		t.Fatal("parent links broken")
	}
	if got, _ := c.Attr("cx"); got != "1" && got != "1.01" {
		t.Errorf("cx = %q", got)
	}
	if len(root.ByTag("circle")) != 1 || len(root.ByClass("layer")) != 1 {
		t.Error("lookup by tag or class failed")
	}

	other := NewElement("g")
	other.Append(c)
	if len(g.Children()) != 0 || c.Parent() != other {
		t.Error("Append should move an attached child")
	}
}

func TestElementClasses(t *testing.T) {
	e := NewElement("g").AddClass("a", "b", "a", "")
	if e.ClassName() != "a b" {
		t.Errorf("ClassName() = %q, want %q", e.ClassName(), "a b")
	}
	e.RemoveClass("a")
	if e.HasClass("a") || !e.HasClass("b") {
		t.Errorf("classes after remove = %v", e.Classes())
	}
}

func TestElementAttrsSorted(t *testing.T) {
	e := NewElement("rect").SetAttr("y", "2").SetAttr("x", "1").SetAttr("height", "3")
	attrs := e.Attrs()
	want := []string{"height", "x", "y"}
	for i, a := range attrs {
		if a.Name != want[i] {
			t.Errorf("attr %d = %s, want %s", i, a.Name, want[i])
		}
	}
}

func TestFormatNum(t *testing.T) {
	tests := map[float64]string{
		0:        "0",
		1.5:      "1.5",
		10.004:   "10",
		-0.001:   "0",
		123.456:  "123.46",
		-42.1234: "-42.12",
	}
	for in, want := range tests {
		if got := FormatNum(in); got != want {
			t.Errorf("FormatNum(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestDispatchBubbles(t *testing.T) {
	c := NewContainer(100, 100)
	root := c.Append(NewElement("svg"))
	group := root.AppendNew("g")
	leaf := group.AppendNew("circle")

	var order []string
	c.AddListener(leaf, EventClick, func(*Event) { order = append(order, "leaf") })
	c.AddListener(group, EventClick, func(e *Event) {
		if e.Target != leaf || e.Current != group {
			t.Errorf("target/current = %v/%v", e.Target.Tag, e.Current.Tag)
		}
		order = append(order, "group")
	})
	c.AddListener(root, EventClick, func(*Event) { order = append(order, "root") })
	c.AddListener(root, "keydown", func(*Event) { order = append(order, "key") })

	if n := c.Click(leaf); n != 3 {
		t.Errorf("Click invoked %d listeners, want 3", n)
	}
	if len(order) != 3 || order[0] != "leaf" || order[1] != "group" || order[2] != "root" {
		t.Errorf("order = %v", order)
	}
}

func TestDispatchStopPropagation(t *testing.T) {
	c := NewContainer(100, 100)
	root := c.Append(NewElement("svg"))
	leaf := root.AppendNew("circle")

	rootCalls := 0
	c.AddListener(leaf, EventClick, func(e *Event) { e.StopPropagation() })
	c.AddListener(root, EventClick, func(*Event) { rootCalls++ })

	c.Click(leaf)
	if rootCalls != 0 {
		t.Errorf("root listener ran %d times after StopPropagation", rootCalls)
	}
}

func TestClearDetachesListeners(t *testing.T) {
	c := NewContainer(100, 100)
	root := c.Append(NewElement("svg"))
	calls := 0
	c.AddListener(root, EventClick, func(*Event) { calls++ })
	gen := c.Generation()

	c.Clear()
	if c.ListenerCount() != 0 {
		t.Errorf("ListenerCount() = %d after Clear", c.ListenerCount())
	}
	if c.Generation() != gen+1 {
		t.Errorf("Generation() = %d, want %d", c.Generation(), gen+1)
	}
	if n := c.Click(root); n != 0 || calls != 0 {
		t.Errorf("stale element received click: %d listeners, %d calls", n, calls)
	}

	// Listeners on detached elements are never registered.
	c.AddListener(root, EventClick, func(*Event) { calls++ })
	if c.ListenerCount() != 0 {
		t.Error("listener registered on detached element")
	}
}

func TestHitTest(t *testing.T) {
	c := NewContainer(200, 200)
	svg := c.Append(NewElement("svg"))
	bg := svg.AppendNew("rect").SetNum("x", 0).SetNum("y", 0).SetNum("width", 200).SetNum("height", 200)
	line := svg.AppendNew("line").SetNum("x1", 20).SetNum("y1", 100).SetNum("x2", 180).SetNum("y2", 100)
	circle := svg.AppendNew("circle").SetNum("cx", 100).SetNum("cy", 100).SetNum("r", 20)
	svg.AppendNew("text").SetNum("x", 100).SetNum("y", 100)

	tests := []struct {
		name string
		x, y float64
		want *Element
	}{
		{"circle over line", 100, 100, circle},
		{"circle edge", 119, 100, circle},
		{"line", 150, 102, line},
		{"background", 150, 150, bg},
		{"outside", 250, 250, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.HitTest(tt.x, tt.y); got != tt.want {
				t.Errorf("HitTest(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestSegmentDistance(t *testing.T) {
	if d := segmentDistance(5, 3, 0, 0, 10, 0); d != 3 {
		t.Errorf("perpendicular distance = %v, want 3", d)
	}
	if d := segmentDistance(13, 4, 0, 0, 10, 0); d != 5 {
		t.Errorf("endpoint distance = %v, want 5", d)
	}
	if d := segmentDistance(3, 4, 0, 0, 0, 0); d != 5 {
		t.Errorf("degenerate distance = %v, want 5", d)
	}
}
