package flamegraph

import (
	"errors"
	"fmt"
	"html"
	"io"
	"sort"
	"strings"
)

// ErrNoUnits is returned when there is nothing to draw.
var ErrNoUnits = errors.New("no compute units found in folded stacks")

// SVGOptions configures the flame graph SVG output.
type SVGOptions struct {
	Title       string
	Width       int
	Height      int
	ColorScheme string // "hot", "cold", "heap"
	Unit        string
}

// DefaultSVGOptions returns sensible defaults.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Title:       "Compute Unit Flame Graph",
		Width:       1200,
		ColorScheme: "hot",
		Unit:        "CU",
	}
}

const (
	rowHeight    = 16
	headerHeight = 40
	footerHeight = 20
	sideMargin   = 10
	charWidth    = 7
)

// section is one node of the call tree rebuilt from folded stacks. self is the
// net value folded onto exactly this path; inclusive adds every descendant.
type section struct {
	name      string
	self      uint64
	inclusive uint64
	children  map[string]*section
}

func (s *section) child(name string) *section {
	if s.children == nil {
		s.children = make(map[string]*section)
	}
	c, ok := s.children[name]
	if !ok {
		c = &section{name: name}
		s.children[name] = c
	}
	return c
}

// sortedChildren orders siblings by name so output is stable across runs.
func (s *section) sortedChildren() []*section {
	out := make([]*section, 0, len(s.children))
	for _, c := range s.children {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func buildTree(stacks map[string]uint64) *section {
	root := &section{name: "all"}
	for stack, v := range stacks {
		node := root
		node.inclusive += v
		for _, name := range strings.Split(stack, ";") {
			node = node.child(name)
			node.inclusive += v
		}
		node.self += v
	}
	return root
}

func (s *section) depth() int {
	d := 0
	for _, c := range s.children {
		d = max(d, c.depth()+1)
	}
	return d
}

// box is a laid-out frame in SVG coordinates.
type box struct {
	sec   *section
	x, y  int
	width int
	level int
}

// layout walks the tree breadth-first, giving each child a slice of its
// parent's width proportional to its inclusive value.
func layout(root *section, width, baseY int) []box {
	queue := []box{{sec: root, x: sideMargin, y: baseY, width: width}}
	var boxes []box
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		if b.width < 1 || b.sec.inclusive == 0 {
			continue
		}
		boxes = append(boxes, b)

		x := b.x
		for _, c := range b.sec.sortedChildren() {
			w := max(1, int(float64(b.width)*float64(c.inclusive)/float64(b.sec.inclusive)))
			queue = append(queue, box{sec: c, x: x, y: b.y - rowHeight, width: w, level: b.level + 1})
			x += w
		}
	}
	return boxes
}

// GenerateSVG renders folded stacks as an SVG flame graph. Frame widths are
// proportional to the CU spent in the section including its nested sections;
// the tooltip also reports the section's own (net) share.
func GenerateSVG(stacks map[string]uint64, svg io.Writer, opts SVGOptions) error {
	if opts.Width == 0 {
		opts.Width = 1200
	}
	if opts.Unit == "" {
		opts.Unit = "CU"
	}

	root := buildTree(stacks)
	if root.inclusive == 0 {
		return ErrNoUnits
	}
	if opts.Height == 0 {
		opts.Height = (root.depth()+2)*rowHeight + headerHeight + footerHeight
	}
	unit := html.EscapeString(opts.Unit)

	fmt.Fprintf(svg, `<?xml version="1.0" standalone="no"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN" "http://www.w3.org/Graphics/SVG/1.1/DTD/svg1.1.dtd">
<svg version="1.1" width="%[1]d" height="%[2]d" xmlns="http://www.w3.org/2000/svg">
<style>
  .section:hover { stroke:black; stroke-width:0.5; cursor:pointer; }
  text { font-family: monospace; font-size: 12px; }
</style>
<rect x="0" y="0" width="%[1]d" height="%[2]d" fill="white"/>
<text x="%[3]d" y="20" text-anchor="middle" style="font-size:16px; font-weight:bold;">%[4]s</text>
<text x="%[3]d" y="35" text-anchor="middle" style="font-size:12px; fill:#666;">(%[5]d %[6]s)</text>
`, opts.Width, opts.Height, opts.Width/2, html.EscapeString(opts.Title), root.inclusive, unit)

	for _, b := range layout(root, opts.Width-2*sideMargin, opts.Height-footerHeight) {
		writeBox(svg, b, root.inclusive, unit, opts.ColorScheme)
	}

	_, err := fmt.Fprintln(svg, "</svg>")
	return err
}

func writeBox(w io.Writer, b box, total uint64, unit, scheme string) {
	s := b.sec
	ownShare := float64(s.self) / float64(s.inclusive)
	red, green, blue := sectionColor(ownShare, b.level, scheme)

	fmt.Fprintf(w, `<g class="section">
<rect x="%d" y="%d" width="%d" height="%d" fill="rgb(%d,%d,%d)" rx="1"/>
`, b.x, b.y-rowHeight, b.width, rowHeight-1, red, green, blue)

	if label := fitLabel(s.name, b.width); label != "" {
		fmt.Fprintf(w, "<text x=\"%d\" y=\"%d\" fill=\"black\">%s</text>\n", b.x+2, b.y-4, html.EscapeString(label))
	}

	fmt.Fprintf(w, "<title>%s: %d %s total, %d %s net (%.1f%%)</title>\n</g>\n",
		html.EscapeString(s.name), s.inclusive, unit, s.self, unit,
		float64(s.inclusive)/float64(total)*100)
}

func fitLabel(name string, width int) string {
	if width <= 40 {
		return ""
	}
	n := (width - 4) / charWidth
	switch {
	case len(name) <= n:
		return name
	case n > 3:
		return name[:n-2] + ".."
	default:
		return ""
	}
}

// sectionColor shades frames by how much of their CU is their own work:
// sections that mostly delegate to children are paler.
func sectionColor(ownShare float64, level int, scheme string) (int, int, int) {
	shade := int(ownShare * 100)
	jitter := (level * 17) % 30
	switch scheme {
	case "cold":
		return 30, 60 + jitter + (100 - shade), 150 + shade
	case "heap":
		return 40 + (100 - shade), 150 + shade, 40 + jitter
	default:
		return 155 + shade, 60 + jitter + (100-shade)*3/2, 30
	}
}
