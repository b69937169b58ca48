// Statement splitting and classification for the pict dialect. The block
// body is cut into ;-terminated statements, each matched against the five
// primitive forms in priority order. Anything that matches none of them is
// decorative or unsupported markup and is skipped without error.

package pict

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// rawPoint is a coordinate in markup space: exporter-scaled, y-up.
type rawPoint struct {
	x, y float64
}

// circlePrim is a full circle: a state ring or an accept ring.
type circlePrim struct {
	center rawPoint
	radius float64
}

// labelPrim is a positioned text caption. A non-empty hint marks an edge
// caption placed off its anchor; node labels carry no hint.
type labelPrim struct {
	pos  rawPoint
	text string
	hint string
}

// arcPrim is a circular arc given TikZ-style: it starts at start, and its
// center is start displaced by -radius in the startDeg direction.
type arcPrim struct {
	start    rawPoint
	startDeg float64
	endDeg   float64
	radius   float64
}

func (a arcPrim) center() rawPoint {
	return rawPoint{
		x: a.start.x - a.radius*math.Cos(a.startDeg*math.Pi/180),
		y: a.start.y - a.radius*math.Sin(a.startDeg*math.Pi/180),
	}
}

// pointAt returns the point on the arc's circle at the given angle in
// degrees.
func (a arcPrim) pointAt(deg float64) rawPoint {
	c := a.center()
	return rawPoint{
		x: c.x + a.radius*math.Cos(deg*math.Pi/180),
		y: c.y + a.radius*math.Sin(deg*math.Pi/180),
	}
}

// polyPrim is a polyline. Stroked two-point polylines are edge shafts;
// filled polylines are arrowhead triangles whose first point is the tip.
type polyPrim struct {
	points []rawPoint
}

const (
	num      = `(-?[0-9.]+)`
	style    = `(?:\[[^\]]*\]\s*)?`
	pointPat = `\(\s*` + num + `\s*,\s*` + num + `\s*\)`
)

var (
	beginRe  = regexp.MustCompile(`\\begin\{pict\}(?:\[\s*scale\s*=\s*([0-9.]+)\s*\])?`)
	circleRe = regexp.MustCompile(`^stroke\s+` + style + pointPat + `\s*circle\s*\(\s*` + num + `\s*\)$`)
	labelRe  = regexp.MustCompile(`^stroke\s+` + style + pointPat + `\s*label\s*(?:\[(above|below|left|right)\]\s*)?\{(.*)\}$`)
	arcRe    = regexp.MustCompile(`^stroke\s+` + style + pointPat + `\s*arc\s*\(\s*` + num + `\s*:\s*` + num + `\s*:\s*` + num + `\s*\)$`)
	polyRe   = regexp.MustCompile(`^(stroke|fill)\s+` + style + pointPat + `(?:\s*--\s*` + pointPat + `)+$`)
	pairRe   = regexp.MustCompile(pointPat)
)

func parseNum(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// collect splits the block body into statements and files each recognized
// primitive into the importer's worklists.
func (im *Importer) collect(body string) {
	for _, stmt := range strings.Split(body, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if m := circleRe.FindStringSubmatch(stmt); m != nil {
			im.circles = append(im.circles, circlePrim{
				center: rawPoint{parseNum(m[1]), parseNum(m[2])},
				radius: parseNum(m[3]),
			})
			continue
		}
		if m := labelRe.FindStringSubmatch(stmt); m != nil {
			im.labels = append(im.labels, labelPrim{
				pos:  rawPoint{parseNum(m[1]), parseNum(m[2])},
				hint: m[3],
				text: m[4],
			})
			continue
		}
		if m := arcRe.FindStringSubmatch(stmt); m != nil {
			im.arcs = append(im.arcs, arcPrim{
				start:    rawPoint{parseNum(m[1]), parseNum(m[2])},
				startDeg: parseNum(m[3]),
				endDeg:   parseNum(m[4]),
				radius:   parseNum(m[5]),
			})
			continue
		}
		if m := polyRe.FindStringSubmatch(stmt); m != nil {
			var pts []rawPoint
			for _, pm := range pairRe.FindAllStringSubmatch(stmt, -1) {
				pts = append(pts, rawPoint{parseNum(pm[1]), parseNum(pm[2])})
			}
			switch {
			case m[1] == "stroke" && len(pts) >= 2:
				im.strokes = append(im.strokes, polyPrim{points: pts})
			case m[1] == "fill" && len(pts) >= 3:
				im.fills = append(im.fills, polyPrim{points: pts})
			}
			continue
		}
		// Unrecognized statement: skipped. Decorative markup must not
		// block an otherwise recoverable import.
	}
}

// extractBlock isolates the drawing-environment body and its scale option.
// A missing or unterminated block is the single fatal import failure.
func extractBlock(text string) (body string, scale float64, err error) {
	m := beginRe.FindStringSubmatchIndex(text)
	if m == nil {
		return "", 0, &StructuralError{Msg: `no \begin{pict} block found in input`}
	}
	scale = 0
	if m[2] >= 0 {
		scale = parseNum(text[m[2]:m[3]])
	}
	rest := text[m[1]:]
	end := strings.Index(rest, `\end{pict}`)
	if end < 0 {
		return "", 0, &StructuralError{Msg: `\begin{pict} block is never closed`}
	}
	return rest[:end], scale, nil
}
