package pdf

import (
	"regexp"
	"strconv"
)

var (
	// Path commands in MuPDF's SVG export use absolute coordinates.
	pathAttrRe    = regexp.MustCompile(`\bd="([^"]+)"`)
	pathCommandRe = regexp.MustCompile(`([MLCQ])\s*(-?[0-9.eE+]+)[\s,]+(-?[0-9.eE+]+)`)
	lineElementRe = regexp.MustCompile(`<line[^>]*\bx1="(-?[0-9.eE+]+)"[^>]*\by1="(-?[0-9.eE+]+)"[^>]*\bx2="(-?[0-9.eE+]+)"[^>]*\by2="(-?[0-9.eE+]+)"`)
)

// parseSVGDrawings scans a page's SVG export for vector-drawing items.
// Straight segments become line items; curve control points are tagged as
// curves so downstream normalization can discard them.
func parseSVGDrawings(svg string) []RawDrawing {
	var drawings []RawDrawing

	for _, attrMatch := range pathAttrRe.FindAllStringSubmatch(svg, -1) {
		var current [2]float64
		haveCurrent := false
		for _, cmd := range pathCommandRe.FindAllStringSubmatch(attrMatch[1], -1) {
			x, errX := strconv.ParseFloat(cmd[2], 64)
			y, errY := strconv.ParseFloat(cmd[3], 64)
			if errX != nil || errY != nil {
				continue
			}
			point := [2]float64{x, y}
			switch cmd[1] {
			case "M":
				current = point
				haveCurrent = true
			case "L":
				if haveCurrent {
					drawings = append(drawings, RawDrawing{Kind: DrawLine, P0: current, P1: point})
				}
				current = point
				haveCurrent = true
			case "C", "Q":
				if haveCurrent {
					drawings = append(drawings, RawDrawing{Kind: DrawCurve, P0: current, P1: point})
				}
				current = point
				haveCurrent = true
			}
		}
	}

	for _, m := range lineElementRe.FindAllStringSubmatch(svg, -1) {
		x1, _ := strconv.ParseFloat(m[1], 64)
		y1, _ := strconv.ParseFloat(m[2], 64)
		x2, _ := strconv.ParseFloat(m[3], 64)
		y2, _ := strconv.ParseFloat(m[4], 64)
		drawings = append(drawings, RawDrawing{
			Kind: DrawLine,
			P0:   [2]float64{x1, y1},
			P1:   [2]float64{x2, y2},
		})
	}

	return drawings
}
