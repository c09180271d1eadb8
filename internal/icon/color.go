package icon

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Paint is the resolved brand color of a badge: either a solid color or a
// linear gradient. Rendering branches once per variant via colorAt.
type Paint interface {
	colorAt(x, y, size int) color.NRGBA
}

// Solid paints a single color everywhere.
type Solid struct {
	C color.NRGBA
}

func (s Solid) colorAt(int, int, int) color.NRGBA { return s.C }

// Stop is one color stop of a linear gradient, Pos in [0, 1].
type Stop struct {
	Pos float64
	C   color.NRGBA
}

// Gradient paints a CSS-style linear gradient: 0deg points up, angles grow
// clockwise, stops ordered along the gradient axis.
type Gradient struct {
	AngleDeg float64
	Stops    []Stop
}

func (g Gradient) colorAt(x, y, size int) color.NRGBA {
	if len(g.Stops) == 0 {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	if len(g.Stops) == 1 {
		return g.Stops[0].C
	}

	rad := g.AngleDeg * math.Pi / 180
	// Screen coordinates grow downward, so up is -y.
	dx, dy := math.Sin(rad), -math.Cos(rad)

	half := float64(size) / 2
	proj := (float64(x)-half)*dx + (float64(y)-half)*dy
	length := float64(size) * (math.Abs(dx) + math.Abs(dy))
	t := 0.5
	if length > 0 {
		t = 0.5 + proj/length
	}
	t = math.Max(0, math.Min(1, t))

	stops := g.Stops
	if t <= stops[0].Pos {
		return stops[0].C
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Pos {
			return lerpColor(stops[i-1], stops[i], t)
		}
	}
	return stops[len(stops)-1].C
}

func lerpColor(a, b Stop, t float64) color.NRGBA {
	span := b.Pos - a.Pos
	if span <= 0 {
		return b.C
	}
	f := (t - a.Pos) / span
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*f))
	}
	return color.NRGBA{
		R: lerp(a.C.R, b.C.R),
		G: lerp(a.C.G, b.C.G),
		B: lerp(a.C.B, b.C.B),
		A: lerp(a.C.A, b.C.A),
	}
}

// White is the default paint when no brand color is resolved.
var White = Solid{C: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}

// ParsePaint parses either a solid "#RRGGBB" color or a
// "linear-gradient(NNdeg, #RRGGBB NN%, ...)" descriptor.
func ParsePaint(spec string) (Paint, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty color spec")
	}

	if strings.HasPrefix(spec, "#") {
		c, err := parseHexColor(spec)
		if err != nil {
			return nil, err
		}
		return Solid{C: c}, nil
	}

	if strings.HasPrefix(spec, "linear-gradient(") && strings.HasSuffix(spec, ")") {
		return parseGradient(strings.TrimSuffix(strings.TrimPrefix(spec, "linear-gradient("), ")"))
	}

	return nil, fmt.Errorf("unrecognized color spec %q", spec)
}

func parseGradient(body string) (Paint, error) {
	parts := strings.Split(body, ",")
	if len(parts) < 3 {
		return nil, fmt.Errorf("gradient needs an angle and at least two stops")
	}

	angleStr := strings.TrimSpace(parts[0])
	if !strings.HasSuffix(angleStr, "deg") {
		return nil, fmt.Errorf("gradient angle %q must end in deg", angleStr)
	}
	angle, err := strconv.ParseFloat(strings.TrimSuffix(angleStr, "deg"), 64)
	if err != nil {
		return nil, fmt.Errorf("parse gradient angle: %w", err)
	}

	stops := make([]Stop, 0, len(parts)-1)
	for _, part := range parts[1:] {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) != 2 {
			return nil, fmt.Errorf("gradient stop %q must be \"#RRGGBB NN%%\"", part)
		}
		c, err := parseHexColor(fields[0])
		if err != nil {
			return nil, err
		}
		if !strings.HasSuffix(fields[1], "%") {
			return nil, fmt.Errorf("gradient stop position %q must end in %%", fields[1])
		}
		pos, err := strconv.ParseFloat(strings.TrimSuffix(fields[1], "%"), 64)
		if err != nil {
			return nil, fmt.Errorf("parse gradient stop position: %w", err)
		}
		if pos < 0 || pos > 100 {
			return nil, fmt.Errorf("gradient stop position %v out of range", pos)
		}
		stops = append(stops, Stop{Pos: pos / 100, C: c})
	}

	sort.SliceStable(stops, func(i, j int) bool { return stops[i].Pos < stops[j].Pos })
	return Gradient{AngleDeg: angle, Stops: stops}, nil
}

func parseHexColor(s string) (color.NRGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.NRGBA{}, fmt.Errorf("color %q must be #RRGGBB", s)
	}
	val, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return color.NRGBA{
		R: uint8(val >> 16),
		G: uint8(val >> 8),
		B: uint8(val),
		A: 255,
	}, nil
}
