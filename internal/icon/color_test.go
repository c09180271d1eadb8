package icon

import (
	"image/color"
	"testing"
)

func TestParsePaintSolid(t *testing.T) {
	paint, err := ParsePaint("#FF8800")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	solid, ok := paint.(Solid)
	if !ok {
		t.Fatalf("expected Solid, got %T", paint)
	}
	want := color.NRGBA{R: 0xFF, G: 0x88, B: 0x00, A: 255}
	if solid.C != want {
		t.Fatalf("wrong color: %+v", solid.C)
	}
}

func TestParsePaintGradient(t *testing.T) {
	paint, err := ParsePaint("linear-gradient(90deg, #FF0000 0%, #0000FF 100%)")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	grad, ok := paint.(Gradient)
	if !ok {
		t.Fatalf("expected Gradient, got %T", paint)
	}
	if grad.AngleDeg != 90 || len(grad.Stops) != 2 {
		t.Fatalf("unexpected gradient: %+v", grad)
	}
}

func TestParsePaintRejectsGarbage(t *testing.T) {
	for _, spec := range []string{"", "red", "#12345", "linear-gradient(90deg)", "linear-gradient(90, #FF0000 0%, #0000FF 100%)"} {
		if _, err := ParsePaint(spec); err == nil {
			t.Fatalf("expected error for %q", spec)
		}
	}
}

func TestGradientStopColors(t *testing.T) {
	// 90deg runs left to right across the canvas.
	grad := Gradient{AngleDeg: 90, Stops: []Stop{
		{Pos: 0, C: color.NRGBA{R: 255, A: 255}},
		{Pos: 1, C: color.NRGBA{B: 255, A: 255}},
	}}

	left := grad.colorAt(0, Size/2, Size)
	if left.R < 250 || left.B > 5 {
		t.Fatalf("left edge should be red: %+v", left)
	}

	right := grad.colorAt(Size-1, Size/2, Size)
	if right.B < 250 || right.R > 5 {
		t.Fatalf("right edge should be blue: %+v", right)
	}

	mid := grad.colorAt(Size/2, Size/2, Size)
	if mid.R < 100 || mid.R > 155 || mid.B < 100 || mid.B > 155 {
		t.Fatalf("midpoint should blend: %+v", mid)
	}
}
