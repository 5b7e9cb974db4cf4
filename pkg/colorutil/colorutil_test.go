package colorutil

import "testing"

func TestClampInt(t *testing.T) {
	tests := []struct {
		in   int
		want uint8
	}{
		{-300, 0},
		{-1, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{555, 255},
	}
	for _, tt := range tests {
		if got := ClampInt(tt.in); got != tt.want {
			t.Errorf("ClampInt(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClampFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-0.5, 0},
		{0.4, 0},
		{0.5, 1},
		{127.6, 128},
		{254.6, 255},
		{1e9, 255},
	}
	for _, tt := range tests {
		if got := ClampFloat(tt.in); got != tt.want {
			t.Errorf("ClampFloat(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLuma(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    uint8
	}{
		{"black", 0, 0, 0, 0},
		{"white", 255, 255, 255, 255},
		{"red", 255, 0, 0, 76},
		{"green", 0, 255, 0, 150},
		{"blue", 0, 0, 255, 29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Luma(tt.r, tt.g, tt.b); got != tt.want {
				t.Errorf("Luma(%d,%d,%d) = %d, want %d", tt.r, tt.g, tt.b, got, tt.want)
			}
		})
	}
}

func TestRGBToHSV(t *testing.T) {
	h, s, v := RGBToHSV(255, 0, 0)
	if h != 0 || s != 255 || v != 255 {
		t.Errorf("red: got (%v,%v,%v), want (0,255,255)", h, s, v)
	}

	h, s, v = RGBToHSV(0, 0, 255)
	if h != 120 || s != 255 || v != 255 {
		t.Errorf("blue: got (%v,%v,%v), want (120,255,255)", h, s, v)
	}

	_, s, v = RGBToHSV(128, 128, 128)
	if s != 0 || v != 128 {
		t.Errorf("gray: got s=%v v=%v, want s=0 v=128", s, v)
	}
}
