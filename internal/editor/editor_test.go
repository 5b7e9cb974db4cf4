package editor

import (
	"errors"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"pixedit/internal/filter"
	pximage "pixedit/internal/image"
	"pixedit/pkg/colorutil"
)

func writeImage(t *testing.T, buf *pximage.Buffer, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := pximage.Save(buf, path, pximage.SaveOptions{}); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func pattern(w, h int) *pximage.Buffer {
	b := pximage.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Set(x, y, color.RGBA{R: uint8(x * 9), G: uint8(y * 11), B: uint8(x + y*2), A: 255})
		}
	}
	return b
}

func openEditor(t *testing.T, buf *pximage.Buffer) *Editor {
	t.Helper()
	e := New(DefaultOptions())
	if err := e.Open(writeImage(t, buf, "src.png")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return e
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("got %s (%v), want %s", got, err, kind)
	}
}

func TestGrayscaleThenUndo(t *testing.T) {
	src := pximage.NewSolid(100, 100, colorutil.Red)
	e := openEditor(t, src)

	if err := e.ApplyFilter(filter.Grayscale); err != nil {
		t.Fatalf("ApplyFilter: %v", err)
	}
	want := colorutil.Luma(255, 0, 0)
	gray := e.Buffer()
	for i := 0; i < len(gray.Pix); i += pximage.Channels {
		if gray.Pix[i] != want || gray.Pix[i+1] != want || gray.Pix[i+2] != want {
			t.Fatalf("pixel %d = %v, want gray %d", i/3, gray.Pix[i:i+3], want)
		}
	}

	if err := e.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if !e.Buffer().Equal(src) {
		t.Error("undo did not restore solid red")
	}
}

func TestOpenMissingFile(t *testing.T) {
	e := New(DefaultOptions())
	err := e.Open(filepath.Join(t.TempDir(), "missing.png"))
	wantKind(t, err, KindDecode)
	if !errors.Is(err, ErrDecode) {
		t.Error("error should match ErrDecode")
	}
	if e.HasImage() || e.HistoryLen() != 0 {
		t.Error("failed open changed state")
	}

	src := pattern(5, 5)
	e = openEditor(t, src)
	before := e.HistoryLen()
	wantKind(t, e.Open("/nonexistent/dir/x.png"), KindDecode)
	if !e.Buffer().Equal(src) {
		t.Error("failed open replaced the buffer")
	}
	if e.HistoryLen() != before {
		t.Error("failed open pushed history")
	}
}

func TestUndoEmptyHistory(t *testing.T) {
	e := New(DefaultOptions())
	err := e.Undo()
	wantKind(t, err, KindEmptyHistory)
	if !errors.Is(err, ErrEmptyHistory) {
		t.Error("error should match ErrEmptyHistory")
	}

	e = openEditor(t, pattern(4, 4))
	if err := e.Undo(); err != nil { // back to no image
		t.Fatalf("Undo: %v", err)
	}
	if e.HasImage() {
		t.Error("undoing the first open should leave no image")
	}
	wantKind(t, e.Undo(), KindEmptyHistory)
	if e.HasImage() {
		t.Error("failed undo changed state")
	}
}

func TestUndoRestoresEachOperation(t *testing.T) {
	ops := []struct {
		name string
		run  func(e *Editor) error
	}{
		{"grayscale", func(e *Editor) error { return e.ApplyFilter(filter.Grayscale) }},
		{"blur", func(e *Editor) error { return e.ApplyFilter(filter.Blur) }},
		{"sharpen", func(e *Editor) error { return e.ApplyFilter(filter.Sharpen) }},
		{"invert", func(e *Editor) error { return e.ApplyFilter(filter.Invert) }},
		{"mirror", func(e *Editor) error { return e.ApplyFilter(filter.Mirror) }},
		{"brightness", func(e *Editor) error { return e.SetBrightness(1.5) }},
		{"saturation", func(e *Editor) error { return e.SetSaturation(0.2) }},
		{"scale", func(e *Editor) error { return e.SetScale(0.5) }},
		{"rgb", func(e *Editor) error { return e.SetChannelOffsets(20, -20, 5) }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			src := pattern(12, 8)
			e := openEditor(t, src)
			e.ApplyFilter(filter.Invert) // some prior history
			before := e.Buffer()
			depth := e.HistoryLen()

			if err := op.run(e); err != nil {
				t.Fatalf("%s: %v", op.name, err)
			}
			if e.HistoryLen() != depth+1 {
				t.Errorf("history = %d, want %d", e.HistoryLen(), depth+1)
			}
			if err := e.Undo(); err != nil {
				t.Fatalf("Undo: %v", err)
			}
			if !e.Buffer().Equal(before) {
				t.Error("undo did not restore the pre-operation buffer")
			}
		})
	}
}

func TestIdentityDisplay(t *testing.T) {
	src := pattern(10, 7)
	e := openEditor(t, src)
	if err := e.SetBrightness(1.0); err != nil {
		t.Fatal(err)
	}
	if err := e.SetSaturation(1.0); err != nil {
		t.Fatal(err)
	}
	if err := e.SetChannelOffsets(0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if !e.Display().Equal(e.Buffer()) {
		t.Error("identity adjustments changed the display")
	}
}

func TestAdjustmentsDoNotTouchStoredBuffer(t *testing.T) {
	src := pattern(6, 6)
	e := openEditor(t, src)
	e.SetBrightness(1.8)
	e.SetSaturation(0.3)
	e.SetChannelOffsets(40, 0, -40)
	e.SetScale(2)
	if !e.Buffer().Equal(src) {
		t.Error("adjustments modified the stored buffer")
	}
	if d := e.Display(); d.Width != 12 || d.Height != 12 {
		t.Errorf("display = %s, want 12x12", d)
	}
}

func TestChannelOffsetsOutOfRange(t *testing.T) {
	e := openEditor(t, pattern(8, 8))
	if err := e.SetChannelOffsets(300, 0, 0); err != nil {
		t.Fatalf("SetChannelOffsets: %v", err)
	}
	d := e.Display()
	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			if d.At(x, y).R != 255 {
				t.Fatalf("(%d,%d) red = %d, want 255", x, y, d.At(x, y).R)
			}
		}
	}
}

func TestInvalidParameters(t *testing.T) {
	e := openEditor(t, pattern(4, 4))
	depth := e.HistoryLen()
	params := e.Params()

	wantKind(t, e.SetBrightness(-0.1), KindInvalidParameter)
	wantKind(t, e.SetSaturation(math.NaN()), KindInvalidParameter)
	wantKind(t, e.SetScale(0), KindInvalidParameter)
	wantKind(t, e.SetScale(-2), KindInvalidParameter)

	if e.HistoryLen() != depth {
		t.Error("rejected parameters pushed history")
	}
	if e.Params() != params {
		t.Error("rejected parameters changed state")
	}
}

func TestNoImageLoaded(t *testing.T) {
	e := New(DefaultOptions())

	err := e.ApplyFilter(filter.Blur)
	wantKind(t, err, KindNoImage)
	if !errors.Is(err, ErrNoImage) {
		t.Error("error should match ErrNoImage")
	}
	wantKind(t, e.Save(filepath.Join(t.TempDir(), "out.png")), KindNoImage)
	if e.HistoryLen() != 0 {
		t.Error("failed operations pushed history")
	}

	// Setters only store parameters until an image arrives.
	if err := e.SetBrightness(2); err != nil {
		t.Fatalf("SetBrightness: %v", err)
	}
	if e.HistoryLen() != 0 || e.Params().Brightness != 2 {
		t.Error("setter without image should store the parameter only")
	}
}

func TestSave(t *testing.T) {
	src := pximage.NewSolid(6, 4, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	e := openEditor(t, src)
	e.SetBrightness(2)

	out := filepath.Join(t.TempDir(), "out.png")
	if err := e.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, err := pximage.Load(out)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c := saved.At(0, 0); c.R != 200 {
		t.Errorf("saved pixel = %v, want adjusted value 200", c)
	}

	err = e.Save(filepath.Join(t.TempDir(), "out.webp"))
	wantKind(t, err, KindEncode)
	if !errors.Is(err, ErrEncode) || !errors.Is(err, pximage.ErrUnsupportedFormat) {
		t.Errorf("error %v should match ErrEncode and the cause", err)
	}
}

func TestOverlay(t *testing.T) {
	e := openEditor(t, pximage.NewSolid(8, 8, color.RGBA{R: 100, G: 100, B: 100, A: 255}))
	over := writeImage(t, pximage.NewSolid(4, 4, color.RGBA{R: 60, G: 60, B: 60, A: 255}), "over.png")
	depth := e.HistoryLen()

	if err := e.AddOverlay(over, 0.5); err != nil {
		t.Fatalf("AddOverlay: %v", err)
	}
	if c := e.Display().At(7, 7); c.R != 130 {
		t.Errorf("display = %v, want 130", c)
	}
	if e.HistoryLen() != depth {
		t.Error("overlay should not push history")
	}

	if err := e.AddOverlay(over, 9); err != nil {
		t.Fatalf("AddOverlay: %v", err)
	}
	if e.Params().Opacity != 1 {
		t.Errorf("opacity = %v, want clamped to 1", e.Params().Opacity)
	}

	wantKind(t, e.AddOverlay(filepath.Join(t.TempDir(), "nope.png"), 0.5), KindDecode)

	if err := e.ClearOverlay(); err != nil {
		t.Fatalf("ClearOverlay: %v", err)
	}
	if !e.Display().Equal(e.Buffer()) {
		t.Error("clearing the overlay should restore the identity display")
	}
}

func TestReset(t *testing.T) {
	e := openEditor(t, pattern(5, 5))
	e.SetBrightness(0.2)
	e.SetChannelOffsets(1, 2, 3)
	depth := e.HistoryLen()

	if err := e.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !e.Params().IsIdentity() {
		t.Error("params should be identity after Reset")
	}
	if e.HistoryLen() != depth {
		t.Error("Reset should not touch history")
	}
}

func TestExtractPalette(t *testing.T) {
	want := color.RGBA{R: 12, G: 200, B: 99, A: 255}
	e := openEditor(t, pximage.NewSolid(30, 30, want))

	p, err := e.ExtractPalette(5)
	if err != nil {
		t.Fatalf("ExtractPalette: %v", err)
	}
	if len(p) != 5 {
		t.Fatalf("len = %d, want 5", len(p))
	}
	for i, c := range p {
		if math.Abs(float64(c.R)-12) > 1 || math.Abs(float64(c.G)-200) > 1 || math.Abs(float64(c.B)-99) > 1 {
			t.Errorf("color %d = %v, want %v", i, c, want)
		}
	}

	_, err = e.ExtractPalette(0)
	wantKind(t, err, KindInvalidParameter)
}

func TestExtractPaletteNoImage(t *testing.T) {
	e := New(DefaultOptions())
	_, err := e.ExtractPalette(5)
	wantKind(t, err, KindInvalidImage)
	if !errors.Is(err, ErrInvalidImage) {
		t.Error("error should match ErrInvalidImage")
	}
}

func TestEvents(t *testing.T) {
	e := New(DefaultOptions())

	var refreshes []*pximage.Buffer
	var loaded, undos int
	var errs []*Error
	e.On(EventRefresh, func(data interface{}) { refreshes = append(refreshes, data.(*pximage.Buffer)) })
	e.On(EventImageLoaded, func(interface{}) { loaded++ })
	e.On(EventUndo, func(interface{}) { undos++ })
	e.On(EventError, func(data interface{}) { errs = append(errs, data.(*Error)) })

	src := pattern(6, 3)
	if err := e.Open(writeImage(t, src, "a.png")); err != nil {
		t.Fatal(err)
	}
	e.ApplyFilter(filter.Mirror)
	e.Undo()
	e.Undo()
	e.Undo() // fails

	if loaded != 1 {
		t.Errorf("loaded events = %d, want 1", loaded)
	}
	if undos != 2 {
		t.Errorf("undo events = %d, want 2", undos)
	}
	if len(refreshes) != 4 {
		t.Fatalf("refresh events = %d, want 4", len(refreshes))
	}
	if !refreshes[0].Equal(src) {
		t.Error("first refresh should carry the opened image")
	}
	if len(errs) != 1 || errs[0].Kind != KindEmptyHistory {
		t.Errorf("error events = %v, want one EmptyHistory", errs)
	}
}

func TestHistoryLimit(t *testing.T) {
	opts := DefaultOptions()
	opts.HistoryLimit = 2
	e := New(opts)
	if err := e.Open(writeImage(t, pattern(4, 4), "a.png")); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		e.ApplyFilter(filter.Invert)
	}
	if e.HistoryLen() != 2 {
		t.Errorf("history = %d, want 2", e.HistoryLen())
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindDecode, Op: "open", Path: "a.png", Err: errors.New("boom")}
	want := `open: failed to load image "a.png": boom`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf(plain error) should be 0")
	}
}
