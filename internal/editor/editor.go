// Package editor provides the image editor orchestrator: it owns the stored
// buffer, the adjustment parameters and the undo history, and exposes the
// operations a UI layer drives.
package editor

import (
	"log"

	"pixedit/internal/adjust"
	"pixedit/internal/filter"
	"pixedit/internal/history"
	pximage "pixedit/internal/image"
	"pixedit/internal/palette"
)

// Options configures a new Editor.
type Options struct {
	// HistoryLimit caps the undo stack; 0 means unbounded.
	HistoryLimit int

	// Overlay defaults
	OverlayOpacity float64
	OverlayMode    pximage.BlendMode

	PaletteMethod palette.Method
	Save          pximage.SaveOptions

	// Verbose logs every operation with the standard logger.
	Verbose bool
}

// DefaultOptions returns the editor defaults.
func DefaultOptions() Options {
	return Options{
		OverlayOpacity: adjust.DefaultOpacity,
		OverlayMode:    pximage.BlendAdd,
		PaletteMethod:  palette.KMeansPP,
		Save:           pximage.SaveOptions{JPEGQuality: pximage.DefaultJPEGQuality},
	}
}

// Editor holds one image and its editing state. Every operation runs to
// completion on the calling goroutine. An Editor is not safe for concurrent
// use.
//
// History policy: each logical action pushes exactly one snapshot of the
// stored buffer before changing anything. Adjustment setters push the
// (unchanged) buffer so undo counts line up with user actions, but undo
// restores only the buffer, never the adjustment parameters.
type Editor struct {
	opts    Options
	buf     *pximage.Buffer
	display *pximage.Buffer
	params  adjust.Params
	history *history.Stack
	path    string

	listeners map[EventType][]EventListener
}

// New creates an editor with no image loaded.
func New(opts Options) *Editor {
	params := adjust.DefaultParams()
	params.Opacity = adjust.ClampOpacity(opts.OverlayOpacity)
	params.OverlayMode = opts.OverlayMode
	return &Editor{
		opts:      opts,
		buf:       &pximage.Buffer{},
		display:   &pximage.Buffer{},
		params:    params,
		history:   history.New(opts.HistoryLimit),
		listeners: make(map[EventType][]EventListener),
	}
}

// Open loads the image at path and makes it the current buffer. On failure
// the editor state is unchanged.
func (e *Editor) Open(path string) error {
	buf, err := pximage.Load(path)
	if err != nil {
		return e.fail(&Error{Kind: KindDecode, Op: "open", Path: path, Err: err})
	}
	display, err := adjust.Render(buf, e.params)
	if err != nil {
		return e.fail(&Error{Kind: KindInvalidImage, Op: "open", Path: path, Err: err})
	}

	e.history.Push(e.buf)
	e.buf = buf
	e.display = display
	e.path = path
	e.logf("opened %s (%s)", path, buf)

	e.emit(EventImageLoaded, buf.Clone())
	e.refresh()
	return nil
}

// Save writes the rendered image, adjustments included, to path.
func (e *Editor) Save(path string) error {
	if e.buf.Empty() {
		return e.fail(&Error{Kind: KindNoImage, Op: "save", Path: path})
	}
	if err := pximage.Save(e.display, path, e.opts.Save); err != nil {
		return e.fail(&Error{Kind: KindEncode, Op: "save", Path: path, Err: err})
	}
	e.logf("saved %s (%s)", path, e.display)
	e.emit(EventSaved, path)
	return nil
}

// ApplyFilter applies a destructive filter to the stored buffer.
func (e *Editor) ApplyFilter(kind filter.Kind) error {
	op := "filter " + kind.String()
	if e.buf.Empty() {
		return e.fail(&Error{Kind: KindNoImage, Op: op})
	}
	out, err := filter.Apply(kind, e.buf)
	if err != nil {
		return e.fail(&Error{Kind: KindInvalidParameter, Op: op, Err: err})
	}
	return e.commit(op, out, e.params)
}

// SetBrightness sets the brightness multiplier (1 = unchanged).
func (e *Editor) SetBrightness(factor float64) error {
	if err := adjust.ValidateFactor("brightness", factor); err != nil {
		return e.fail(&Error{Kind: KindInvalidParameter, Op: "brightness", Err: err})
	}
	p := e.params
	p.Brightness = factor
	return e.commit("brightness", e.buf, p)
}

// SetSaturation sets the saturation multiplier (1 = unchanged).
func (e *Editor) SetSaturation(factor float64) error {
	if err := adjust.ValidateFactor("saturation", factor); err != nil {
		return e.fail(&Error{Kind: KindInvalidParameter, Op: "saturation", Err: err})
	}
	p := e.params
	p.Saturation = factor
	return e.commit("saturation", e.buf, p)
}

// SetScale sets the output scale factor (1 = unchanged).
func (e *Editor) SetScale(factor float64) error {
	if err := adjust.ValidateScale(factor); err != nil {
		return e.fail(&Error{Kind: KindInvalidParameter, Op: "scale", Err: err})
	}
	p := e.params
	p.Scale = factor
	return e.commit("scale", e.buf, p)
}

// SetChannelOffsets sets the red, green and blue offsets. Values outside
// [-255, 255] are accepted; rendering clamps each sample to [0, 255].
func (e *Editor) SetChannelOffsets(r, g, b int) error {
	p := e.params
	p.Red, p.Green, p.Blue = r, g, b
	return e.commit("rgb", e.buf, p)
}

// AddOverlay loads the image at path and composites it over the current
// image with the given opacity, clamped to [0, 1]. Overlays are adjustments
// and do not push history.
func (e *Editor) AddOverlay(path string, opacity float64) error {
	over, err := pximage.Load(path)
	if err != nil {
		return e.fail(&Error{Kind: KindDecode, Op: "overlay", Path: path, Err: err})
	}
	p := e.params
	p.Overlay = over
	p.Opacity = adjust.ClampOpacity(opacity)

	display, err := adjust.Render(e.buf, p)
	if err != nil {
		return e.fail(&Error{Kind: KindInvalidImage, Op: "overlay", Path: path, Err: err})
	}
	e.params = p
	e.display = display
	e.logf("overlay %s at %.2f", path, p.Opacity)
	e.refresh()
	return nil
}

// ClearOverlay removes the overlay image.
func (e *Editor) ClearOverlay() error {
	p := e.params
	p.Overlay = nil
	return e.rerender("clear overlay", p)
}

// Reset restores default adjustment parameters and drops the overlay. The
// stored buffer and history are untouched.
func (e *Editor) Reset() error {
	p := adjust.DefaultParams()
	p.Opacity = adjust.ClampOpacity(e.opts.OverlayOpacity)
	p.OverlayMode = e.opts.OverlayMode
	return e.rerender("reset", p)
}

// Undo restores the buffer as it was before the most recent mutating
// operation.
func (e *Editor) Undo() error {
	snapshot, ok := e.history.Peek()
	if !ok {
		return e.fail(&Error{Kind: KindEmptyHistory, Op: "undo", Err: history.ErrEmpty})
	}
	display, err := adjust.Render(snapshot, e.params)
	if err != nil {
		return e.fail(&Error{Kind: KindInvalidImage, Op: "undo", Err: err})
	}
	if _, err := e.history.Pop(); err != nil {
		return e.fail(&Error{Kind: KindEmptyHistory, Op: "undo", Err: err})
	}

	e.buf = snapshot
	e.display = display
	e.logf("undo (%d left)", e.history.Len())
	e.emit(EventUndo, e.history.Len())
	e.refresh()
	return nil
}

// ExtractPalette returns colorCount representative colors of the stored
// buffer using the configured method.
func (e *Editor) ExtractPalette(colorCount int) (palette.Palette, error) {
	if e.buf.Empty() {
		return nil, e.fail(&Error{Kind: KindInvalidImage, Op: "palette", Err: palette.ErrInvalidImage})
	}
	if colorCount < 1 {
		return nil, e.fail(&Error{Kind: KindInvalidParameter, Op: "palette", Err: palette.ErrInvalidCount})
	}
	p, err := palette.ExtractWith(e.buf.Clone(), colorCount, e.opts.PaletteMethod)
	if err != nil {
		return nil, e.fail(&Error{Kind: KindInvalidImage, Op: "palette", Err: err})
	}
	e.logf("palette %s: %v", e.opts.PaletteMethod, p.Hex())
	e.emit(EventPaletteExtracted, p)
	return p, nil
}

// Buffer returns a copy of the stored buffer.
func (e *Editor) Buffer() *pximage.Buffer {
	return e.buf.Clone()
}

// Display returns a copy of the rendered buffer.
func (e *Editor) Display() *pximage.Buffer {
	return e.display.Clone()
}

// Params returns the current adjustment parameters.
func (e *Editor) Params() adjust.Params {
	return e.params
}

// Path returns the path of the last opened image.
func (e *Editor) Path() string {
	return e.path
}

// HasImage reports whether an image is loaded.
func (e *Editor) HasImage() bool {
	return !e.buf.Empty()
}

// HistoryLen returns the number of undo steps available.
func (e *Editor) HistoryLen() int {
	return e.history.Len()
}

// CanUndo reports whether Undo would succeed.
func (e *Editor) CanUndo() bool {
	return e.history.Len() > 0
}

// commit renders buf under p and, if that succeeds, records one history
// step and makes buf and p current. With no image loaded only the
// parameters are stored.
func (e *Editor) commit(op string, buf *pximage.Buffer, p adjust.Params) error {
	if e.buf.Empty() {
		e.params = p
		return nil
	}
	display, err := adjust.Render(buf, p)
	if err != nil {
		return e.fail(&Error{Kind: KindInvalidParameter, Op: op, Err: err})
	}

	e.history.Push(e.buf)
	e.buf = buf
	e.params = p
	e.display = display
	e.logf("%s (history %d)", op, e.history.Len())
	e.refresh()
	return nil
}

// rerender applies new parameters without touching history.
func (e *Editor) rerender(op string, p adjust.Params) error {
	display, err := adjust.Render(e.buf, p)
	if err != nil {
		return e.fail(&Error{Kind: KindInvalidParameter, Op: op, Err: err})
	}
	e.params = p
	e.display = display
	if !e.buf.Empty() {
		e.refresh()
	}
	return nil
}

func (e *Editor) refresh() {
	e.emit(EventRefresh, e.display.Clone())
}

func (e *Editor) fail(err *Error) error {
	e.logf("%v", err)
	e.emit(EventError, err)
	return err
}

func (e *Editor) logf(format string, args ...interface{}) {
	if e.opts.Verbose {
		log.Printf(format, args...)
	}
}
