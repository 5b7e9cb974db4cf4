// Command pixedit applies filters and adjustments to an image, optionally
// extracting a colour palette, and writes the result.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"pixedit/internal/adjust"
	"pixedit/internal/config"
	"pixedit/internal/editor"
	"pixedit/internal/filter"
	pximage "pixedit/internal/image"
	"pixedit/internal/palette"
	"pixedit/internal/version"
	"pixedit/internal/watch"
)

// job is one pass over the input image.
type job struct {
	in, out    string
	filters    []filter.Kind
	brightness float64
	saturation float64
	scale      float64
	rgb        [3]int
	overlay    string
	opacity    float64
	undo       int

	paletteColors int
	paletteSort   bool
	swatch        string
	tileSize      int
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	in := flag.String("in", "", "Input image (PNG, JPEG, BMP or TIFF)")
	out := flag.String("out", "", "Output image; the extension selects the format")
	configPath := flag.String("config", config.DefaultPath(), "Path to TOML config file")
	filters := flag.String("filter", "", "Comma-separated filters: "+kindNames())
	brightness := flag.Float64("brightness", 1, fmt.Sprintf("Brightness factor, usually %g-%g (1 = unchanged)", adjust.MinFactor, adjust.MaxFactor))
	saturation := flag.Float64("saturation", 1, fmt.Sprintf("Saturation factor, usually %g-%g (1 = unchanged)", adjust.MinFactor, adjust.MaxFactor))
	scale := flag.Float64("scale", 1, fmt.Sprintf("Output scale factor, usually %g-%g", adjust.MinScale, adjust.MaxScale))
	rgb := flag.String("rgb", "0,0,0", fmt.Sprintf("Red,green,blue offsets in [%d, %d]", adjust.MinOffset, adjust.MaxOffset))
	overlay := flag.String("overlay", "", "Image to blend over the input")
	opacity := flag.Float64("opacity", 0.5, "Overlay opacity in [0, 1]")
	paletteColors := flag.Int("palette", 0, "Extract this many palette colours (0 = off)")
	paletteMethod := flag.String("palette-method", "", "Palette method: kmeans++, kmeans or dominant")
	swatch := flag.String("swatch", "", "Write the palette as a swatch image")
	undo := flag.Int("undo", 0, "Undo this many steps before saving")
	watchMode := flag.Bool("watch", false, "Re-run whenever the input file changes")
	verbose := flag.Bool("v", false, "Log every editor operation")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *in == "" {
		fmt.Println("Usage: pixedit -in <image> [-out <image>] [-filter grayscale,blur] [-brightness 1.2] ...")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["opacity"] {
		cfg.Editor.OverlayOpacity = *opacity
	}
	if set["palette-method"] {
		cfg.Palette.Method = *paletteMethod
	}
	if set["palette"] {
		cfg.Palette.Colors = *paletteColors
	}
	if set["v"] {
		cfg.Editor.Verbose = *verbose
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid options: %v\n", err)
		os.Exit(1)
	}

	j := job{
		in:         *in,
		out:        *out,
		brightness: *brightness,
		saturation: *saturation,
		scale:      *scale,
		overlay:    *overlay,
		opacity:    cfg.Editor.OverlayOpacity,
		undo:       *undo,
		swatch:     *swatch,
		tileSize:   cfg.Palette.TileSize,
	}
	if set["palette"] || *swatch != "" {
		j.paletteColors = cfg.Palette.Colors
		j.paletteSort = cfg.Palette.Sort
	}
	if j.filters, err = parseFilters(*filters); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if j.rgb, err = parseRGB(*rgb); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	opts := cfg.EditorOptions()
	if err := run(opts, j); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if !*watchMode {
			os.Exit(1)
		}
	}

	if *watchMode {
		if err := watchLoop(opts, j); err != nil {
			fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
			os.Exit(1)
		}
	}
}

// run opens a fresh editor on j.in and applies the job.
func run(opts editor.Options, j job) error {
	e := editor.New(opts)
	e.On(editor.EventSaved, func(data interface{}) {
		fmt.Printf("Saved %s\n", data)
	})
	return process(e, j)
}

// process drives e through the job's operations in a fixed order.
func process(e *editor.Editor, j job) error {
	if err := e.Open(j.in); err != nil {
		return err
	}
	buf := e.Buffer()
	fmt.Printf("Loaded %s: %dx%d pixels\n", j.in, buf.Width, buf.Height)

	for _, k := range j.filters {
		if err := e.ApplyFilter(k); err != nil {
			return err
		}
	}
	if j.brightness != 1 {
		if err := e.SetBrightness(j.brightness); err != nil {
			return err
		}
	}
	if j.saturation != 1 {
		if err := e.SetSaturation(j.saturation); err != nil {
			return err
		}
	}
	if j.rgb != [3]int{} {
		if err := e.SetChannelOffsets(j.rgb[0], j.rgb[1], j.rgb[2]); err != nil {
			return err
		}
	}
	if j.overlay != "" {
		if err := e.AddOverlay(j.overlay, j.opacity); err != nil {
			return err
		}
	}
	if j.scale != 1 {
		if err := e.SetScale(j.scale); err != nil {
			return err
		}
	}

	for i := 0; i < j.undo; i++ {
		if err := e.Undo(); err != nil {
			if errors.Is(err, editor.ErrEmptyHistory) {
				fmt.Printf("Undo: history exhausted after %d steps\n", i)
				break
			}
			return err
		}
	}

	if j.paletteColors > 0 && e.HasImage() {
		p, err := e.ExtractPalette(j.paletteColors)
		if err != nil {
			return err
		}
		if j.paletteSort {
			palette.SortByBrightness(p)
		}
		fmt.Printf("Palette: %s\n", strings.Join(p.Hex(), " "))
		if j.swatch != "" {
			sw := pximage.FromImage(palette.Swatch(p, j.tileSize))
			if err := pximage.Save(sw, j.swatch, pximage.SaveOptions{}); err != nil {
				return fmt.Errorf("writing swatch %s: %w", j.swatch, err)
			}
			fmt.Printf("Wrote swatch %s\n", j.swatch)
		}
	}

	if j.out != "" {
		return e.Save(j.out)
	}
	return nil
}

// watchLoop re-runs the job each time the input changes. Editor calls stay
// on this goroutine; the watcher only hands over paths.
func watchLoop(opts editor.Options, j job) error {
	w, err := watch.New(j.in, watch.DefaultDelay)
	if err != nil {
		return err
	}
	changes := make(chan string, 1)
	w.OnChange(func(path string) {
		select {
		case changes <- path:
		default:
		}
	})
	w.Start()
	defer w.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	fmt.Printf("Watching %s\n", w.Path())
	for {
		select {
		case <-sigCh:
			fmt.Println("\nShutting down...")
			return nil
		case path := <-changes:
			log.Printf("change detected: %s", path)
			if err := run(opts, j); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
		}
	}
}

func parseFilters(s string) ([]filter.Kind, error) {
	var kinds []filter.Kind
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		k, err := filter.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func parseRGB(s string) ([3]int, error) {
	var rgb [3]int
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return rgb, fmt.Errorf("-rgb wants r,g,b, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return rgb, fmt.Errorf("-rgb: %w", err)
		}
		rgb[i] = v
	}
	return rgb, nil
}

func kindNames() string {
	var names []string
	for _, k := range filter.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}
