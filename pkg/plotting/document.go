package plotting

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"k8s.io/klog/v2"
)

// Page is a grid of panels with a heading.
type Page struct {
	Heading string
	Panels  []Panel
	// Cols is the number of panels per row, all panels share one row when 0.
	Cols int
}

// Grid returns the rows and columns used to lay out the page.
func (p Page) Grid() (int, int) {
	n := len(p.Panels)
	if n == 0 {
		return 0, 0
	}
	cols := p.Cols
	if cols <= 0 || cols > n {
		cols = n
	}
	return (n + cols - 1) / cols, cols
}

// Document is the ordered set of pages written to one output.
type Document struct {
	Name  string
	Pages []Page
}

// PanelCount sums the panels of every page.
func (d Document) PanelCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Panels)
	}
	return n
}

// Options control the size and encoding of written documents.
type Options struct {
	Width  vg.Length
	Height vg.Length
	Format string // "pdf" or "png"
}

const headingHeight = vg.Length(24)

// Write renders the document into dir and returns the paths of the created
// files: one multi-page file for pdf, one file per page for png.
func Write(doc Document, dir string, opts Options) ([]string, error) {
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("document %s has no pages", doc.Name)
	}
	switch strings.ToLower(opts.Format) {
	case "pdf", "":
		path := filepath.Join(dir, doc.Name+".pdf")
		return []string{path}, writePDF(doc, path, opts)
	case "png":
		return writePNG(doc, dir, opts)
	default:
		return nil, fmt.Errorf("unsupported format %q", opts.Format)
	}
}

func writePDF(doc Document, path string, opts Options) error {
	pdf := vgpdf.New(opts.Width, opts.Height)
	for i, page := range doc.Pages {
		if i != 0 {
			pdf.NextPage()
		}
		if err := drawPage(draw.New(pdf), page); err != nil {
			return fmt.Errorf("%s page %d: %w", doc.Name, i+1, err)
		}
	}
	return save(path, pdf)
}

func writePNG(doc Document, dir string, opts Options) ([]string, error) {
	var paths []string
	for i, page := range doc.Pages {
		img := vgimg.New(opts.Width, opts.Height)
		dc := draw.New(img)
		dc.SetColor(color.White)
		dc.Fill(dc.Rectangle.Path())
		if err := drawPage(dc, page); err != nil {
			return paths, fmt.Errorf("%s page %d: %w", doc.Name, i+1, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s-%02d.png", doc.Name, i+1))
		if err := save(path, vgimg.PngCanvas{Canvas: img}); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func save(path string, w io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	klog.V(1).Infof("Wrote %s", path)
	return f.Close()
}

// drawPage draws the heading and tiles the panels below it.
func drawPage(dc draw.Canvas, page Page) error {
	if page.Heading != "" {
		sty := text.Style{
			Color:   color.Black,
			Font:    font.From(plot.DefaultFont, vg.Points(16)),
			XAlign:  draw.XCenter,
			YAlign:  draw.YTop,
			Handler: plot.DefaultTextHandler,
		}
		dc.FillText(sty, vg.Point{X: dc.Center().X, Y: dc.Max.Y - vg.Points(4)}, page.Heading)
		dc = draw.Crop(dc, 0, 0, 0, -headingHeight)
	}
	plots, err := pagePlots(page)
	if err != nil || len(plots) == 0 {
		return err
	}
	canvases := plot.Align(plots, tiles(len(plots), len(plots[0])), dc)
	for i, row := range plots {
		for j, p := range row {
			if p != nil {
				p.Draw(canvases[i][j])
			}
		}
	}
	return nil
}

// pagePlots lays the plots of every panel on one grid. Each panel takes as
// many rows as the deepest panel of the page, unused cells stay nil.
func pagePlots(page Page) ([][]*plot.Plot, error) {
	rows, cols := page.Grid()
	if rows == 0 {
		return nil, nil
	}
	stacks := make([][]*plot.Plot, len(page.Panels))
	depth := 1
	for i, panel := range page.Panels {
		ps, err := panel.Plots()
		if err != nil {
			return nil, fmt.Errorf("panel %q: %w", panel.Title(), err)
		}
		stacks[i] = ps
		if len(ps) > depth {
			depth = len(ps)
		}
	}

	plots := make([][]*plot.Plot, rows*depth)
	for i := range plots {
		plots[i] = make([]*plot.Plot, cols)
	}
	for i, ps := range stacks {
		for k, p := range ps {
			plots[(i/cols)*depth+k][i%cols] = p
		}
	}
	return plots, nil
}
