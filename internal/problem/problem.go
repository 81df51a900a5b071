// Package problem loads and prepares destroy pattern files.
//
// A pattern file is a LifeHistory RLE. On cells form the pattern to clean
// up, marked cells (state 4) form the catalyst area, and envelope cells
// (state 2) widen the area the evolving pattern may reach.
package problem

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/simeksgol/GoL-destroy/internal/catalog"
	"github.com/simeksgol/GoL-destroy/internal/grid"
	"github.com/simeksgol/GoL-destroy/internal/placement"
	"github.com/simeksgol/GoL-destroy/internal/search"
)

// Input limits.
const (
	MaxFilenameSize = 256
	MaxFileSize     = 65536
	MaxPatternSize  = placement.MaxPatternSize
)

// Problem is a parsed pattern file.
type Problem struct {
	// Source is the path the pattern was read from.
	Source string

	Pattern      *grid.Grid
	CatalystArea *grid.Grid

	// AllowedArea always contains Pattern and CatalystArea.
	AllowedArea *grid.Grid
}

// Load reads the pattern file at path. name.rle is tried before name.
func Load(path string) (*Problem, error) {
	if len(path) > MaxFilenameSize {
		return nil, &InputError{
			Code:    ErrCodeFilenameTooLong,
			Message: fmt.Sprintf("filename too long, max is %d bytes", MaxFilenameSize),
		}
	}

	f, name, err := open(path)
	if err != nil {
		return nil, &InputError{Code: ErrCodeOpenFailed, Message: "failed to open pattern file", Err: err}
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize))
	if err != nil {
		return nil, &InputError{Code: ErrCodeOpenFailed, Message: "failed to read pattern file", Err: err}
	}
	if len(data) >= MaxFileSize {
		return nil, &InputError{
			Code:    ErrCodeFileTooLarge,
			Message: fmt.Sprintf("pattern file too large, max is %d bytes", MaxFileSize-1),
		}
	}

	p, err := Parse(data)
	if err != nil {
		return nil, err
	}
	p.Source = name
	return p, nil
}

func open(path string) (*os.File, string, error) {
	f, err := os.Open(path + ".rle")
	if err == nil {
		return f, path + ".rle", nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, "", err
	}
	f, err = os.Open(path)
	if err != nil {
		return nil, "", err
	}
	return f, path, nil
}

// Parse decodes a pattern file body. Leading lines starting with '#' or 'x'
// are skipped and the top left corner of the pattern lands at
// (-MaxPatternSize/2, -MaxPatternSize/2).
func Parse(data []byte) (*Problem, error) {
	p := &Problem{
		Pattern:      grid.New(),
		CatalystArea: grid.New(),
		AllowedArea:  grid.New(),
	}

	body := string(data[skipHeader(data):])
	corner := -MaxPatternSize / 2
	clipped, err := grid.ParseLifeHistory(body, corner, corner, p.Layers())
	if err != nil {
		return nil, &InputError{Code: ErrCodeIllegalPattern, Message: "illegal pattern file", Err: err}
	}

	p.AllowedArea.Or(p.Pattern)
	p.AllowedArea.Or(p.CatalystArea)

	r := p.AllowedArea.BoundingBox()
	if clipped || r.Width > MaxPatternSize || r.Height > MaxPatternSize {
		return nil, &InputError{
			Code:    ErrCodePatternTooLarge,
			Message: fmt.Sprintf("pattern too large, max is %d by %d cells", MaxPatternSize, MaxPatternSize),
		}
	}
	return p, nil
}

// skipHeader returns the offset of the first byte that is neither part of a
// comment or header line nor a line break.
func skipHeader(data []byte) int {
	skip := false
	for i, c := range data {
		switch {
		case c == '#' || c == 'x':
			skip = true
		case c == '\n' || c == '\r':
			skip = false
		case !skip:
			return i
		}
	}
	return len(data)
}

// Layers returns the problem's grids in LifeHistory layer order.
func (p *Problem) Layers() grid.Layers {
	return grid.Layers{On: p.Pattern, Marked: p.CatalystArea, Envelope: p.AllowedArea}
}

// HasActivePart reports whether the pattern changes within two generations.
// A still life or period-2 oscillator gives the search nothing to react to.
func (p *Problem) HasActivePart() bool {
	gen1, gen2 := grid.New(), grid.New()
	p.Pattern.Evolve(gen1)
	gen1.Evolve(gen2)
	return !p.Pattern.Equal(gen2)
}

// CheckActive returns an InputError unless HasActivePart.
func (p *Problem) CheckActive() error {
	if p.HasActivePart() {
		return nil
	}
	return &InputError{Code: ErrCodeNoActivePart, Message: "pattern has no active part to initiate the destruction"}
}

// Preprocess removes from the catalyst area every cell on or near the
// pattern, so no object can be placed touching it. It returns how many
// catalyst cells were near the pattern and removed.
func (p *Problem) Preprocess() int {
	p.CatalystArea.Subtract(p.Pattern)

	tmp, near := grid.New(), grid.New()
	p.Pattern.Bleed8(tmp)
	tmp.Bleed4(near)

	removed := grid.New()
	removed.And(near, p.CatalystArea)
	p.CatalystArea.Subtract(near)
	return removed.Population()
}

// Task returns the search task for the problem.
func (p *Problem) Task() search.Task {
	return search.Task{
		Problem:      p.Pattern,
		CatalystArea: p.CatalystArea,
		AllowedArea:  p.AllowedArea,
	}
}

// WriteLifeHistory prints every layer of the problem.
func (p *Problem) WriteLifeHistory(w io.Writer) error {
	l := p.Layers()
	return grid.FormatLifeHistory(w, l.Bounds(), l)
}

// ParseObjects decodes the object digit string of the command line.
func ParseObjects(digits string) (catalog.Selection, error) {
	sel, err := catalog.ParseSelection(digits)
	if err != nil {
		return catalog.Selection{}, &InputError{Code: ErrCodeIllegalObject, Message: "illegal object type", Err: err}
	}
	return sel, nil
}
