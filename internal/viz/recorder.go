package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"

	"github.com/charmbracelet/lipgloss"
)

const (
	cellW, cellH = 8, 16
	// gifDelay is in hundredths of a second.
	gifDelay = 2
)

var ErrNoFrames = errors.New("viz: no frames recorded")

// Recorder rasterises canvas frames for a GIF, keeping at most limit of the
// most recent ones.
type Recorder struct {
	frames []*image.Paletted
	limit  int
}

func NewRecorder(limit int) *Recorder {
	return &Recorder{limit: max(limit, 1)}
}

func (r *Recorder) Len() int { return len(r.frames) }

// Capture draws every lit braille dot of c as a block of pixels in its cell
// colour. Label cells become a filled square.
func (r *Recorder) Capture(c *Canvas) {
	palette := color.Palette{color.Black, color.White}
	index := map[lipgloss.Color]uint8{"": 1}
	colorIndex := func(col lipgloss.Color) uint8 {
		if i, ok := index[col]; ok {
			return i
		}
		if len(palette) == 256 {
			return 1
		}
		rgb := parseHex(string(col))
		palette = append(palette, color.RGBA{R: uint8(rgb[0]), G: uint8(rgb[1]), B: uint8(rgb[2]), A: 0xff})
		index[col] = uint8(len(palette) - 1)
		return index[col]
	}

	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH), nil)
	dotW, dotH := cellW/2, cellH/4
	fill := func(x0, y0, w, h int, ci uint8) {
		for py := y0; py < y0+h; py++ {
			for px := x0; px < x0+w; px++ {
				img.SetColorIndex(px, py, ci)
			}
		}
	}

	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			cell := c.Grid[row][col]
			if cell == blank {
				continue
			}
			ci := colorIndex(c.colors[row][col])
			baseX, baseY := col*cellW, row*cellH
			if cell < blank {
				fill(baseX+dotW/2, baseY+dotH, cellW-dotW, cellH-2*dotH, ci)
				continue
			}
			pattern := int(cell - blank)
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						fill(baseX+dx*dotW, baseY+dy*dotH, dotW, dotH, ci)
					}
				}
			}
		}
	}
	img.Palette = palette

	r.frames = append(r.frames, img)
	if len(r.frames) > r.limit {
		r.frames = r.frames[1:]
	}
}

// Save encodes the recorded frames as a looping GIF at path.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return ErrNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, gifDelay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
