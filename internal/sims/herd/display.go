package herd

import (
	"image/color"
	"math"

	"herding/internal/core"
)

const (
	displayEmpty  = 0
	displayFree   = 1
	displayGroup0 = 2
	paletteSize   = 64
)

// Portrayal describes how a single animal is drawn.
type Portrayal struct {
	Shape     string
	W, H      float64
	Filled    bool
	Color     string
	Layer     int
	Text      string
	TextColor string
}

// Portray maps an animal to its display descriptor. Grouped animals carry
// their group id as a label.
func Portray(a Animal) Portrayal {
	p := Portrayal{
		Shape:  "rect",
		W:      0.5,
		H:      0.5,
		Filled: true,
		Color:  "blue",
		Layer:  1,
	}
	if !a.Free() {
		p.Text = a.group.String()
		p.TextColor = "black"
	}
	return p
}

// Labels returns the group id of every grouped animal anchored to its cell.
func (m *Model) Labels() []core.Label {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Label
	for _, a := range m.animals {
		if p := Portray(*a); p.Text != "" {
			out = append(out, core.Label{At: a.pos, Text: p.Text})
		}
	}
	return out
}

var herdPalette = buildHerdPalette()

// Palette exposes the colors indexed by Cells values.
func (m *Model) Palette() []color.RGBA { return herdPalette }

func buildHerdPalette() []color.RGBA {
	palette := make([]color.RGBA, paletteSize)
	palette[displayEmpty] = color.RGBA{R: 245, G: 245, B: 240, A: 255}
	palette[displayFree] = color.RGBA{R: 30, G: 60, B: 220, A: 255}
	slots := paletteSize - displayGroup0
	for i := 0; i < slots; i++ {
		// golden-angle hue steps keep consecutive ids apart
		hue := math.Mod(float64(i)*137.508, 360)
		palette[displayGroup0+i] = hsv(hue, 0.65, 0.85)
	}
	return palette
}

func displayValue(a *Animal) uint8 {
	g, ok := a.group.Group()
	if !ok {
		return displayFree
	}
	return uint8(displayGroup0 + (int(g)-1)%(paletteSize-displayGroup0))
}

func (m *Model) rebuildDisplay() {
	for i := range m.display {
		m.display[i] = displayEmpty
	}
	for _, a := range m.animals {
		m.display[m.grid.Index(a.pos)] = displayValue(a)
	}
}

func hsv(h, s, v float64) color.RGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	mc := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.RGBA{
		R: uint8((r+mc)*255 + 0.5),
		G: uint8((g+mc)*255 + 0.5),
		B: uint8((b+mc)*255 + 0.5),
		A: 255,
	}
}
