//go:build ebiten

package ui

import (
	"image/color"

	"herding/internal/core"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// minLabelScale is the smallest cell size in pixels that still fits a label.
const minLabelScale = 8

// Overlay draws cell labels and a status line on top of the base simulation.
type Overlay struct {
	sim        core.Sim
	scale      int
	showLabels bool
	showStatus bool
	pixel      *ebiten.Image
}

// NewOverlay constructs a new overlay instance.
func NewOverlay(sim core.Sim, scale int) *Overlay {
	o := &Overlay{sim: sim, scale: scale, showLabels: true, showStatus: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update handles overlay toggles: L for labels, H for the status line.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		o.showLabels = !o.showLabels
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		o.showStatus = !o.showStatus
	}
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}
	if o.showLabels && scale >= minLabelScale {
		if provider, ok := o.sim.(core.LabelProvider); ok {
			face := basicfont.Face7x13
			for _, l := range provider.Labels() {
				x := l.At.X * scale
				y := l.At.Y*scale + scale - 1
				text.Draw(screen, l.Text, face, x, y, color.Black)
			}
		}
	}
	if o.showStatus {
		if provider, ok := o.sim.(core.ParameterProvider); ok {
			o.drawStatus(screen, statusLine(provider.Parameters()))
		}
	}
}

func (o *Overlay) drawStatus(screen *ebiten.Image, line string) {
	if line == "" {
		return
	}
	face := basicfont.Face7x13
	w := len(line)*7 + 8
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w), 18)
	op.ColorScale.ScaleWithColor(color.RGBA{R: 0, G: 0, B: 0, A: 160})
	screen.DrawImage(o.pixel, op)
	text.Draw(screen, line, face, 4, 13, color.White)
}
