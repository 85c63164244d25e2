package ui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
)

// halfBlock draws img into at most cols x rows terminal cells. Each cell is
// an upper half block whose foreground is the top pixel and background the
// bottom one, so a cell carries two vertical pixels.
func halfBlock(img image.Image, cols, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	fit := imaging.Fit(img, cols, rows*2, imaging.Box)
	b := fit.Bounds()

	lines := make([]string, 0, (b.Dy()+1)/2)
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		var line strings.Builder
		for x := b.Min.X; x < b.Max.X; x++ {
			cell := lipgloss.NewStyle().Foreground(hexColor(fit.At(x, y)))
			if y+1 < b.Max.Y {
				cell = cell.Background(hexColor(fit.At(x, y+1)))
			}
			line.WriteString(cell.Render("▀"))
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func hexColor(c color.Color) lipgloss.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B))
}
