// Package gui is the desktop front-end: a single gio window with the file
// list on the left and the preview, thumbnail included, on the right.
package gui

import (
	"image"
	"os"

	"gioui.org/app"
	"gioui.org/font"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/justyntemme/glance/internal/debug"
	"github.com/justyntemme/glance/internal/preview"
)

// Window draws a Session and feeds input back into it.
type Window struct {
	win     *app.Window
	session *Session
	theme   *material.Theme

	list    widget.List
	rows    []widget.Clickable
	rowsDir string
	up      widget.Clickable
	focused bool

	// the uploaded image of the thumbnail on screen
	thumb   *preview.Thumbnail
	thumbOp paint.ImageOp

	changes chan string
}

// NewWindow opens a window of width x height dp showing s.
func NewWindow(s *Session, width, height int) *Window {
	win := new(app.Window)
	win.Option(
		app.Title("Glance"),
		app.Size(unit.Dp(width), unit.Dp(height)),
	)
	w := &Window{
		win:     win,
		session: s,
		theme:   material.NewTheme(),
		changes: make(chan string, 16),
	}
	w.list.Axis = layout.Vertical
	return w
}

// Run drives the event loop until the window is closed.
func (w *Window) Run() error {
	if wt := w.session.deps.Watcher; wt != nil {
		go func() {
			for dir := range wt.Changes() {
				select {
				case w.changes <- dir:
				default:
				}
				w.win.Invalidate()
			}
		}()
	}

	var ops op.Ops
	for {
		switch e := w.win.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			w.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

// Main runs fn on its own goroutine while the main goroutine serves the
// platform window loop, then exits the process with fn's outcome.
func Main(fn func() error) {
	go func() {
		if err := fn(); err != nil {
			debug.Error(debug.UI, err, "window closed")
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

func (w *Window) drainChanges() {
	for {
		select {
		case dir := <-w.changes:
			if w.session.Changed(dir) {
				debug.Log(debug.UI, "reloaded %s after change", dir)
			}
		default:
			return
		}
	}
}

func (w *Window) handleKeys(gtx layout.Context) {
	event.Op(gtx.Ops, w)
	if !w.focused {
		gtx.Execute(key.FocusCmd{Tag: w})
		w.focused = true
	}
	for {
		ev, ok := gtx.Event(
			key.Filter{Focus: w, Name: key.NameUpArrow},
			key.Filter{Focus: w, Name: key.NameDownArrow},
			key.Filter{Focus: w, Name: key.NameReturn},
			key.Filter{Focus: w, Name: key.NameEnter},
			key.Filter{Focus: w, Name: key.NameRightArrow},
			key.Filter{Focus: w, Name: key.NameLeftArrow},
			key.Filter{Focus: w, Name: key.NameDeleteBackward},
			key.Filter{Focus: w, Name: key.NameF5},
		)
		if !ok {
			return
		}
		k, ok := ev.(key.Event)
		if !ok || k.State != key.Press {
			continue
		}
		switch k.Name {
		case key.NameUpArrow:
			w.move(-1)
		case key.NameDownArrow:
			w.move(1)
		case key.NameReturn, key.NameEnter, key.NameRightArrow:
			w.session.Activate()
		case key.NameLeftArrow, key.NameDeleteBackward:
			w.session.Parent()
		case key.NameF5:
			w.session.deps.Resolver.Cache.Clear()
			w.session.Reload()
		}
	}
}

func (w *Window) move(delta int) {
	w.session.Move(delta)
	if i := w.session.Selected(); i >= 0 {
		w.list.ScrollTo(i)
	}
}

func (w *Window) layout(gtx layout.Context) layout.Dimensions {
	w.drainChanges()
	w.handleKeys(gtx)
	if w.up.Clicked(gtx) {
		w.session.Parent()
	}
	w.handleRowClicks(gtx)

	paint.Fill(gtx.Ops, colWhite)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(w.layoutHeader),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{}.Layout(gtx,
				layout.Flexed(0.55, w.layoutList),
				layout.Rigid(w.layoutDivider),
				layout.Flexed(0.45, w.layoutPreview),
			)
		}),
		layout.Rigid(w.layoutStatus),
	)
}

func (w *Window) layoutHeader(gtx layout.Context) layout.Dimensions {
	return layout.Stack{}.Layout(gtx,
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			paint.FillShape(gtx.Ops, colSidebar, clip.Rect{Max: gtx.Constraints.Min}.Op())
			return layout.Dimensions{Size: gtx.Constraints.Min}
		}),
		layout.Stacked(func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min.X = gtx.Constraints.Max.X
			return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
					layout.Rigid(material.Button(w.theme, &w.up, "Up").Layout),
					layout.Rigid(layout.Spacer{Width: unit.Dp(12)}.Layout),
					layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
						lbl := material.Body1(w.theme, w.session.State().Header())
						lbl.Font.Weight = font.Bold
						lbl.MaxLines = 1
						return lbl.Layout(gtx)
					}),
				)
			})
		}),
	)
}

// syncRows keeps one clickable per entry, reset when the folder changes.
func (w *Window) syncRows() {
	st := w.session.State()
	if w.rowsDir != st.Dir || len(w.rows) != st.Len() {
		w.rows = make([]widget.Clickable, st.Len())
		w.rowsDir = st.Dir
	}
}

func (w *Window) handleRowClicks(gtx layout.Context) {
	w.syncRows()
	for i := range w.rows {
		for {
			c, ok := w.rows[i].Update(gtx)
			if !ok {
				break
			}
			gtx.Execute(key.FocusCmd{Tag: w})
			w.session.Select(i)
			if c.NumClicks >= 2 {
				w.session.Activate()
				// the listing may have been replaced
				w.syncRows()
				return
			}
		}
	}
}

func (w *Window) layoutList(gtx layout.Context) layout.Dimensions {
	w.syncRows()
	st := w.session.State()
	if st.Len() == 0 {
		return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			lbl := material.Body1(w.theme, "(empty)")
			lbl.Color = colGray
			return lbl.Layout(gtx)
		})
	}
	return material.List(w.theme, &w.list).Layout(gtx, st.Len(), func(gtx layout.Context, i int) layout.Dimensions {
		return w.layoutRow(gtx, i)
	})
}

func (w *Window) layoutRow(gtx layout.Context, i int) layout.Dimensions {
	st := w.session.State()
	entry, row := st.Entries[i], st.Rows[i]
	selected := i == w.session.Selected()

	return material.Clickable(gtx, &w.rows[i], func(gtx layout.Context) layout.Dimensions {
		return layout.Stack{}.Layout(gtx,
			layout.Expanded(func(gtx layout.Context) layout.Dimensions {
				if selected {
					paint.FillShape(gtx.Ops, colSelected, clip.Rect{Max: gtx.Constraints.Min}.Op())
				}
				return layout.Dimensions{Size: gtx.Constraints.Min}
			}),
			layout.Stacked(func(gtx layout.Context) layout.Dimensions {
				gtx.Constraints.Min.X = gtx.Constraints.Max.X
				return layout.Inset{Top: unit.Dp(4), Bottom: unit.Dp(4), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx,
					func(gtx layout.Context) layout.Dimensions {
						lbl := material.Body2(w.theme, row.Text)
						lbl.Font.Typeface = "monospace"
						lbl.MaxLines = 1
						lbl.Color = colBlack
						if entry.IsDir {
							lbl.Color, lbl.Font.Weight = colDirBlue, font.Bold
						}
						return lbl.Layout(gtx)
					})
			}),
		)
	})
}

func (w *Window) layoutDivider(gtx layout.Context) layout.Dimensions {
	size := image.Pt(gtx.Dp(1), gtx.Constraints.Max.Y)
	paint.FillShape(gtx.Ops, colLightGray, clip.Rect{Max: size}.Op())
	return layout.Dimensions{Size: size}
}

func (w *Window) layoutPreview(gtx layout.Context) layout.Dimensions {
	p := w.session.Preview()
	if p == nil {
		return layout.Dimensions{Size: gtx.Constraints.Min}
	}
	return layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return w.layoutThumbnail(gtx, p)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				lbl := material.Body2(w.theme, p.Text())
				lbl.Font.Typeface = "monospace"
				return lbl.Layout(gtx)
			}),
		)
	})
}

type badger interface {
	Badge() string
}

// layoutThumbnail paints the decoded thumbnail, or the badge caption when
// there is none, inside a frame of the resolver's size.
func (w *Window) layoutThumbnail(gtx layout.Context, p preview.State) layout.Dimensions {
	frame := w.session.deps.Resolver.Frame
	gtx.Constraints.Max.X = min(gtx.Constraints.Max.X, gtx.Dp(unit.Dp(frame.X)))
	gtx.Constraints.Max.Y = min(gtx.Constraints.Max.Y, gtx.Dp(unit.Dp(frame.Y)))
	gtx.Constraints.Min = gtx.Constraints.Max

	info, ok := p.(*preview.FileInfo)
	if ok && info.Thumbnail != nil {
		if w.thumb != info.Thumbnail {
			w.thumb = info.Thumbnail
			w.thumbOp = paint.NewImageOp(info.Thumbnail.Image)
		}
		img := widget.Image{Src: w.thumbOp, Fit: widget.Contain, Position: layout.Center}
		return img.Layout(gtx)
	}

	paint.FillShape(gtx.Ops, colSidebar, clip.Rect{Max: gtx.Constraints.Max}.Op())
	caption := ""
	if b, ok := p.(badger); ok {
		caption = b.Badge()
	}
	return layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		lbl := material.H6(w.theme, caption)
		lbl.Color = colGray
		return lbl.Layout(gtx)
	})
}

func (w *Window) layoutStatus(gtx layout.Context) layout.Dimensions {
	text, failed := w.session.Status()
	return layout.Inset{Top: unit.Dp(4), Bottom: unit.Dp(6), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			lbl := material.Caption(w.theme, text)
			lbl.Color = colGray
			if failed {
				lbl.Color = colDanger
			}
			lbl.MaxLines = 1
			return lbl.Layout(gtx)
		})
}
