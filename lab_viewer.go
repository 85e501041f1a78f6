//go:build !headless

// lab_viewer.go - Ebiten window for browsing and auditioning sounds

package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

const (
	VIEWER_WIDTH       = 800
	VIEWER_HEIGHT      = 480
	VIEWER_LIST_WIDTH  = 280
	VIEWER_LINE_HEIGHT = 16
	VIEWER_MARGIN      = 8
)

var (
	viewerBackground = color.RGBA{24, 22, 20, 255}
	viewerText       = color.RGBA{200, 190, 175, 255}
	viewerDim        = color.RGBA{120, 112, 100, 255}
	viewerHighlight  = color.RGBA{230, 160, 80, 255}
	viewerTrace      = color.RGBA{120, 210, 140, 255}
)

type labViewer struct {
	view *LabView
}

// RunViewer opens the lab window and blocks until it is closed.
func RunViewer(view *LabView) error {
	ebiten.SetWindowSize(VIEWER_WIDTH, VIEWER_HEIGHT)
	ebiten.SetWindowTitle("Warm Terminal Sound Lab")
	ebiten.SetWindowResizable(true)
	ebiten.SetVsyncEnabled(true)
	if err := ebiten.RunGame(&labViewer{view: view}); err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}

func (g *labViewer) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.view.Move(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.view.Move(1)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace), inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.view.Play()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.view.Save()
	case ctrl && inpututil.IsKeyJustPressed(ebiten.KeyV):
		g.view.Paste()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.view.Copy()
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		g.view.Export()
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		g.view.Toggle()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.view.Refresh()
	}
	return nil
}

func (g *labViewer) Draw(screen *ebiten.Image) {
	screen.Fill(viewerBackground)
	face := basicfont.Face7x13

	sounds := g.view.Sounds()
	sel := g.view.SelectedIndex()
	rows := (VIEWER_HEIGHT - 3*VIEWER_MARGIN) / VIEWER_LINE_HEIGHT
	first := max(0, sel-rows/2)
	for i := first; i < len(sounds) && i < first+rows; i++ {
		c := viewerText
		if i == sel {
			c = viewerHighlight
		}
		label := sounds[i].Name
		if sounds[i].Modified {
			label += " *"
		}
		text.Draw(screen, label, face, VIEWER_MARGIN, VIEWER_MARGIN+(i-first+1)*VIEWER_LINE_HEIGHT, c)
	}

	s, ok := g.view.Selected()
	if !ok {
		return
	}
	x0 := VIEWER_LIST_WIDTH
	text.Draw(screen, fmt.Sprintf("%s  [%s, %s, %.0fms]", s.Name, s.Category, s.Type, ParamsDuration(s.Params)*1000),
		face, x0, VIEWER_MARGIN+VIEWER_LINE_HEIGHT, viewerText)
	if s.Description != "" {
		text.Draw(screen, s.Description, face, x0, VIEWER_MARGIN+2*VIEWER_LINE_HEIGHT, viewerDim)
	}

	top := float32(VIEWER_MARGIN + 3*VIEWER_LINE_HEIGHT)
	height := float32(VIEWER_HEIGHT - 5*VIEWER_LINE_HEIGHT)
	width := VIEWER_WIDTH - x0 - VIEWER_MARGIN
	mid := top + height/2
	vector.StrokeLine(screen, float32(x0), mid, float32(x0+width), mid, 1, viewerDim, false)
	for i, col := range ScopeColumns(g.view.Render(), width) {
		x := float32(x0 + i)
		vector.StrokeLine(screen, x, mid-col.Max*height/2, x, mid-col.Min*height/2+1, 1, viewerTrace, false)
	}

	text.Draw(screen, "space play  e export  c copy  ^v paste  ^s save  t toggle  esc quit",
		face, x0, VIEWER_HEIGHT-VIEWER_MARGIN-VIEWER_LINE_HEIGHT, viewerDim)
	text.Draw(screen, g.view.Status(), face, x0, VIEWER_HEIGHT-VIEWER_MARGIN, viewerHighlight)
}

func (g *labViewer) Layout(_, _ int) (int, int) {
	return VIEWER_WIDTH, VIEWER_HEIGHT
}
