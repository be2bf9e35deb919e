// Command viewer renders the simulated page in a window: the mouse wheel
// drives the smooth scroller, number keys scroll to layers and the parallax
// layers move as the page scrolls.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/scrollfx/stream"
	"github.com/matt-g-everett/scrollfx/util"
)

const wheelStep = 120

var layerKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

type viewer struct {
	streamer *stream.Streamer
	frame    *stream.Frame
	width    int
	height   int
	bg       color.Color
}

func newViewer(s *stream.Streamer, cfg stream.Config) *viewer {
	v := new(viewer)
	v.streamer = s
	v.width = int(cfg.Page.Width)
	v.height = int(cfg.Page.Height)
	v.bg = colorful.Hcl(260, 0.05, 0.12).Clamped()
	return v
}

func (v *viewer) submit(c stream.Command) {
	if err := v.streamer.Submit(c); err != nil {
		util.Warn("Command %s: %v", c.Op, err)
	}
}

func (v *viewer) Update() error {
	if _, dy := ebiten.Wheel(); dy != 0 {
		v.submit(stream.Command{Op: "wheel", Y: -dy * wheelStep})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		v.submit(stream.Command{Op: "scrollTo", Y: 0, Immediate: true})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		v.submit(stream.Command{Op: "scrollBy", Y: float64(v.height)})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		v.submit(stream.Command{Op: "scrollBy", Y: -float64(v.height)})
	}
	if v.frame != nil {
		for i, key := range layerKeys {
			if i < len(v.frame.Items) && inpututil.IsKeyJustPressed(key) {
				v.submit(stream.Command{Op: "scrollToElement", Selector: "#" + v.frame.Items[i].ID, Immediate: true})
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	v.frame = v.streamer.Step(time.Second / time.Duration(ebiten.TPS()))
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(v.bg)
	if v.frame == nil {
		return
	}

	pg := v.streamer.Page()
	for _, it := range v.frame.Items {
		el := pg.Element(it.ID)
		if el == nil {
			continue
		}
		box := el.Box().Translate(it.X-v.frame.ScrollX, it.Y-v.frame.ScrollY)
		vector.DrawFilledRect(screen,
			float32(box.Left), float32(box.Top), float32(box.Width()), float32(box.Height()),
			it.Colour, false)
		ebitenutil.DebugPrintAt(screen, it.ID, int(box.Left)+4, int(box.Top)+4)
	}

	_, limit := pg.ScrollLimit()
	if limit > 0 {
		h := float32(v.height) * float32(v.height) / float32(limit+float64(v.height))
		y := (float32(v.height) - h) * float32(v.frame.ScrollY/limit)
		vector.DrawFilledRect(screen, float32(v.width-6), y, 4, h, color.RGBA{200, 200, 200, 160}, false)
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nScroll: %.1f -> %.1f\nAnimating: %v",
		ebiten.ActualFPS(), v.frame.ScrollY, v.frame.Target, v.frame.Animating))
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}

func main() {
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	flag.Parse()

	cfg, err := stream.LoadConfig(*configPath)
	if err != nil {
		util.Error("Config: %v", err)
		os.Exit(1)
	}
	util.SetLevel(util.ParseLevel(cfg.LogLevel))

	s, err := stream.NewStreamer(cfg, nil)
	if err != nil {
		util.Error("Streamer: %v", err)
		os.Exit(1)
	}
	defer s.Registry().DestroyAll()

	ebiten.SetWindowSize(int(cfg.Page.Width), int(cfg.Page.Height))
	ebiten.SetWindowTitle("scrollfx viewer")

	if err := ebiten.RunGame(newViewer(s, cfg)); err != nil {
		util.Error("Game loop error: %v", err)
	}
}
