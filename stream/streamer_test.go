package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matt-g-everett/scrollfx/page"
)

type recordingPublisher struct {
	topics   []string
	payloads [][]byte
}

func (p *recordingPublisher) Publish(topic string, payload []byte) error {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func testStreamConfig() Config {
	c := DefaultConfig()
	c.FrameRate = 100
	c.Mqtt.Topics.Stream = "test/frames"
	c.Page = page.Layout{
		Width: 800, Height: 600, ContentHeight: 4000,
		Elements: []page.ElementSpec{
			{ID: "sky", Top: 0, Width: 800, Height: 600, Colour: "#336699", Attrs: map[string]string{"data-parallax": "", "data-speed": "0.2"}},
			{ID: "hills", Top: 300, Width: 800, Height: 400, Attrs: map[string]string{"data-parallax": "", "data-speed": "0.6"}},
			{ID: "footer", Top: 3500, Width: 800, Height: 500, Attrs: map[string]string{"data-parallax": ""}},
		},
	}
	c.Scroller.ScrollToEasing = "linear"
	c.Scroller.ScrollToDuration = 500 * time.Millisecond
	return c
}

func TestStreamerCreatesEffects(t *testing.T) {
	s, err := NewStreamer(testStreamConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	names := s.Registry().Names()
	if len(names) != 2 || names[0] != "parallax" || names[1] != "scroller" {
		t.Errorf("Expected parallax and scroller instances, got %v", names)
	}
	if kinds := s.Registry().Kinds(); len(kinds) != 2 || kinds[0] != KindParallax || kinds[1] != KindSmoothScroll {
		t.Errorf("Expected both kinds registered, got %v", kinds)
	}
	if kind, _ := s.Registry().Kind("scroller"); kind != KindSmoothScroll {
		t.Errorf("Expected kind %s, got %s", KindSmoothScroll, kind)
	}
}

func TestStreamerScrollCommand(t *testing.T) {
	s, err := NewStreamer(testStreamConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Submit(Command{Op: "scrollTo", Y: 400}); err != nil {
		t.Fatal(err)
	}

	var f *Frame
	for i := 0; i < 40; i++ {
		f = s.Step(20 * time.Millisecond)
	}
	if f.ScrollY != 400 || f.Animating {
		t.Fatalf("Expected to rest at 400, got %v (animating %v)", f.ScrollY, f.Animating)
	}
	if s.LastFrame() != f {
		t.Error("Expected LastFrame to return the latest step")
	}
	if len(f.Items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(f.Items))
	}

	sky, hills := f.Items[0], f.Items[1]
	if sky.Y != 80 || hills.Y != 240 {
		t.Errorf("Expected transforms 80 and 240, got %v and %v", sky.Y, hills.Y)
	}
	if sky.Hex != "#336699" {
		t.Errorf("Expected the layout colour, got %s", sky.Hex)
	}
	if !hills.Visible || f.Items[2].Visible {
		t.Errorf("Unexpected visibility %+v", f.Items)
	}
}

func TestStreamerRejectsCommands(t *testing.T) {
	s, _ := NewStreamer(testStreamConfig(), nil)
	tests := []Command{
		{Op: "teleport"},
		{Op: "scrollToElement"},
		{Op: "resize", Width: 100},
	}
	for _, c := range tests {
		if err := s.Submit(c); err == nil {
			t.Errorf("Expected %+v to be rejected", c)
		}
	}
	for i := 0; i < cap(s.commands); i++ {
		s.Submit(Command{Op: "wheel", Y: 1})
	}
	if err := s.Submit(Command{Op: "wheel", Y: 1}); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
}

func TestStreamerResize(t *testing.T) {
	s, _ := NewStreamer(testStreamConfig(), nil)
	s.Submit(Command{Op: "scrollToElement", Selector: "#footer", Immediate: true})
	for i := 0; i < 40; i++ {
		s.Step(20 * time.Millisecond)
	}
	if y := s.LastFrame().ScrollY; y != 3400 {
		t.Fatalf("Expected to stop at the scroll limit 3400, got %v", y)
	}

	s.Submit(Command{Op: "resize", Width: 800, Height: 1000})
	for i := 0; i < 10; i++ {
		s.Step(20 * time.Millisecond)
	}
	if y := s.LastFrame().ScrollY; y != 3000 {
		t.Errorf("Expected the scroll to clamp to 3000 after resizing, got %v", y)
	}
}

func TestStreamerRunPublishes(t *testing.T) {
	pub := new(recordingPublisher)
	s, err := NewStreamer(testStreamConfig(), pub)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected the deadline error, got %v", err)
	}
	if len(pub.payloads) == 0 {
		t.Fatal("Expected published frames")
	}
	if pub.topics[0] != "test/frames" || len(pub.payloads[0]) != headerSize+3*itemSize {
		t.Errorf("Unexpected publish %q with %d bytes", pub.topics[0], len(pub.payloads[0]))
	}
	if len(s.Registry().Names()) != 0 {
		t.Error("Expected Run to destroy the effects on exit")
	}
}
