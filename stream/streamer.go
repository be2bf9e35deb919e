package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/scrollfx/effect"
	"github.com/matt-g-everett/scrollfx/frame"
	"github.com/matt-g-everett/scrollfx/page"
	"github.com/matt-g-everett/scrollfx/parallax"
	"github.com/matt-g-everett/scrollfx/scroller"
	"github.com/matt-g-everett/scrollfx/util"
)

// Effect kinds and the instance names the Streamer creates.
const (
	KindSmoothScroll = "smooth-scroll"
	KindParallax     = "parallax"

	scrollerName = "scroller"
	parallaxName = "parallax"
)

// ErrBusy is returned when the command queue is full.
var ErrBusy = errors.New("stream: command queue full")

// A Publisher sends encoded frames somewhere.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// MqttPublisher publishes frames to an MQTT broker.
type MqttPublisher struct {
	client mqtt.Client
	qos    byte
}

// NewMqttPublisher creates an instance of a MqttPublisher.
func NewMqttPublisher(client mqtt.Client, qos byte) *MqttPublisher {
	p := new(MqttPublisher)
	p.client = client
	p.qos = qos
	return p
}

// Publish sends payload and waits for the broker to accept it.
func (p *MqttPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, false, payload)
	token.Wait()
	return token.Error()
}

// Command is a control request, received as JSON over MQTT or HTTP.
type Command struct {
	Op         string  `json:"op"`
	Y          float64 `json:"y"`
	Selector   string  `json:"selector"`
	Offset     float64 `json:"offset"`
	DurationMs int64   `json:"durationMs"`
	Easing     string  `json:"easing"`
	Immediate  bool    `json:"immediate"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
}

// Validate checks the operation and its arguments.
func (c Command) Validate() error {
	switch c.Op {
	case "scrollTo", "scrollBy", "wheel":
		return nil
	case "scrollToElement":
		if c.Selector == "" {
			return errors.New("scrollToElement needs a selector")
		}
		return nil
	case "resize":
		if c.Width <= 0 || c.Height <= 0 {
			return errors.New("resize needs a positive width and height")
		}
		return nil
	}
	return fmt.Errorf("unknown op %q", c.Op)
}

func (c Command) options() scroller.Options {
	return scroller.Options{
		Duration:  time.Duration(c.DurationMs) * time.Millisecond,
		Easing:    c.Easing,
		Offset:    c.Offset,
		Immediate: c.Immediate,
	}
}

// Streamer runs the effects against a simulated page and streams every frame.
// All effect state is owned by the goroutine calling Run or Step.
type Streamer struct {
	cfg      Config
	pub      Publisher
	page     *page.Page
	loop     *frame.Loop
	registry *effect.Registry
	scroller *scroller.Scroller
	parallax *parallax.Parallax
	gradient GradientTable

	commands chan Command

	mu   sync.RWMutex
	last *Frame
}

// NewStreamer creates an instance of a Streamer. The publisher may be nil, in
// which case frames are only kept for LastFrame.
func NewStreamer(cfg Config, pub Publisher) (*Streamer, error) {
	pg, err := page.FromLayout(cfg.Page)
	if err != nil {
		return nil, fmt.Errorf("page layout: %w", err)
	}

	s := new(Streamer)
	s.cfg = cfg
	s.pub = pub
	s.page = pg
	s.loop = frame.NewLoop()
	s.gradient = SpeedGradient
	s.commands = make(chan Command, 64)
	s.registry = effect.NewRegistry()

	err = s.registry.Register(KindSmoothScroll, func(name string) (effect.Effect, error) {
		return scroller.New(s.page, s.loop, s.cfg.Scroller), nil
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", KindSmoothScroll, err)
	}
	err = s.registry.Register(KindParallax, func(name string) (effect.Effect, error) {
		return parallax.New(s.page, s.loop, page.NewObserver(s.page), s.cfg.Parallax), nil
	})
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", KindParallax, err)
	}

	e, err := s.registry.Create(KindSmoothScroll, scrollerName)
	if err != nil {
		return nil, err
	}
	s.scroller = e.(*scroller.Scroller)
	e, err = s.registry.Create(KindParallax, parallaxName)
	if err != nil {
		s.registry.DestroyAll()
		return nil, err
	}
	s.parallax = e.(*parallax.Parallax)

	s.scroller.On(scroller.Hooks{
		OnScroll: func(y float64) {
			s.parallax.HandleScroll(s.page.Scroll())
		},
		OnScrollEnd: func(y float64) {
			util.Debug("Scroll settled at %.1f", y)
		},
	})
	s.parallax.On(parallax.Hooks{
		OnError: func(err error) {
			util.Warn("Parallax item failed: %v", err)
		},
	})

	s.scroller.Start()
	s.parallax.Start()
	return s, nil
}

// Registry returns the registry holding the running effects.
func (s *Streamer) Registry() *effect.Registry {
	return s.registry
}

// Page returns the simulated page.
func (s *Streamer) Page() *page.Page {
	return s.page
}

// Submit queues a command for the loop goroutine.
func (s *Streamer) Submit(c Command) error {
	if err := c.Validate(); err != nil {
		return err
	}
	select {
	case s.commands <- c:
		return nil
	default:
		return ErrBusy
	}
}

// Subscribe listens for JSON commands on the control topic.
func (s *Streamer) Subscribe(client mqtt.Client) error {
	topic := s.cfg.Mqtt.Topics.Control
	if topic == "" {
		return nil
	}
	token := client.Subscribe(topic, s.cfg.Mqtt.Qos, s.handleControl)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	util.Info("Subscribed to %s", topic)
	return nil
}

func (s *Streamer) handleControl(client mqtt.Client, msg mqtt.Message) {
	var c Command
	if err := json.Unmarshal(msg.Payload(), &c); err != nil {
		util.Warn("Bad control message on %s: %v", msg.Topic(), err)
		return
	}
	if err := s.Submit(c); err != nil {
		util.Warn("Rejected control message: %v", err)
	}
}

// LastFrame returns the most recent frame, or nil before the first step.
func (s *Streamer) LastFrame() *Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Run steps the loop at the configured frame rate and publishes each frame
// until ctx is cancelled, then destroys the effects.
func (s *Streamer) Run(ctx context.Context) error {
	interval := time.Duration(float64(time.Second) / s.cfg.FrameRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer s.registry.DestroyAll()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c := <-s.commands:
			s.apply(c)
		case now := <-ticker.C:
			f := s.Step(now.Sub(last))
			last = now
			if err := s.publish(f); err != nil {
				util.Warn("Publish failed: %v", err)
			}
		}
	}
}

// Step drains pending commands, advances the loop by d and records the
// resulting frame.
func (s *Streamer) Step(d time.Duration) *Frame {
drain:
	for {
		select {
		case c := <-s.commands:
			s.apply(c)
		default:
			break drain
		}
	}
	s.loop.Advance(d)

	f := s.snapshot()
	s.mu.Lock()
	s.last = f
	s.mu.Unlock()
	return f
}

func (s *Streamer) publish(f *Frame) error {
	if s.pub == nil || s.cfg.Mqtt.Topics.Stream == "" {
		return nil
	}
	b, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	return s.pub.Publish(s.cfg.Mqtt.Topics.Stream, b)
}

func (s *Streamer) apply(c Command) {
	util.Debug("Command %+v", c)
	switch c.Op {
	case "scrollTo":
		s.scroller.ScrollTo(c.Y, c.options())
	case "scrollBy":
		s.scroller.ScrollBy(c.Y, c.options())
	case "wheel":
		s.scroller.HandleWheel(c.Y)
	case "scrollToElement":
		s.scroller.ScrollToElement(c.Selector, c.options())
	case "resize":
		s.page.Resize(c.Width, c.Height)
		s.scroller.HandleScroll()
		s.parallax.HandleResize()
	}
}

var dim = colorful.Color{R: 0.1, G: 0.1, B: 0.12}

func (s *Streamer) snapshot() *Frame {
	f := new(Frame)
	f.Time = s.loop.Now()
	f.ScrollX, f.ScrollY = s.page.Scroll()
	f.Target = s.scroller.Target()
	f.Animating = s.scroller.Animating()

	for _, st := range s.parallax.Snapshot() {
		c := s.gradient.SpeedColour(st.Speed)
		if el := s.page.Element(st.ID); el != nil {
			if own, ok := el.Colour(); ok {
				c = own
			}
		}
		if !st.Visible {
			c = c.BlendRgb(dim, 0.8)
		}
		f.Items = append(f.Items, Item{
			ID:      st.ID,
			X:       st.X,
			Y:       st.Y,
			Speed:   st.Speed,
			Visible: st.Visible,
			Colour:  c,
			Hex:     c.Hex(),
		})
	}
	return f
}
