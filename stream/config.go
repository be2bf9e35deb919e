package stream

import (
	"fmt"
	"os"

	"github.com/matt-g-everett/scrollfx/page"
	"github.com/matt-g-everett/scrollfx/parallax"
	"github.com/matt-g-everett/scrollfx/scroller"
	"gopkg.in/yaml.v2"
)

// Config is the daemon configuration file.
type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		ClientID string `yaml:"clientId"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Qos      byte   `yaml:"qos"`
		Topics   struct {
			Stream  string `yaml:"stream"`
			Control string `yaml:"control"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	Http struct {
		Listen string `yaml:"listen"`
		Static string `yaml:"static"`
	} `yaml:"http"`
	LogLevel  string          `yaml:"logLevel"`
	FrameRate float64         `yaml:"frameRate"`
	Page      page.Layout     `yaml:"page"`
	Scroller  scroller.Config `yaml:"scroller"`
	Parallax  parallax.Config `yaml:"parallax"`
}

// DefaultConfig returns a configuration with every section at its defaults.
func DefaultConfig() Config {
	var c Config
	c.Mqtt.ClientID = "scrollfx"
	c.Mqtt.Topics.Stream = "scrollfx/frames"
	c.Mqtt.Topics.Control = "scrollfx/control"
	c.Http.Listen = ":3000"
	c.LogLevel = "info"
	c.FrameRate = 60
	c.Page = page.Layout{Width: 1280, Height: 720, ContentWidth: 1280, ContentHeight: 4000}
	c.Scroller = scroller.DefaultConfig()
	c.Parallax = parallax.DefaultConfig()
	return c
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return c, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&c); err != nil {
		return c, fmt.Errorf("decode %s: %w", path, err)
	}
	if c.FrameRate <= 0 {
		c.FrameRate = 60
	}
	c.Scroller = c.Scroller.Normalize()
	c.Parallax = c.Parallax.Normalize()
	return c, nil
}
