package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eclipse/paho.mqtt.golang"
	"github.com/matt-g-everett/scrollfx/api"
	"github.com/matt-g-everett/scrollfx/stream"
	"github.com/matt-g-everett/scrollfx/util"
)

type app struct {
	Config   stream.Config
	Client   mqtt.Client
	Streamer *stream.Streamer
}

func newApp() *app {
	a := new(app)
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	util.Info("Connected to %s", a.Config.Mqtt.URL)
	if err := a.Streamer.Subscribe(client); err != nil {
		util.Error("%v", err)
	}
}

func (a *app) readConfig(configPath string) {
	c, err := stream.LoadConfig(configPath)
	if err != nil {
		panic(err)
	}
	a.Config = c
}

func (a *app) connect() {
	if a.Config.Mqtt.URL == "" {
		util.Warn("No MQTT broker configured, frames will not be published")
		return
	}

	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID(a.Config.Mqtt.ClientID).
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(a.handleOnConnect)
	a.Client = mqtt.NewClient(options)

	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		panic(token.Error())
	}
}

func (a *app) run(ctx context.Context) {
	var pub stream.Publisher
	if a.Client != nil {
		pub = stream.NewMqttPublisher(a.Client, a.Config.Mqtt.Qos)
	}

	s, err := stream.NewStreamer(a.Config, pub)
	if err != nil {
		panic(err)
	}
	a.Streamer = s

	// The connect handler subscribes through the Streamer, so connect after it
	// exists.
	a.connect()
	if a.Client != nil {
		defer a.Client.Disconnect(250)
	}

	if a.Config.Http.Listen != "" {
		server := api.NewApi(s, a.Config.Http.Static)
		go func() {
			if err := server.Serve(ctx, a.Config.Http.Listen); err != nil {
				util.Error("HTTP server: %v", err)
			}
		}()
	}

	if err := s.Run(ctx); err != nil && err != context.Canceled {
		util.Error("Streamer stopped: %v", err)
	}
}

func main() {
	// mqtt.DEBUG = log.New(os.Stdout, "", 0)
	mqtt.ERROR = log.New(os.Stdout, "", 0)

	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	logLevel := flag.String("log", "", "Log level, overrides the config file.")
	flag.Parse()

	// Read the config
	a := newApp()
	a.readConfig(*configPath)
	level := a.Config.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	util.SetLevel(util.ParseLevel(level))
	util.Debug("Config: %+v", a.Config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.run(ctx)
	util.Info("Stopped")
}
