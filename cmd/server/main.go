package main

import (
	"flag"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/funvibe/notebook-concat/internal/concatcfg"
	"github.com/funvibe/notebook-concat/internal/concatdoc"
	"github.com/funvibe/notebook-concat/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML engine configuration file")
	flag.Parse()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	cfg, err := concatcfg.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load engine configuration")
	}

	engine := concatdoc.NewEngine(cfg)
	engine.SetLogger(telemetry.New(os.Stderr, os.Stderr.Fd()))

	server := NewServer(engine, os.Stdout, log)
	server.Start()
}
