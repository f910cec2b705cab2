package main

import (
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

var logLevel string

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "logging level (trace, debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
	}
}

// setupLogger applies the log-level flag to the process logger.
func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	return nil
}
