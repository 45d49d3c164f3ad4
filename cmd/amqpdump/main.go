// Command amqpdump decodes a captured AMQP 1.0 byte stream and prints
// its protocol headers and frames.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"pack.ag/uamqp"
	"pack.ag/uamqp/internal/config"
)

const (
	name      = "amqpdump"
	envPrefix = "AMQPDUMP"
)

var dumpFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "config file path",
	},
	cli.UintFlag{
		Name:  "max-frame-size",
		Usage: "largest frame accepted by the decoder",
	},
	cli.BoolFlag{
		Name:  "hex",
		Usage: "hex dump frame bodies",
	},
	cli.StringFlag{
		Name:  "log-level",
		Usage: "log level (trace, debug, info, warn, error)",
	},
}

func main() {
	app := cli.NewApp()
	app.Name = name
	app.Usage = "print the frames of a captured AMQP 1.0 stream"
	app.ArgsUsage = "[capture file]"
	app.Flags = dumpFlags
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), envPrefix)
	if err != nil {
		return err
	}
	if c.IsSet("max-frame-size") {
		cfg.MaxFrameSize = uint32(c.Uint("max-frame-size"))
	}
	if c.IsSet("hex") {
		cfg.Hex = c.Bool("hex")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if err = cfg.Validate(); err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	uamqp.SetLogger(logrus.WithField("app", name))

	var r io.Reader = os.Stdin
	if path := c.Args().First(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "opening capture")
		}
		defer f.Close()
		r = f
	}

	frames, err := dump(r, c.App.Writer, cfg)
	dumpLogger.WithField("frames", frames).Info("done")
	return err
}
