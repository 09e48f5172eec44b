package main

import (
	"errors"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	var app = &cli.App{
		Name:                   AppName,
		Version:                AppVersion,
		Usage:                  "Convert camera uploads into date-encoded timestream collections",
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			{
				Name:        "run",
				Usage:       "Process every enabled camera of a config file.",
				Description: "Reads a camera configuration CSV and converts each camera's source images into its timestream, archiving and resizing as configured.",
				ArgsUsage:   "camera-config.csv",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "threads",
						Value:   0,
						Aliases: []string{"t"},
						Usage:   "Number of worker threads per batch (0 = cores minus one).",
					},
					&cli.BoolFlag{
						Name:    "one",
						Value:   false,
						Aliases: []string{"1"},
						Usage:   "Process strictly sequentially on a single worker.",
					},
					&cli.BoolFlag{
						Name:    "debug",
						Value:   false,
						Aliases: []string{"d"},
						Usage:   "Enable debug logging (to file).",
					},
					&cli.StringFlag{
						Name:    "logdir",
						Value:   ".",
						Aliases: []string{"l"},
						Usage:   "Directory to contain log files.",
					},
					&cli.StringFlag{
						Name:  "index",
						Value: "",
						Usage: "Path of a sqlite database to index converted images in.",
					},
				},
				Action: func(c *cli.Context) error {
					configPath := c.Args().First()
					if configPath == "" {
						return errors.New("camera config CSV argument is missing")
					}
					if !pathExists(configPath) {
						return errors.New("camera config CSV does not exist")
					}

					if err := setupLogs(c.String("logdir"), c.Bool("debug")); IsError(err) {
						return err
					}

					cameras, err := loadCameras(configPath)
					if IsError(err) {
						return err
					}
					if len(cameras) == 0 {
						PrintLn("No enabled cameras in %s, nothing to do", configPath)
						return nil
					}

					threads := c.Int("threads")
					if c.Bool("one") {
						threads = 1
					}

					var index *ImageIndex
					if dbFile := c.String("index"); dbFile != "" {
						index, err = OpenImageIndex(dbFile)
						if IsError(err) {
							return err
						}
					}

					orch := &Orchestrator{
						Cameras: cameras,
						Threads: threads,
						Meta:    exifIO{},
						Index:   index,
					}
					_, err = orch.Run()
					return err
				},
			},
			{
				Name:      "generate",
				Usage:     "Write a template camera configuration CSV at the given path.",
				ArgsUsage: "camera-config.csv",
				Action: func(c *cli.Context) error {
					target := c.Args().First()
					if target == "" {
						return errors.New("template path argument is missing")
					}
					if err := generateConfigTemplate(target); IsError(err) {
						return err
					}
					PrintLn("Wrote config template to %s", target)
					return nil
				},
			},
		},
	}
	err := app.Run(os.Args)
	HandleError(err)
}
