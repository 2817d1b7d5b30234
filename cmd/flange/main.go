// Package main is the flange command line tool. It loads a cell config and runs forward and
// inverse kinematics against it.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"go.viam.com/flange/logging"
)

const (
	// Flags.
	flagConfig            = "config"
	flagDebug             = "debug"
	flagJoints            = "joints"
	flagExt               = "ext"
	flagPose              = "pose"
	flagTool              = "tool"
	flagFrame             = "frame"
	flagIndex             = "index"
	flagTurns             = "turns"
	flagIncludeTurns      = "include-turns"
	flagIgnoreSingularity = "ignore-singularity"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	var logger logging.Logger

	configFlag := &cli.StringFlag{
		Name:     flagConfig,
		Aliases:  []string{"c"},
		Usage:    "load cell configuration from `FILE`",
		Required: true,
	}
	toolFlag := &cli.IntFlag{
		Name:  flagTool,
		Usage: "tool index, 0 for the flange",
	}
	frameFlag := &cli.IntFlag{
		Name:  flagFrame,
		Value: -1,
		Usage: "reference frame index, -1 for world and 0 for the robot base",
	}
	extFlag := &cli.Float64SliceFlag{
		Name:  flagExt,
		Usage: "external joint values, defaults to the configured values",
	}
	poseFlag := &cli.Float64SliceFlag{
		Name:     flagPose,
		Usage:    "target as x,y,z,rx,ry,rz in metres and degrees",
		Required: true,
	}
	ignoreSingularityFlag := &cli.BoolFlag{
		Name:  flagIgnoreSingularity,
		Usage: "accept solutions at a wrist singularity",
	}

	return &cli.App{
		Name:  "flange",
		Usage: "solve robot kinematics for a configured cell",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = logging.NewDebugLogger("flange")
			} else {
				logger = logging.NewLogger("flange")
				logger.SetLevel(logging.WARN)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "forward",
				Usage: "compute the tool center point for joint values",
				Flags: []cli.Flag{
					configFlag,
					&cli.Float64SliceFlag{
						Name:     flagJoints,
						Usage:    "robot joint values in degrees or metres",
						Required: true,
					},
					extFlag,
					toolFlag,
				},
				Action: func(c *cli.Context) error {
					return forwardAction(c, logger)
				},
			},
			{
				Name:  "inverse",
				Usage: "solve for one configuration of a target",
				Flags: []cli.Flag{
					configFlag,
					poseFlag,
					extFlag,
					toolFlag,
					frameFlag,
					&cli.IntFlag{
						Name:  flagIndex,
						Usage: "configuration branch index",
					},
					&cli.IntSliceFlag{
						Name:  flagTurns,
						Usage: "turns of joints 1, 4 and 6",
					},
					ignoreSingularityFlag,
				},
				Action: func(c *cli.Context) error {
					return inverseAction(c, logger)
				},
			},
			{
				Name:  "solutions",
				Usage: "list every valid solution for a target",
				Flags: []cli.Flag{
					configFlag,
					poseFlag,
					extFlag,
					toolFlag,
					frameFlag,
					&cli.BoolFlag{
						Name:  flagIncludeTurns,
						Usage: "also enumerate whole turns of joints 1, 4 and 6",
					},
					ignoreSingularityFlag,
				},
				Action: func(c *cli.Context) error {
					return solutionsAction(c, logger)
				},
			},
			{
				Name:  "validate",
				Usage: "check a cell configuration",
				Flags: []cli.Flag{configFlag},
				Action: func(c *cli.Context) error {
					return validateAction(c, logger)
				},
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the cell configuration",
				Action: schemaAction,
			},
		},
	}
}
