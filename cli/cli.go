// Copyright 2024 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package cli

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli/v2"
)

// Version is the released version string, overridden at build time via
// -ldflags.
var Version = "unreleased"

const appDescription = "" +
	"actgo drives concurrent streams of small random reads and large-block " +
	"background reads/writes directly against one or more raw block " +
	"devices and reports latency distributions, to certify whether a " +
	"device can sustain a database's mixed I/O pattern indefinitely.\n\n" +
	"See 'actgo run --help' and 'actgo probe --help' for command options."

func ShowVersion() string {
	return fmt.Sprintf("%s\truntime: %s", Version, runtime.Version())
}

// App builds the actgo command surface: `run` drives the full certification
// load, `probe` only discovers and prints per-device geometry.
func App() *cli.App {
	runOptions := &runOptionsType{}

	app := &cli.App{
		Name:        "actgo",
		Usage:       "certify a block device's sustained mixed I/O latency",
		Description: appDescription,
		Version:     ShowVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Configuration `FILE` path (JSON).",
				Destination: &runOptions.configPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Usage:       "Set logging `level` (debug, info, warning, error).",
				Value:       "info",
				Destination: &runOptions.logLevel,
			},
		},
		Before: runOptions.handleLogFlags,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run the certification workload against one or more devices.",
				Flags: runFlags(runOptions),
				Action: func(ctx *cli.Context) error {
					return runOptions.doRun(ctx)
				},
			},
			{
				Name:      "probe",
				Usage:     "Probe device geometry and exit without running a workload.",
				ArgsUsage: "<device> [device...]",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:  "large-block-bytes",
						Usage: "Large-block operation size, in bytes.",
						Value: 128 * 1024,
					},
					&cli.Int64Flag{
						Name:  "record-size-bytes",
						Usage: "Small-read record size, in bytes.",
						Value: 1536,
					},
				},
				Action: func(ctx *cli.Context) error {
					return runOptions.doProbe(ctx)
				},
			},
		},
	}
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintf(c.App.Writer, "%s\n", ShowVersion())
	}
	return app
}

func runFlags(runOptions *runOptionsType) []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "large-block-bytes",
			Usage:       "Large-block operation size, in bytes.",
			Destination: &runOptions.largeBlockBytes,
		},
		&cli.Float64Flag{
			Name:        "large-block-ops-per-sec",
			Usage:       "Aggregate large-block ops/sec target.",
			Destination: &runOptions.largeBlockOpsPerSec,
		},
		&cli.Float64Flag{
			Name:        "write-ops-per-sec",
			Usage:       "Non-zero enables the per-device large-block writer and reader loops, both paced by large-block-ops-per-sec; 0 disables them.",
			Destination: &runOptions.writeOpsPerSec,
		},
		&cli.Float64Flag{
			Name:        "read-reqs-per-sec",
			Usage:       "Aggregate small-read requests/sec target.",
			Destination: &runOptions.readReqsPerSec,
		},
		&cli.Int64Flag{
			Name:        "record-size-bytes",
			Usage:       "Small-read record size, in bytes.",
			Destination: &runOptions.recordSizeBytes,
		},
		&cli.IntFlag{
			Name:        "num-queues",
			Usage:       "Number of small-read fan-out queues.",
			Destination: &runOptions.numQueues,
		},
		&cli.IntFlag{
			Name:        "threads-per-queue",
			Usage:       "Worker goroutines per fan-out queue.",
			Destination: &runOptions.threadsPerQueue,
		},
		&cli.IntFlag{
			Name:        "duration",
			Usage:       "Run duration, in seconds (0 runs until stopped).",
			Destination: &runOptions.runDurationSeconds,
		},
		&cli.IntFlag{
			Name:        "report-interval",
			Usage:       "Reporting cadence, in seconds.",
			Destination: &runOptions.reportIntervalSecs,
		},
		&cli.StringFlag{
			Name:        "histogram-scale",
			Usage:       "Histogram resolution: \"us\" or \"ms\".",
			Destination: &runOptions.histogramScale,
		},
		&cli.StringFlag{
			Name:        "scheduler",
			Usage:       "I/O scheduler `mode` to set on each device (e.g. \"noop\"); empty leaves it unchanged.",
			Destination: &runOptions.schedulerMode,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "PRNG seed; 0 derives one from the current time.",
			Destination: &runOptions.seed,
		},
		&cli.IntFlag{
			Name:        "fd-pool-size",
			Usage:       "Per-device pool size of pre-opened direct-I/O file descriptors.",
			Destination: &runOptions.fdPoolSize,
		},
	}
}
