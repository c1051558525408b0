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
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/act-project/actgo/conf"
	"github.com/act-project/actgo/internal/blockdev"
	"github.com/act-project/actgo/internal/histogram"
	"github.com/act-project/actgo/internal/workload"
)

// runOptionsType collects every flag destination; CLI-set values overlay
// whatever conf.Load produced (file defaults, flags override).
type runOptionsType struct {
	configPath string
	logLevel   string

	largeBlockBytes     int64
	largeBlockOpsPerSec float64
	writeOpsPerSec      float64
	readReqsPerSec      float64
	recordSizeBytes     int64
	numQueues           int
	threadsPerQueue     int
	runDurationSeconds  int
	reportIntervalSecs  int
	histogramScale      string
	schedulerMode       string
	seed                int64
	fdPoolSize          int
}

func (o *runOptionsType) handleLogFlags(ctx *cli.Context) error {
	level, err := log.ParseLevel(o.logLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	log.SetLevel(level)
	return nil
}

// loadConfig builds a conf.Config from the config file then overlays any
// flag the user actually set, and finally validates the merged result
// (startup errors are returned, not logged-and-continued).
func (o *runOptionsType) loadConfig(ctx *cli.Context) (*conf.Config, error) {
	cfg, err := conf.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if ctx.Args().Len() > 0 {
		cfg.Devices = ctx.Args().Slice()
	}

	if ctx.IsSet("large-block-bytes") {
		cfg.LargeBlockBytes = o.largeBlockBytes
	}
	if ctx.IsSet("large-block-ops-per-sec") {
		cfg.LargeBlockOpsPerSec = o.largeBlockOpsPerSec
	}
	if ctx.IsSet("write-ops-per-sec") {
		cfg.WriteOpsPerSec = o.writeOpsPerSec
	}
	if ctx.IsSet("read-reqs-per-sec") {
		cfg.ReadReqsPerSec = o.readReqsPerSec
	}
	if ctx.IsSet("record-size-bytes") {
		cfg.RecordSizeBytes = o.recordSizeBytes
	}
	if ctx.IsSet("num-queues") {
		cfg.NumQueues = o.numQueues
	}
	if ctx.IsSet("threads-per-queue") {
		cfg.ThreadsPerQueue = o.threadsPerQueue
	}
	if ctx.IsSet("duration") {
		cfg.RunDurationSeconds = o.runDurationSeconds
	}
	if ctx.IsSet("report-interval") {
		cfg.ReportIntervalSecs = o.reportIntervalSecs
	}
	if ctx.IsSet("histogram-scale") {
		cfg.HistogramScale = o.histogramScale
	}
	if ctx.IsSet("scheduler") {
		cfg.SchedulerMode = o.schedulerMode
	}
	if ctx.IsSet("seed") {
		cfg.Seed = o.seed
	}
	if ctx.IsSet("fd-pool-size") {
		cfg.FDPoolSize = o.fdPoolSize
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func histogramScale(s string) histogram.Scale {
	if s == "ms" {
		return histogram.Millis
	}
	return histogram.Micros
}

// doRun is the "run" command action: load config, probe every device, start
// the workload, and block until it stops.
func (o *runOptionsType) doRun(ctx *cli.Context) error {
	cfg, err := o.loadConfig(ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}

	scale := histogramScale(cfg.HistogramScale)

	devices, err := blockdev.Probe(cfg.Devices, cfg.LargeBlockBytes, blockdev.ProbeConfig{
		RecordSizeBytes: cfg.RecordSizeBytes,
		Scale:           scale,
		FDPoolSize:      cfg.FDPoolSize,
		Open:            blockdev.OpenDirect,
	})
	if err != nil {
		return cli.Exit(errors.Wrap(err, "device probe failed"), 1)
	}

	fmt.Fprintln(ctx.App.Writer, ShowVersion())
	for _, dev := range devices {
		fmt.Fprintf(ctx.App.Writer, "  %-18s capacity %d bytes  min-op %d bytes  large-blocks %d  read-offsets %d\n",
			dev.Name, dev.CapacityBytes, dev.MinOpBytes, dev.NumLargeBlocks, dev.NumReadOffsets)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	run := workload.New(workload.Config{
		LargeBlockBytes:     cfg.LargeBlockBytes,
		LargeBlockOpsPerSec: cfg.LargeBlockOpsPerSec,
		WriteOpsPerSec:      cfg.WriteOpsPerSec,
		ReadReqsPerSec:      cfg.ReadReqsPerSec,
		RecordSizeBytes:     cfg.RecordSizeBytes,
		NumQueues:           cfg.NumQueues,
		ThreadsPerQueue:     cfg.ThreadsPerQueue,
		RunDuration:         cfg.RunDuration(),
		ReportInterval:      cfg.ReportInterval(),
		Scale:               scale,
		Seed:                seed,
		FDPoolSize:          cfg.FDPoolSize,
	}, devices)

	run.Start(ctx.App.Writer, cfg.SchedulerMode)
	return nil
}

// doProbe is the "probe" command action: discover and print device geometry
// without starting a workload.
func (o *runOptionsType) doProbe(ctx *cli.Context) error {
	paths := ctx.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit(errors.New("at least one device path is required"), 1)
	}

	devices, err := blockdev.Probe(paths, ctx.Int64("large-block-bytes"), blockdev.ProbeConfig{
		RecordSizeBytes: ctx.Int64("record-size-bytes"),
		Scale:           histogram.Micros,
		FDPoolSize:      1,
		Open:            blockdev.OpenDirect,
	})
	if err != nil {
		return cli.Exit(errors.Wrap(err, "device probe failed"), 1)
	}

	for _, dev := range devices {
		fmt.Fprintf(ctx.App.Writer, "%-18s capacity=%d min_op_bytes=%d read_bytes=%d num_large_blocks=%d num_read_offsets=%d\n",
			dev.Name, dev.CapacityBytes, dev.MinOpBytes, dev.ReadBytes, dev.NumLargeBlocks, dev.NumReadOffsets)
		dev.CloseFDs()
	}
	return nil
}
