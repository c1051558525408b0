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

package conf

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Default tunables, used whenever neither the config file nor a CLI flag
// sets a value.
const (
	DefaultLargeBlockBytes     = 128 * 1024
	DefaultLargeBlockOpsPerSec = 1.0
	DefaultWriteOpsPerSec      = 0.0
	DefaultReadReqsPerSec      = 0.0
	DefaultRecordSizeBytes     = 1536
	DefaultNumQueues           = 8
	DefaultThreadsPerQueue     = 1
	DefaultRunDurationSeconds  = 86400
	DefaultReportIntervalSecs  = 1
	DefaultFDPoolSize          = 4
)

// Config is the fully-resolved set of tunables a Run needs, built from a
// JSON config file overlaid with CLI flags.
type Config struct {
	Devices []string `json:"devices"`

	LargeBlockBytes     int64   `json:"large_block_bytes"`
	LargeBlockOpsPerSec float64 `json:"large_block_ops_per_sec"`
	WriteOpsPerSec      float64 `json:"write_ops_per_sec"`
	ReadReqsPerSec      float64 `json:"read_reqs_per_sec"`
	RecordSizeBytes     int64   `json:"record_size_bytes"`

	NumQueues       int `json:"num_queues"`
	ThreadsPerQueue int `json:"threads_per_queue"`

	RunDurationSeconds int `json:"run_duration_seconds"`
	ReportIntervalSecs int `json:"report_interval_seconds"`

	// HistogramScale is "us" or "ms".
	HistogramScale string `json:"histogram_scale"`

	// SchedulerMode, when non-empty, is written to each device's
	// /sys/block/<dev>/queue/scheduler.
	SchedulerMode string `json:"scheduler_mode"`

	Seed       int64 `json:"seed"`
	FDPoolSize int   `json:"fd_pool_size"`
}

// New returns a Config populated with the documented defaults.
func New() *Config {
	return &Config{
		LargeBlockBytes:     DefaultLargeBlockBytes,
		LargeBlockOpsPerSec: DefaultLargeBlockOpsPerSec,
		WriteOpsPerSec:      DefaultWriteOpsPerSec,
		ReadReqsPerSec:      DefaultReadReqsPerSec,
		RecordSizeBytes:     DefaultRecordSizeBytes,
		NumQueues:           DefaultNumQueues,
		ThreadsPerQueue:     DefaultThreadsPerQueue,
		RunDurationSeconds:  DefaultRunDurationSeconds,
		ReportIntervalSecs:  DefaultReportIntervalSecs,
		HistogramScale:      "us",
		FDPoolSize:          DefaultFDPoolSize,
	}
}

// Load reads a JSON config file into a fresh default Config. It is not an
// error for configFile to be empty or not exist: the caller is expected to
// fill in the rest from CLI flags.
func Load(configFile string) (*Config, error) {
	cfg := New()
	if configFile == "" {
		return cfg, nil
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		log.WithField("file", configFile).Debug("config file does not exist, using defaults")
		return cfg, nil
	}

	raw, err := ioutil.ReadFile(configFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading configuration file")
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing configuration file")
	}

	log.WithField("file", configFile).Info("loaded configuration file")
	return cfg, nil
}

// RunDuration returns RunDurationSeconds as a time.Duration. A value of 0
// means run until stopped by another means (overload or signal).
func (c *Config) RunDuration() time.Duration {
	return time.Duration(c.RunDurationSeconds) * time.Second
}

// ReportInterval returns ReportIntervalSecs as a time.Duration.
func (c *Config) ReportInterval() time.Duration {
	return time.Duration(c.ReportIntervalSecs) * time.Second
}

// Validate checks the fully-merged configuration for the constraints the
// lifecycle depends on (startup errors are returned normally, not
// logged-and-continued).
func (c *Config) Validate() error {
	if len(c.Devices) == 0 {
		return errors.New("at least one device path is required")
	}
	if c.LargeBlockBytes <= 0 {
		return errors.New("large_block_bytes must be positive")
	}
	if c.RecordSizeBytes <= 0 {
		return errors.New("record_size_bytes must be positive")
	}
	if c.NumQueues <= 0 {
		return errors.New("num_queues must be positive")
	}
	if c.ThreadsPerQueue <= 0 {
		return errors.New("threads_per_queue must be positive")
	}
	if c.ReportIntervalSecs <= 0 {
		return errors.New("report_interval_seconds must be positive")
	}
	switch c.HistogramScale {
	case "us", "ms":
	default:
		return errors.Errorf("histogram_scale must be \"us\" or \"ms\", got %q", c.HistogramScale)
	}
	return nil
}
