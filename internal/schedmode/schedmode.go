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

// Package schedmode applies the configured Linux I/O-scheduler mode to each
// device under test by writing /sys/block/<dev>/queue/scheduler.
package schedmode

import (
	log "github.com/sirupsen/logrus"
	"github.com/ungerik/go-sysfs"
)

// Apply writes mode to basename's scheduler attribute. Failure is logged but
// never fatal: this step is best-effort.
func Apply(basename, mode string) {
	if mode == "" {
		return
	}
	attr := sysfs.Block.Object(basename).SubObject("queue").Attribute("scheduler")
	if !attr.Exists() {
		log.WithField("device", basename).Warn("scheduler attribute not present, skipping")
		return
	}
	if err := attr.Write(mode); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"device": basename,
			"mode":   mode,
		}).Warn("failed to set I/O scheduler mode")
	}
}
