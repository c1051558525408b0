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

// Package signals installs the fatal-signal handlers a long-running
// certification pass needs: a crash on SIGSEGV should leave a stack trace
// behind rather than a silent core, and an operator SIGTERM should still
// print where every goroutine was so a stuck run can be diagnosed.
package signals

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	log "github.com/sirupsen/logrus"
)

// exitFunc is swapped out by tests so a SIGSEGV/SIGTERM can be exercised
// without actually terminating the test binary.
var exitFunc = os.Exit

// Install starts a goroutine that watches for SIGSEGV and SIGTERM. Go
// recovers most memory faults into a runtime panic rather than a real
// SIGSEGV delivery, so this is a best-effort handler for the cases that do
// reach the OS (cgo, a corrupted stack) — it cannot run in true
// async-signal-safe context the way the C original's handler did, since the
// Go runtime intercepts the signal first and redelivers it to this
// goroutine.
func Install() {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGSEGV, syscall.SIGTERM)

	go func() {
		sig := <-ch
		buf := make([]byte, 1<<20)
		n := runtime.Stack(buf, true)
		fmt.Fprintf(os.Stderr, "caught %s\n%s\n", sig, buf[:n])

		switch sig {
		case syscall.SIGTERM:
			log.Warn("terminated by SIGTERM")
			exitFunc(0)
		default:
			log.Error("terminated by SIGSEGV")
			exitFunc(255)
		}
	}()
}
