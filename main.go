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

package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	urfavecli "github.com/urfave/cli/v2"

	"github.com/act-project/actgo/cli"
	"github.com/act-project/actgo/internal/signals"
)

func doMain() int {
	signals.Install()

	err := cli.App().Run(os.Args)
	if err == nil {
		return 0
	}
	log.Errorln(err.Error())
	if exitErr, ok := err.(urfavecli.ExitCoder); ok {
		return exitErr.ExitCode()
	}
	return 1
}

func main() {
	os.Exit(doMain())
}
