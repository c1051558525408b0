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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/act-project/actgo/internal/histogram"
)

func TestAppExposesRunAndProbeCommands(t *testing.T) {
	app := App()
	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["probe"])
}

func TestAppNameAndVersion(t *testing.T) {
	app := App()
	assert.Equal(t, "actgo", app.Name)
	require.NotEmpty(t, app.Version)
}

func TestHistogramScaleDefaultsToMicros(t *testing.T) {
	assert.Equal(t, histogram.Micros, histogramScale(""))
	assert.Equal(t, histogram.Micros, histogramScale("us"))
}

func TestHistogramScaleRecognizesMillis(t *testing.T) {
	assert.Equal(t, histogram.Millis, histogramScale("ms"))
}
