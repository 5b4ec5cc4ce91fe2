/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package version reports the netmon build identity.
package version

import "runtime/debug"

// Set via -ldflags "-X github.com/carverauto/netmon/pkg/version.version=...".
//
//nolint:gochecknoglobals // ldflags injection target
var (
	version = "dev"
	buildID = "dev"
)

// Info is the build identity served by the health endpoint.
type Info struct {
	Version   string `json:"version"`
	BuildID   string `json:"build_id"`
	GoVersion string `json:"go_version,omitempty"`
}

func GetVersion() string {
	return version
}

func GetBuildID() string {
	return buildID
}

func GetFullVersion() string {
	return version + " (build: " + buildID + ")"
}

// Get returns the injected version, falling back to the VCS revision
// recorded by the toolchain for untagged builds.
func Get() Info {
	info := Info{Version: version, BuildID: buildID}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	info.GoVersion = bi.GoVersion

	if info.BuildID != "dev" {
		return info
	}

	for _, setting := range bi.Settings {
		if setting.Key == "vcs.revision" && setting.Value != "" {
			info.BuildID = setting.Value
			if len(info.BuildID) > 12 {
				info.BuildID = info.BuildID[:12]
			}

			break
		}
	}

	return info
}
