// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package quasifs

import (
	"io"
	"log"
	"os"
)

// gLogger receives the host/virtual disagreement line logDisagreement emits
// when a host-bound operation's errno disagrees with the virtual driver's
// (see the dispatch discipline and propagation policy). Its output is
// discarded by default: disagreements are expected to be rare, and a
// library shouldn't write to stderr unless its caller asks it to.
var gLogger = log.New(io.Discard, "quasifs: ", log.Ldate|log.Ltime|log.Lmicroseconds)

// SetLogOutput redirects QuasiFS's diagnostic logging (currently just
// host/virtual disagreements) to w. Pass nil to silence it again.
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	gLogger.SetOutput(w)
}

func init() {
	if os.Getenv("QUASIFS_DEBUG") != "" {
		gLogger.SetOutput(os.Stderr)
	}
}

func logDisagreement(op string, hostStatus, vioStatus error) {
	gLogger.Printf("%s: host returned %v, but virtual driver returned %v", op, hostStatus, vioStatus)
}
