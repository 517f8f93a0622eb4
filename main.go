/*
 * Copyright (c) 2022 Cisco Systems, Inc. and its affiliates
 * All rights reserved.
 *
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

// Command p4rtd is the server-side P4Runtime/gNMI control plane
// entrypoint.
package main

import (
	"flag"
	"os"
	"time"

	"github.com/golang/glog"

	"github.com/go-p4rt/p4rtd/server"
	"github.com/go-p4rt/p4rtd/sigutil"
)

const forceShutdownDeadline = 10 * time.Second

func main() {
	flag.Parse()
	validateArgs()
	defer glog.Flush()

	glog.Infof("p4rtd starting, called as: %s", os.Args)

	srv := server.New()
	if err := srv.RunAddr(*listenAddr); err != nil {
		glog.Fatalf("p4rtd: failed to listen on %s: %s", *listenAddr, err)
	}

	stop := sigutil.WatchShutdown()
	<-stop

	glog.Info("p4rtd: shutting down")
	srv.ForceShutdown(forceShutdownDeadline)
	srv.Cleanup()
	glog.Info("p4rtd: exited")
}
