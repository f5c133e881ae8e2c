// Copyright (c) 2024 Enclave Trust Labs
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

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

const (
	logLevelFlag = "log-level"
)

var (
	logLevels = map[string]logrus.Level{
		"panic": logrus.PanicLevel,
		"fatal": logrus.FatalLevel,
		"error": logrus.ErrorLevel,
		"warn":  logrus.WarnLevel,
		"info":  logrus.InfoLevel,
		"debug": logrus.DebugLevel,
		"trace": logrus.TraceLevel,
	}

	log = logrus.WithField("service", "attestctl")
)

func setupLogging(cmd *cli.Command) {
	level := cmd.String(logLevelFlag)
	if level == "" {
		logrus.SetLevel(logrus.InfoLevel)
		return
	}
	l, ok := logLevels[strings.ToLower(level)]
	if !ok {
		log.Warnf("LogLevel %v does not exist. Default to info level", level)
		l = logrus.InfoLevel
	}
	logrus.SetLevel(l)
}

func main() {
	cmd := &cli.Command{
		Name:  "attestctl",
		Usage: "A tool to verify SGX EPID attestation evidence embedded in TLS certificates and to decode raw SGX quotes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: fmt.Sprintf("set log level. Possible: %v", strings.Join(maps.Keys(logLevels), ",")),
			},
		},
		Commands: []*cli.Command{
			verifyCommand,
			quoteCommand,
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
