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
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	ar "github.com/enclavetrust/attest/attestationreport"
	"github.com/urfave/cli/v3"
)

const (
	quoteFileFlag = "in"
	base64Flag    = "base64"
)

var quoteCommand = &cli.Command{
	Name:  "quote",
	Usage: "decode a raw SGX quote and print its fields",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     quoteFileFlag,
			Usage:    "Filename of the quote (raw bytes, or base64 with --base64)",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  base64Flag,
			Usage: "Treat the input file as base64 encoded",
		},
		&cli.StringFlag{
			Name:  formatFlag,
			Usage: "Output format [json, cbor]",
			Value: "json",
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		err := decodeQuoteFile(cmd)
		if err != nil {
			return fmt.Errorf("failed to decode quote: %w", err)
		}
		return nil
	},
}

func decodeQuoteFile(cmd *cli.Command) error {
	setupLogging(cmd)

	raw, err := os.ReadFile(cmd.String(quoteFileFlag))
	if err != nil {
		return fmt.Errorf("failed to read quote: %w", err)
	}

	if cmd.Bool(base64Flag) {
		raw, err = base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return fmt.Errorf("failed to decode base64 quote: %w", err)
		}
	}

	quote, err := ar.DecodeQuote(raw)
	if err != nil {
		return err
	}

	log.Infof("Decoded quote %v from platform group %v", quote.Version, quote.GID)

	s, err := serializer(cmd.String(formatFlag))
	if err != nil {
		return err
	}
	data, err := s.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	os.Stdout.Write(data)
	fmt.Println()

	return nil
}
