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
	"time"

	ar "github.com/enclavetrust/attest/attestationreport"
	"github.com/enclavetrust/attest/internal"
	"github.com/urfave/cli/v3"
)

const (
	certFlag          = "cert"
	anchorsFlag       = "anchors"
	intermediatesFlag = "intermediates"
	refTimeFlag       = "ref-time"
	formatFlag        = "format"
	policyFlag        = "policy"
)

var verifyCommand = &cli.Command{
	Name:  "verify",
	Usage: "verify the attestation evidence embedded in a DER or PEM encoded certificate and print the verified report",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     certFlag,
			Usage:    "Filename of the attested certificate",
			Required: true,
		},
		&cli.StringFlag{
			Name:     anchorsFlag,
			Usage:    "Filename of the PEM encoded trust anchor certificates",
			Required: true,
		},
		&cli.StringFlag{
			Name:  intermediatesFlag,
			Usage: "Optional filename of PEM encoded intermediate certificates",
		},
		&cli.IntFlag{
			Name:  refTimeFlag,
			Usage: "Optional reference time for chain validation (Unix seconds)",
		},
		&cli.StringFlag{
			Name:  formatFlag,
			Usage: "Output format [json, cbor]",
			Value: "json",
		},
		&cli.StringFlag{
			Name:  policyFlag,
			Usage: "Advisory policy [development, production]",
			Value: "production",
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		err := verifyCert(cmd)
		if err != nil {
			return fmt.Errorf("failed to verify certificate: %w", err)
		}
		return nil
	},
}

func verifyCert(cmd *cli.Command) error {
	setupLogging(cmd)

	certDer, err := os.ReadFile(cmd.String(certFlag))
	if err != nil {
		return fmt.Errorf("failed to read certificate: %w", err)
	}

	anchorsPem, err := os.ReadFile(cmd.String(anchorsFlag))
	if err != nil {
		return fmt.Errorf("failed to read trust anchors: %w", err)
	}
	roots, err := internal.ParseCertsPem(anchorsPem)
	if err != nil {
		return fmt.Errorf("failed to parse trust anchors: %w", err)
	}

	cfg := &ar.VerificationConfig{
		Anchors: ar.TrustAnchors{Roots: roots},
	}

	if path := cmd.String(intermediatesFlag); path != "" {
		intermediatesPem, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read intermediates: %w", err)
		}
		cfg.Anchors.Intermediates, err = internal.ParseCertsPem(intermediatesPem)
		if err != nil {
			return fmt.Errorf("failed to parse intermediates: %w", err)
		}
	}

	if refTime := cmd.Int(refTimeFlag); refTime != 0 {
		cfg.Anchors.ReferenceTime = time.Unix(int64(refTime), 0)
	}

	report, err := ar.VerifyAttestationReport(certDer, cfg)
	if err != nil {
		return err
	}

	log.Infof("Quote status: %v (trust decision: %v)",
		report.SgxQuoteStatus, ar.DecideTrust(report.SgxQuoteStatus))

	policy, err := advisoryPolicy(cmd.String(policyFlag))
	if err != nil {
		return err
	}
	if vulnerable := report.AdvisoryIDs.Vulnerable(policy); len(vulnerable) > 0 {
		log.Warnf("Unresolved advisories: %v", vulnerable)
	}

	s, err := serializer(cmd.String(formatFlag))
	if err != nil {
		return err
	}
	data, err := s.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	os.Stdout.Write(data)
	fmt.Println()

	return nil
}

func advisoryPolicy(name string) (ar.AdvisoryPolicy, error) {
	switch name {
	case "development":
		return ar.DevelopmentAdvisoryPolicy(), nil
	case "production":
		return ar.ProductionAdvisoryPolicy(), nil
	default:
		return ar.AdvisoryPolicy{}, fmt.Errorf("unknown advisory policy %q", name)
	}
}

func serializer(format string) (ar.Serializer, error) {
	switch format {
	case "json":
		return ar.JsonSerializer{}, nil
	case "cbor":
		return ar.CborSerializer{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
