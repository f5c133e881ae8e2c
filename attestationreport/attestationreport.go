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

// Package attestationreport verifies SGX EPID attestation evidence embedded
// in TLS certificates. It decodes the endorsed report envelope, validates the
// attestation service's certificate chain and report signature, parses the
// quote structures and classifies the verdict into a trust decision.
//
// The package performs no I/O: certificates, trust anchors and any collateral
// are obtained by the caller beforehand. All verification state is read-only
// after initialization, so a single configuration can serve concurrent
// verifications.
package attestationreport

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("service", "ar")

var (
	// ErrParse indicates malformed, truncated or semantically unsupported
	// input at any decoding or field validation stage
	ErrParse = errors.New("attestation report parse error")
	// ErrValidation indicates a certificate chain trust failure
	ErrValidation = errors.New("attestation report validation error")
)

// Supported IAS attestation API version
const reportApiVersion = 5

// AttestationReport is the verified result of a single attestation evidence
// check. It is the only value handed back to callers and is not modified
// after construction.
//
// The binding between ReportData of the quoted enclave and an
// application-level public key is not validated here; that check belongs to
// the caller.
type AttestationReport struct {
	// Timestamp is the verdict's freshness instant in Unix seconds
	Timestamp uint64 `json:"timestamp" cbor:"0,keyasint"`
	// SgxQuoteStatus is the platform trust status of the quote
	SgxQuoteStatus SgxQuoteStatus `json:"sgxQuoteStatus" cbor:"1,keyasint"`
	// SgxQuoteBody is the decoded quote the verdict covers
	SgxQuoteBody SgxQuote `json:"sgxQuoteBody" cbor:"2,keyasint"`
	// PlatformInfoBlob carries opaque platform remediation data, if reported
	PlatformInfoBlob HexByte `json:"platformInfoBlob,omitempty" cbor:"3,keyasint,omitempty"`
	// AdvisoryIDs lists the security advisories affecting the platform
	AdvisoryIDs AdvisoryIDs `json:"advisoryIds" cbor:"4,keyasint"`
	// TcbEvalDataNumber is the TCB evaluation data number of the verdict
	TcbEvalDataNumber uint16 `json:"tcbEvalDataNumber" cbor:"5,keyasint"`
}

// VerificationConfig holds the collaborator-supplied inputs of a
// verification call
type VerificationConfig struct {
	// Anchors is the trust anchor set for the signing certificate chain
	Anchors TrustAnchors
	// ExtractPayload obtains the endorsed report payload from the attested
	// certificate. Defaults to ExtractCertPayload.
	ExtractPayload PayloadExtractor
}

// Wire representation of the IAS verdict document (attestation API v5).
// Pointer fields distinguish absent required fields from zero values.
type reportBody struct {
	Version                 *uint64  `json:"version"`
	PlatformInfoBlob        *string  `json:"platformInfoBlob"`
	IsvEnclaveQuoteStatus   *string  `json:"isvEnclaveQuoteStatus"`
	IsvEnclaveQuoteBody     *string  `json:"isvEnclaveQuoteBody"`
	AdvisoryIDs             []string `json:"advisoryIDs"`
	TcbEvaluationDataNumber *uint64  `json:"tcbEvaluationDataNumber"`
	Timestamp               *string  `json:"timestamp"`
}

// VerifyAttestationReport extracts the endorsed attestation verdict from the
// given DER encoded certificate, verifies it against the configured trust
// anchors and returns the assembled report. Processing is sequential and
// aborts on the first failure; no partial results are produced.
func VerifyAttestationReport(certDer []byte, cfg *VerificationConfig) (*AttestationReport, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: no verification config provided", ErrValidation)
	}

	extract := cfg.ExtractPayload
	if extract == nil {
		extract = ExtractCertPayload
	}
	payload, err := extract(certDer)
	if err != nil {
		log.Warnf("Failed to extract report payload from certificate: %v", err)
		return nil, fmt.Errorf("%w: failed to extract report payload: %v", ErrParse, err)
	}

	endorsed, err := decodeEndorsedReport(payload)
	if err != nil {
		return nil, err
	}

	signingCert, err := verifyChain(endorsed.SigningCert, &cfg.Anchors)
	if err != nil {
		log.Warnf("Certificate verification error: %v", err)
		return nil, err
	}

	if err := verifyReportSignature(signingCert, endorsed.Report, endorsed.Signature); err != nil {
		log.Warnf("Signature verification error: %v", err)
		return nil, err
	}

	return assembleReport(endorsed.Report)
}

// assembleReport validates the fields of the now-trusted verdict document
// and decodes the embedded quote
func assembleReport(report []byte) (*AttestationReport, error) {
	var body reportBody
	if err := (JsonSerializer{}).Unmarshal(report, &body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode attestation verdict: %v", ErrParse, err)
	}

	if body.Version == nil {
		return nil, fmt.Errorf("%w: attestation verdict is missing the version field", ErrParse)
	}
	if *body.Version != reportApiVersion {
		log.Warnf("API version incompatible: %d", *body.Version)
		return nil, fmt.Errorf("%w: API version incompatible (got %d, want %d)",
			ErrParse, *body.Version, reportApiVersion)
	}

	var platformInfoBlob HexByte
	if body.PlatformInfoBlob != nil {
		blob, err := decodeHexBlob(*body.PlatformInfoBlob)
		if err != nil {
			log.Warn("Error parsing platform info")
			return nil, err
		}
		platformInfoBlob = blob
	}

	if body.IsvEnclaveQuoteStatus == nil {
		return nil, fmt.Errorf("%w: attestation verdict is missing the quote status", ErrParse)
	}
	status := ParseQuoteStatus(*body.IsvEnclaveQuoteStatus)

	if body.IsvEnclaveQuoteBody == nil {
		return nil, fmt.Errorf("%w: attestation verdict is missing the quote body", ErrParse)
	}
	quoteRaw, err := base64.StdEncoding.DecodeString(*body.IsvEnclaveQuoteBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode quote body: %v", ErrParse, err)
	}
	quote, err := DecodeQuote(quoteRaw)
	if err != nil {
		return nil, err
	}

	advisories := body.AdvisoryIDs
	if advisories == nil {
		advisories = []string{}
	}

	if body.TcbEvaluationDataNumber == nil {
		return nil, fmt.Errorf("%w: attestation verdict is missing the TCB evaluation data number", ErrParse)
	}
	// Narrowed to 16 bits as transported on the wire
	tcbEvalDataNumber := uint16(*body.TcbEvaluationDataNumber)

	if body.Timestamp == nil {
		return nil, fmt.Errorf("%w: attestation verdict is missing the timestamp", ErrParse)
	}
	// The service emits a naive UTC timestamp without a zone suffix
	timestamp, err := time.Parse(time.RFC3339, *body.Timestamp+"Z")
	if err != nil {
		log.Warnf("Failed to decode timestamp: %v", err)
		return nil, fmt.Errorf("%w: failed to decode timestamp: %v", ErrParse, err)
	}

	return &AttestationReport{
		Timestamp:         uint64(timestamp.Unix()),
		SgxQuoteStatus:    status,
		SgxQuoteBody:      quote,
		PlatformInfoBlob:  platformInfoBlob,
		AdvisoryIDs:       AdvisoryIDs(advisories),
		TcbEvalDataNumber: tcbEvalDataNumber,
	}, nil
}
