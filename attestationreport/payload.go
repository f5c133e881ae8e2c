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

package attestationreport

import (
	"encoding/asn1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/enclavetrust/attest/internal"
)

// Custom type for the JSON unmarshaller as byte arrays are encoded as hex
// strings in JSON but used as byte arrays internally and by CBOR encoding
type HexByte []byte

// MarshalJSON marshals a byte array into a hex string
func (h HexByte) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h))
}

// UnmarshalJSON unmarshals JSON hex strings into byte arrays
func (h *HexByte) UnmarshalJSON(data []byte) error {
	var v string
	err := json.Unmarshal(data, &v)
	if err != nil {
		return fmt.Errorf("failed to unmarshal: %v", err)
	}

	*h, err = hex.DecodeString(v)
	if err != nil {
		return fmt.Errorf("failed to decode string: %v", err)
	}

	return nil
}

// Custom type for the JSON unmarshaller as byte arrays are encoded as base64
// strings in JSON but used as byte arrays internally and by CBOR encoding
type Base64Byte []byte

// MarshalJSON marshals a byte array into a base64 string
func (b Base64Byte) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(b))
}

// UnmarshalJSON unmarshals JSON base64 strings into byte arrays
func (b *Base64Byte) UnmarshalJSON(data []byte) error {
	var v string
	err := json.Unmarshal(data, &v)
	if err != nil {
		return fmt.Errorf("failed to unmarshal: %v", err)
	}

	*b, err = base64.StdEncoding.DecodeString(v)
	if err != nil {
		return fmt.Errorf("failed to decode string: %v", err)
	}

	return nil
}

// EndorsedAttestationReport is the raw envelope produced by the attestation
// service: the verdict document, the service's signature over it and the
// certificate matching the signing key. It is consumed exactly once per
// verification call.
type EndorsedAttestationReport struct {
	Report      Base64Byte `json:"report" cbor:"0,keyasint"`
	Signature   Base64Byte `json:"signature" cbor:"1,keyasint"`
	SigningCert Base64Byte `json:"signing_cert" cbor:"2,keyasint"`
}

// id-netscape-comment, carries the endorsed report payload in attested TLS
// certificates
var oidNetscapeComment = asn1.ObjectIdentifier{2, 16, 840, 1, 113730, 1, 13}

// PayloadExtractor obtains the embedded endorsed-report payload from a DER
// encoded certificate
type PayloadExtractor func(certDer []byte) ([]byte, error)

// ExtractCertPayload returns the value of the certificate's Netscape comment
// extension, which holds the endorsed attestation report in attested TLS
// certificates
func ExtractCertPayload(certDer []byte) ([]byte, error) {
	cert, err := internal.ParseCert(certDer)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse certificate: %v", ErrParse, err)
	}

	for _, ext := range cert.Extensions {
		if ext.Id.Equal(oidNetscapeComment) {
			if len(ext.Value) == 0 {
				return nil, fmt.Errorf("%w: certificate payload extension is empty", ErrParse)
			}
			return ext.Value, nil
		}
	}

	return nil, fmt.Errorf("%w: certificate does not carry a payload extension", ErrParse)
}

// decodeEndorsedReport deserializes the endorsed report envelope. The
// serialization format (JSON or CBOR) is detected from the payload.
func decodeEndorsedReport(payload []byte) (EndorsedAttestationReport, error) {
	s, err := DetectSerialization(payload)
	if err != nil {
		return EndorsedAttestationReport{}, fmt.Errorf("%w: failed to detect envelope serialization", ErrParse)
	}

	var endorsed EndorsedAttestationReport
	if err := s.Unmarshal(payload, &endorsed); err != nil {
		return EndorsedAttestationReport{}, fmt.Errorf("%w: failed to decode endorsed report: %v", ErrParse, err)
	}
	if len(endorsed.Report) == 0 || len(endorsed.Signature) == 0 || len(endorsed.SigningCert) == 0 {
		return EndorsedAttestationReport{}, fmt.Errorf("%w: endorsed report is missing report, signature or signing certificate", ErrParse)
	}

	return endorsed, nil
}

// decodeHexBlob decodes an optional hex encoded field such as the platform
// info blob
func decodeHexBlob(blob string) (HexByte, error) {
	data, err := hex.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode platform info blob: %v", ErrParse, err)
	}
	return data, nil
}
