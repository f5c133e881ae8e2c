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
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/enclavetrust/attest/internal"
)

// Chain validation uses a fixed reference instant instead of a wall clock:
// the execution environment has no trusted time source. The anchor set and
// this instant must be refreshed together, otherwise legitimately expired
// anchors are eventually rejected.
const defaultReferenceTime = 1723218496 // Unix seconds

// Signature algorithms accepted on the certificate chain
var supportedSigAlgs = []x509.SignatureAlgorithm{
	x509.ECDSAWithSHA256,
	x509.ECDSAWithSHA384,
	x509.SHA256WithRSA,
	x509.SHA384WithRSA,
	x509.SHA512WithRSA,
	x509.SHA256WithRSAPSS,
	x509.SHA384WithRSAPSS,
	x509.SHA512WithRSAPSS,
}

const (
	minRsaKeyBits = 2048
	maxRsaKeyBits = 8192
)

// TrustAnchors is the trust configuration for verifying the attestation
// service's signing certificate. It is initialized once before first use and
// treated as read-only afterwards, which makes it safe for concurrent
// verification calls.
type TrustAnchors struct {
	// Roots holds the trusted root certificates of the attestation service
	Roots []*x509.Certificate
	// Intermediates holds additional chain certificates, e.g. the service's
	// intermediate CA certificate
	Intermediates []*x509.Certificate
	// ReferenceTime is the instant at which certificate validity is
	// evaluated. The zero value selects the baked-in default.
	ReferenceTime time.Time
}

func (t *TrustAnchors) referenceTime() time.Time {
	if t.ReferenceTime.IsZero() {
		return time.Unix(defaultReferenceTime, 0)
	}
	return t.ReferenceTime
}

// verifyChain parses the DER encoded signing certificate and validates it as
// a TLS server certificate against the trust anchors at the fixed reference
// instant. Returns the parsed end-entity certificate on success. Failures
// are validation errors except for unparsable input, which is a parse error.
func verifyChain(signingCertDer []byte, anchors *TrustAnchors) (*x509.Certificate, error) {
	cert, err := internal.ParseCert(signingCertDer)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse signing certificate: %v", ErrParse, err)
	}

	if len(anchors.Roots) == 0 {
		return nil, fmt.Errorf("%w: no trust anchors configured", ErrValidation)
	}

	roots := x509.NewCertPool()
	for _, c := range anchors.Roots {
		roots.AddCert(c)
	}
	intermediates := x509.NewCertPool()
	for _, c := range anchors.Intermediates {
		intermediates.AddCert(c)
	}

	chains, err := cert.Verify(x509.VerifyOptions{
		Roots:         roots,
		Intermediates: intermediates,
		CurrentTime:   anchors.referenceTime(),
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to verify signing certificate chain: %v", ErrValidation, err)
	}

	for _, chainCert := range chains[0] {
		if err := checkChainCert(chainCert); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	log.Trace("Successfully verified signing certificate chain")

	return cert, nil
}

// checkChainCert restricts chain certificates to the enumerated set of
// acceptable signature algorithms and RSA key sizes
func checkChainCert(cert *x509.Certificate) error {
	supported := false
	for _, alg := range supportedSigAlgs {
		if cert.SignatureAlgorithm == alg {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("certificate %v uses unsupported signature algorithm %v",
			cert.Subject.CommonName, cert.SignatureAlgorithm)
	}
	if pub, ok := cert.PublicKey.(*rsa.PublicKey); ok {
		bits := pub.N.BitLen()
		if bits < minRsaKeyBits || bits > maxRsaKeyBits {
			return fmt.Errorf("certificate %v uses unsupported RSA key size %d",
				cert.Subject.CommonName, bits)
		}
	}
	return nil
}

// verifyReportSignature verifies the attestation service's signature over the
// raw report bytes with the public key of the chain-validated signing
// certificate. Only RSA PKCS#1 v1.5 with SHA-256 and key sizes between 2048
// and 8192 bits are accepted. Failure is reported as a parse error, distinct
// from chain validation failure.
func verifyReportSignature(cert *x509.Certificate, report, signature []byte) error {
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("%w: signing certificate holds a %T key, expected RSA", ErrParse, cert.PublicKey)
	}
	bits := pub.N.BitLen()
	if bits < minRsaKeyBits || bits > maxRsaKeyBits {
		return fmt.Errorf("%w: signing certificate RSA key size %d out of range", ErrParse, bits)
	}

	digest := sha256.Sum256(report)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], signature); err != nil {
		return fmt.Errorf("%w: failed to verify report signature: %v", ErrParse, err)
	}

	log.Trace("Successfully verified report signature")

	return nil
}
