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

// SgxQuoteStatus is the platform trust status reported by the attestation
// service for a quote
type SgxQuoteStatus string

const (
	// StatusOK: the signature of the ISV enclave quote was verified correctly
	// and the TCB level of the platform is up to date
	StatusOK SgxQuoteStatus = "OK"
	// StatusSignatureInvalid: the signature of the ISV enclave quote was
	// invalid, the content of the quote is not trustworthy
	StatusSignatureInvalid SgxQuoteStatus = "SignatureInvalid"
	// StatusGroupRevoked: the EPID group has been revoked, the content of the
	// quote is not trustworthy
	StatusGroupRevoked SgxQuoteStatus = "GroupRevoked"
	// StatusSignatureRevoked: the EPID private key used to sign the quote has
	// been revoked by signature
	StatusSignatureRevoked SgxQuoteStatus = "SignatureRevoked"
	// StatusKeyRevoked: the EPID private key used to sign the quote has been
	// directly revoked
	StatusKeyRevoked SgxQuoteStatus = "KeyRevoked"
	// StatusSigrlVersionMismatch: the SigRL version in the quote does not
	// match the most recent version of the SigRL
	StatusSigrlVersionMismatch SgxQuoteStatus = "SigrlVersionMismatch"
	// StatusGroupOutOfDate: the quote is valid but the TCB level of the
	// platform is outdated, see the advisory IDs for details
	StatusGroupOutOfDate SgxQuoteStatus = "GroupOutOfDate"
	// StatusConfigurationNeeded: the quote is valid but additional
	// configuration of the platform may be needed
	StatusConfigurationNeeded SgxQuoteStatus = "ConfigurationNeeded"
	// StatusSwHardeningNeeded: the quote is valid but additional software
	// hardening in the attesting enclave may be needed
	StatusSwHardeningNeeded SgxQuoteStatus = "SwHardeningNeeded"
	// StatusConfigurationAndSwHardeningNeeded: both of the above
	StatusConfigurationAndSwHardeningNeeded SgxQuoteStatus = "ConfigurationAndSwHardeningNeeded"
	// StatusOutOfDate: the quote is valid but the platform needs patching to
	// reach the latest TCB level
	StatusOutOfDate SgxQuoteStatus = "OutOfDate"
	// StatusOutOfDateConfigurationNeeded: the platform needs patching and
	// additional configuration at its current patch level
	StatusOutOfDateConfigurationNeeded SgxQuoteStatus = "OutOfDateConfigurationNeeded"
	// StatusUnknownBadStatus: any status string not part of the closed table
	StatusUnknownBadStatus SgxQuoteStatus = "UnknownBadStatus"
)

var quoteStatusTable = map[string]SgxQuoteStatus{
	"OK":                                    StatusOK,
	"SIGNATURE_INVALID":                     StatusSignatureInvalid,
	"GROUP_REVOKED":                         StatusGroupRevoked,
	"SIGNATURE_REVOKED":                     StatusSignatureRevoked,
	"KEY_REVOKED":                           StatusKeyRevoked,
	"SIGRL_VERSION_MISMATCH":                StatusSigrlVersionMismatch,
	"GROUP_OUT_OF_DATE":                     StatusGroupOutOfDate,
	"OUT_OF_DATE":                           StatusOutOfDate,
	"OUT_OF_DATE_CONFIGURATION_NEEDED":      StatusOutOfDateConfigurationNeeded,
	"CONFIGURATION_NEEDED":                  StatusConfigurationNeeded,
	"SW_HARDENING_NEEDED":                   StatusSwHardeningNeeded,
	"CONFIGURATION_AND_SW_HARDENING_NEEDED": StatusConfigurationAndSwHardeningNeeded,
}

// ParseQuoteStatus maps the isvEnclaveQuoteStatus string of the attestation
// verdict to an SgxQuoteStatus. The mapping is total: strings outside the
// table map to StatusUnknownBadStatus instead of failing.
func ParseQuoteStatus(status string) SgxQuoteStatus {
	if s, ok := quoteStatusTable[status]; ok {
		return s
	}
	return StatusUnknownBadStatus
}

// TrustDecision is the caller-facing classification of a quote status
type TrustDecision string

const (
	TrustSwHardeningAndConfigurationNeeded TrustDecision = "SwHardeningAndConfigurationNeeded"
	TrustConfigurationNeeded               TrustDecision = "ConfigurationNeeded"
	TrustGroupOutOfDate                    TrustDecision = "GroupOutOfDate"
	TrustKeyRevoked                        TrustDecision = "KeyRevoked"
	TrustSigrlVersionMismatch              TrustDecision = "SigrlVersionMismatch"
	TrustSignatureRevoked                  TrustDecision = "SignatureRevoked"
	TrustGroupRevoked                      TrustDecision = "GroupRevoked"
	TrustBadQuoteStatus                    TrustDecision = "BadQuoteStatus"
)

// DecideTrust classifies a quote status into a trust decision. Statuses
// without an explicit branch fall through to TrustBadQuoteStatus. Note that
// this includes StatusOK: callers that want to accept an up-to-date platform
// must check the status itself.
func DecideTrust(status SgxQuoteStatus) TrustDecision {
	switch status {
	case StatusConfigurationAndSwHardeningNeeded:
		return TrustSwHardeningAndConfigurationNeeded
	case StatusConfigurationNeeded:
		return TrustConfigurationNeeded
	case StatusGroupOutOfDate:
		return TrustGroupOutOfDate
	case StatusKeyRevoked:
		return TrustKeyRevoked
	case StatusSigrlVersionMismatch:
		return TrustSigrlVersionMismatch
	case StatusSignatureRevoked:
		return TrustSignatureRevoked
	case StatusGroupRevoked:
		return TrustGroupRevoked
	default:
		return TrustBadQuoteStatus
	}
}
