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
	"testing"
)

func TestParseQuoteStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   SgxQuoteStatus
	}{
		{"ok", "OK", StatusOK},
		{"signature invalid", "SIGNATURE_INVALID", StatusSignatureInvalid},
		{"group revoked", "GROUP_REVOKED", StatusGroupRevoked},
		{"signature revoked", "SIGNATURE_REVOKED", StatusSignatureRevoked},
		{"key revoked", "KEY_REVOKED", StatusKeyRevoked},
		{"sigrl version mismatch", "SIGRL_VERSION_MISMATCH", StatusSigrlVersionMismatch},
		{"group out of date", "GROUP_OUT_OF_DATE", StatusGroupOutOfDate},
		{"out of date", "OUT_OF_DATE", StatusOutOfDate},
		{"out of date configuration needed", "OUT_OF_DATE_CONFIGURATION_NEEDED", StatusOutOfDateConfigurationNeeded},
		{"configuration needed", "CONFIGURATION_NEEDED", StatusConfigurationNeeded},
		{"sw hardening needed", "SW_HARDENING_NEEDED", StatusSwHardeningNeeded},
		{"configuration and sw hardening needed", "CONFIGURATION_AND_SW_HARDENING_NEEDED", StatusConfigurationAndSwHardeningNeeded},
		{"empty string", "", StatusUnknownBadStatus},
		{"unknown string", "SOME_NEW_STATUS", StatusUnknownBadStatus},
		{"lowercase is not recognized", "ok", StatusUnknownBadStatus},
		{"whitespace is not trimmed", " OK", StatusUnknownBadStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuoteStatus(tt.status)
			if got != tt.want {
				t.Errorf("ParseQuoteStatus(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestDecideTrust(t *testing.T) {
	tests := []struct {
		name   string
		status SgxQuoteStatus
		want   TrustDecision
	}{
		{"configuration and sw hardening needed", StatusConfigurationAndSwHardeningNeeded, TrustSwHardeningAndConfigurationNeeded},
		{"configuration needed", StatusConfigurationNeeded, TrustConfigurationNeeded},
		{"group out of date", StatusGroupOutOfDate, TrustGroupOutOfDate},
		{"key revoked", StatusKeyRevoked, TrustKeyRevoked},
		{"sigrl version mismatch", StatusSigrlVersionMismatch, TrustSigrlVersionMismatch},
		{"signature revoked", StatusSignatureRevoked, TrustSignatureRevoked},
		{"group revoked", StatusGroupRevoked, TrustGroupRevoked},
		// statuses without an explicit branch, including OK
		{"ok", StatusOK, TrustBadQuoteStatus},
		{"signature invalid", StatusSignatureInvalid, TrustBadQuoteStatus},
		{"sw hardening needed", StatusSwHardeningNeeded, TrustBadQuoteStatus},
		{"out of date", StatusOutOfDate, TrustBadQuoteStatus},
		{"out of date configuration needed", StatusOutOfDateConfigurationNeeded, TrustBadQuoteStatus},
		{"unknown bad status", StatusUnknownBadStatus, TrustBadQuoteStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideTrust(tt.status)
			if got != tt.want {
				t.Errorf("DecideTrust(%v) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
