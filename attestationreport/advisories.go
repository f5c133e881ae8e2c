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
	"github.com/enclavetrust/attest/internal"
)

// AdvisoryIDs is the ordered list of security advisory identifiers reported
// by the attestation service for the quoted platform
type AdvisoryIDs []string

// AdvisoryPolicy selects which advisories are tolerated. The policy is chosen
// explicitly by the caller or build pipeline instead of compile-time
// conditionals, so the same binary can serve both modes.
type AdvisoryPolicy struct {
	// Allowed advisories do not count as vulnerabilities
	Allowed []string
}

// Advisories tolerated on hardware platforms. Development and production
// currently share the same list.
var allowedAdvisories = []string{
	"INTEL-SA-00334",
	"INTEL-SA-00219",
	"INTEL-SA-00615",
	"INTEL-SA-00657",
	"INTEL-SA-00767",
}

// Remediation notes for advisories that require operator action
var advisoryDescriptions = map[string]string{
	"INTEL-SA-00161": "You must disable hyperthreading in the BIOS",
	"INTEL-SA-00289": "You must disable overclocking/undervolting in the BIOS",
}

// DevelopmentAdvisoryPolicy returns the advisory allow-list for hardware
// development deployments
func DevelopmentAdvisoryPolicy() AdvisoryPolicy {
	return AdvisoryPolicy{Allowed: allowedAdvisories}
}

// ProductionAdvisoryPolicy returns the advisory allow-list for hardware
// production deployments
func ProductionAdvisoryPolicy() AdvisoryPolicy {
	return AdvisoryPolicy{Allowed: allowedAdvisories}
}

// Vulnerable returns the advisories not covered by the policy's allow-list.
// Each unresolved advisory is followed by its remediation note when one is
// known. An empty result means every reported advisory is tolerated.
func (a AdvisoryIDs) Vulnerable(policy AdvisoryPolicy) []string {
	var vulnerable []string
	for _, id := range a {
		if internal.Contains(id, policy.Allowed) {
			continue
		}
		vulnerable = append(vulnerable, id)
		if desc, ok := advisoryDescriptions[id]; ok {
			vulnerable = append(vulnerable, desc)
		}
	}
	return vulnerable
}
