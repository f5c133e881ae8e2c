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

import "time"

// EcdsaQuoteVerifier verifies ECDSA (DCAP) quotes against separately supplied
// collateral at a given reference instant. Platforms attesting through the
// data center attestation path provide an implementation of this interface;
// the EPID verification performed by this package does not use it.
type EcdsaQuoteVerifier interface {
	VerifyQuoteECDSA(quote []byte, collateral []byte, at time.Time) error
}
