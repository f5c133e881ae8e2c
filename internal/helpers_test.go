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

package internal

import "testing"

func TestContains(t *testing.T) {
	list := []string{"INTEL-SA-00334", "INTEL-SA-00219"}

	if !Contains("INTEL-SA-00334", list) {
		t.Error("expected exact match")
	}
	if !Contains("intel-sa-00219", list) {
		t.Error("expected case insensitive match")
	}
	if Contains("INTEL-SA-99999", list) {
		t.Error("unexpected match")
	}
	if Contains("", nil) {
		t.Error("unexpected match on empty list")
	}
}
