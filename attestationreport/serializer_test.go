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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSerialization(t *testing.T) {
	envelope := EndorsedAttestationReport{
		Report:      []byte(`{"version":5}`),
		Signature:   []byte{0x01, 0x02},
		SigningCert: []byte{0x30, 0x82},
	}

	jsonData, err := (JsonSerializer{}).Marshal(envelope)
	require.NoError(t, err)
	cborData, err := (CborSerializer{}).Marshal(envelope)
	require.NoError(t, err)

	s, err := DetectSerialization(jsonData)
	require.NoError(t, err)
	assert.Equal(t, "JSON", s.String())

	s, err = DetectSerialization(cborData)
	require.NoError(t, err)
	assert.Equal(t, "CBOR", s.String())

	_, err = DetectSerialization([]byte{0xff, 0xfe})
	assert.Error(t, err)
}

func TestEndorsedReportRoundTrip(t *testing.T) {
	envelope := EndorsedAttestationReport{
		Report:      []byte(`{"version":5,"isvEnclaveQuoteStatus":"OK"}`),
		Signature:   make([]byte, 256),
		SigningCert: []byte{0x30, 0x82, 0x01, 0x02},
	}

	for _, s := range []Serializer{JsonSerializer{}, CborSerializer{}} {
		data, err := s.Marshal(envelope)
		require.NoError(t, err, s.String())

		var decoded EndorsedAttestationReport
		require.NoError(t, s.Unmarshal(data, &decoded), s.String())
		assert.Equal(t, envelope, decoded, s.String())
	}
}
