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
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Binary layout as specified in the Intel Attestation Service API v5 and the
// SGX SDK sgx_report.h / sgx_quote.h headers.
// Endianess: Little Endian (all integer fields)
const (
	EnclaveReportSize = 384
	quoteHeaderSize   = 48
)

// SgxEnclaveReport is the measurement record generated by SGX hardware for a
// single enclave and endorsed by the Quoting Enclave through local
// attestation. Reserved regions of the wire format are validated for presence
// but not retained.
type SgxEnclaveReport struct {
	CPUSVN     [16]byte
	MISCSELECT uint32
	Attributes [16]byte
	MRENCLAVE  [32]byte
	MRSIGNER   [32]byte
	ISVProdID  uint16
	ISVSVN     uint16
	ReportData [64]byte
}

// SgxEpidQuoteSigType is the EPID signature type of quote versions 1 and 2
type SgxEpidQuoteSigType uint16

const (
	SgxQuoteSigTypeUnlinkable SgxEpidQuoteSigType = 0
	SgxQuoteSigTypeLinkable   SgxEpidQuoteSigType = 1
)

func (t SgxEpidQuoteSigType) String() string {
	switch t {
	case SgxQuoteSigTypeUnlinkable:
		return "Unlinkable"
	case SgxQuoteSigTypeLinkable:
		return "Linkable"
	default:
		return fmt.Sprintf("Unknown (%d)", uint16(t))
	}
}

// SgxEcdsaQuoteAkType is the attestation key type of quote version 3
type SgxEcdsaQuoteAkType uint16

const (
	SgxQuoteAkTypeP256 SgxEcdsaQuoteAkType = 2 // ECDSA-256-with-P-256 curve
	SgxQuoteAkTypeP384 SgxEcdsaQuoteAkType = 3 // ECDSA-384-with-P-384 curve
)

func (t SgxEcdsaQuoteAkType) String() string {
	switch t {
	case SgxQuoteAkTypeP256:
		return "P256_256"
	case SgxQuoteAkTypeP384:
		return "P384_384"
	default:
		return fmt.Sprintf("Unknown (%d)", uint16(t))
	}
}

// SgxQuoteVersion is the version discriminant of an SGX quote. It is a closed
// enumeration: the only implementations are SgxQuoteV1, SgxQuoteV2 and
// SgxQuoteV3. The meaning of the two bytes following the version code on the
// wire depends on the variant (EPID signature type for v1/v2, ECDSA
// attestation key type for v3).
type SgxQuoteVersion interface {
	fmt.Stringer
	sgxQuoteVersion()
}

// SgxQuoteV1 is an EPID quote version 1
type SgxQuoteV1 struct {
	SigType SgxEpidQuoteSigType
}

// SgxQuoteV2 is an EPID quote version 2
type SgxQuoteV2 struct {
	SigType SgxEpidQuoteSigType
}

// SgxQuoteV3 is an ECDSA quote version 3
type SgxQuoteV3 struct {
	AkType SgxEcdsaQuoteAkType
}

func (SgxQuoteV1) sgxQuoteVersion() {}
func (SgxQuoteV2) sgxQuoteVersion() {}
func (SgxQuoteV3) sgxQuoteVersion() {}

func (v SgxQuoteV1) String() string { return fmt.Sprintf("V1(%v)", v.SigType) }
func (v SgxQuoteV2) String() string { return fmt.Sprintf("V2(%v)", v.SigType) }
func (v SgxQuoteV3) String() string { return fmt.Sprintf("V3(%v)", v.AkType) }

// SgxQuote is the Quoting-Enclave-endorsed wrapper around an enclave report,
// suitable for verification off-platform
type SgxQuote struct {
	Version          SgxQuoteVersion
	GID              uint32
	QESVN            uint16
	PCESVN           uint16
	QEVendorID       uuid.UUID
	UserData         [20]byte
	ISVEnclaveReport SgxEnclaveReport
}

// byteReader is a cursor over untrusted input. take never reads past the end
// of the buffer and never hands out a slice shorter than requested, so the
// fixed-size copies below cannot panic on truncated input.
type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) take(n int) ([]byte, error) {
	if n <= 0 || len(r.buf)-r.pos < n {
		return nil, fmt.Errorf("%w: unexpected end of data at offset %d (need %d bytes, %d remaining)",
			ErrParse, r.pos, n, len(r.buf)-r.pos)
	}
	ret := r.buf[r.pos : r.pos+n]
	r.pos += n
	return ret, nil
}

func (r *byteReader) takeUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *byteReader) takeUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// rest returns an error unless the cursor consumed the buffer exactly
func (r *byteReader) rest() error {
	if r.pos != len(r.buf) {
		return fmt.Errorf("%w: %d trailing bytes after last field", ErrParse, len(r.buf)-r.pos)
	}
	return nil
}

// DecodeEnclaveReport parses the 384-byte enclave report body. The input must
// be exactly EnclaveReportSize bytes, anything else is a parse error.
func DecodeEnclaveReport(raw []byte) (SgxEnclaveReport, error) {
	var report SgxEnclaveReport

	r := &byteReader{buf: raw}

	// off 0, size 16
	cpuSvn, err := r.take(16)
	if err != nil {
		return SgxEnclaveReport{}, fmt.Errorf("failed to decode CPUSVN: %w", err)
	}
	copy(report.CPUSVN[:], cpuSvn)

	// off 16, size 4
	report.MISCSELECT, err = r.takeUint32()
	if err != nil {
		return SgxEnclaveReport{}, fmt.Errorf("failed to decode MISCSELECT: %w", err)
	}

	// off 20, size 28: reserved
	if _, err := r.take(28); err != nil {
		return SgxEnclaveReport{}, err
	}

	// off 48, size 16
	attributes, err := r.take(16)
	if err != nil {
		return SgxEnclaveReport{}, fmt.Errorf("failed to decode attributes: %w", err)
	}
	copy(report.Attributes[:], attributes)

	// off 64, size 32
	mrEnclave, err := r.take(32)
	if err != nil {
		return SgxEnclaveReport{}, fmt.Errorf("failed to decode MRENCLAVE: %w", err)
	}
	copy(report.MRENCLAVE[:], mrEnclave)

	// off 96, size 32: reserved
	if _, err := r.take(32); err != nil {
		return SgxEnclaveReport{}, err
	}

	// off 128, size 32
	mrSigner, err := r.take(32)
	if err != nil {
		return SgxEnclaveReport{}, fmt.Errorf("failed to decode MRSIGNER: %w", err)
	}
	copy(report.MRSIGNER[:], mrSigner)

	// off 160, size 96: reserved
	if _, err := r.take(96); err != nil {
		return SgxEnclaveReport{}, err
	}

	// off 256, size 2
	report.ISVProdID, err = r.takeUint16()
	if err != nil {
		return SgxEnclaveReport{}, fmt.Errorf("failed to decode ISVProdID: %w", err)
	}

	// off 258, size 2
	report.ISVSVN, err = r.takeUint16()
	if err != nil {
		return SgxEnclaveReport{}, fmt.Errorf("failed to decode ISVSVN: %w", err)
	}

	// off 260, size 60: reserved
	if _, err := r.take(60); err != nil {
		return SgxEnclaveReport{}, err
	}

	// off 320, size 64
	reportData, err := r.take(64)
	if err != nil {
		return SgxEnclaveReport{}, fmt.Errorf("failed to decode report data: %w", err)
	}
	copy(report.ReportData[:], reportData)

	if err := r.rest(); err != nil {
		return SgxEnclaveReport{}, fmt.Errorf("failed to decode enclave report: %w", err)
	}

	return report, nil
}

// DecodeQuote parses an SGX quote as attached to an IAS attestation verdict.
// The version code selects the quote variant; unknown version, signature type
// or attestation key type codes are fatal parse errors, never a default.
func DecodeQuote(raw []byte) (SgxQuote, error) {
	var quote SgxQuote

	r := &byteReader{buf: raw}

	// off 0, size 2 + 2
	versionCode, err := r.takeUint16()
	if err != nil {
		return SgxQuote{}, fmt.Errorf("failed to decode quote version: %w", err)
	}
	typeCode, err := r.takeUint16()
	if err != nil {
		return SgxQuote{}, fmt.Errorf("failed to decode quote signature type: %w", err)
	}
	switch versionCode {
	case 1, 2:
		sigType := SgxEpidQuoteSigType(typeCode)
		if sigType != SgxQuoteSigTypeUnlinkable && sigType != SgxQuoteSigTypeLinkable {
			return SgxQuote{}, fmt.Errorf("%w: invalid v%d quote signature type %d",
				ErrParse, versionCode, typeCode)
		}
		if versionCode == 1 {
			quote.Version = SgxQuoteV1{SigType: sigType}
		} else {
			quote.Version = SgxQuoteV2{SigType: sigType}
		}
	case 3:
		akType := SgxEcdsaQuoteAkType(typeCode)
		if akType != SgxQuoteAkTypeP256 && akType != SgxQuoteAkTypeP384 {
			return SgxQuote{}, fmt.Errorf("%w: invalid v3 quote attestation key type %d",
				ErrParse, typeCode)
		}
		quote.Version = SgxQuoteV3{AkType: akType}
	default:
		return SgxQuote{}, fmt.Errorf("%w: unknown quote version %d", ErrParse, versionCode)
	}

	// off 4, size 4
	quote.GID, err = r.takeUint32()
	if err != nil {
		return SgxQuote{}, fmt.Errorf("failed to decode quote GID: %w", err)
	}

	// off 8, size 2
	quote.QESVN, err = r.takeUint16()
	if err != nil {
		return SgxQuote{}, fmt.Errorf("failed to decode quote QESVN: %w", err)
	}

	// off 10, size 2
	quote.PCESVN, err = r.takeUint16()
	if err != nil {
		return SgxQuote{}, fmt.Errorf("failed to decode quote PCESVN: %w", err)
	}

	// off 12, size 16
	vendorID, err := r.take(16)
	if err != nil {
		return SgxQuote{}, fmt.Errorf("failed to decode quote QE vendor ID: %w", err)
	}
	quote.QEVendorID, err = uuid.FromBytes(vendorID)
	if err != nil {
		return SgxQuote{}, fmt.Errorf("%w: failed to decode quote QE vendor ID: %v", ErrParse, err)
	}

	// off 28, size 20
	userData, err := r.take(20)
	if err != nil {
		return SgxQuote{}, fmt.Errorf("failed to decode quote user data: %w", err)
	}
	copy(quote.UserData[:], userData)

	// off 48, size 384
	reportRaw, err := r.take(EnclaveReportSize)
	if err != nil {
		return SgxQuote{}, fmt.Errorf("failed to decode ISV enclave report: %w", err)
	}
	quote.ISVEnclaveReport, err = DecodeEnclaveReport(reportRaw)
	if err != nil {
		return SgxQuote{}, fmt.Errorf("failed to decode ISV enclave report: %w", err)
	}

	if err := r.rest(); err != nil {
		return SgxQuote{}, fmt.Errorf("failed to decode quote: %w", err)
	}

	return quote, nil
}
