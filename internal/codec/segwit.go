package codec

import (
	"strings"

	kterr "github.com/mrz1836/keytree/pkg/errors"
)

// Witness program limits from BIP141.
const (
	MaxWitnessVersion = 16
	minProgramLen     = 2
	maxProgramLen     = 40
)

// EncodeSegwit encodes a witness version and program as a segwit address.
// Version 0 uses Bech32; versions 1 through 16 use Bech32m.
func EncodeSegwit(hrp string, version byte, program []byte) (string, error) {
	if err := checkProgram(version, program); err != nil {
		return "", err
	}

	conv, err := ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}

	data := make([]byte, 0, 1+len(conv))
	data = append(data, version)
	data = append(data, conv...)

	return Bech32Encode(hrp, data, encodingForVersion(version))
}

// DecodeSegwit parses a segwit address for the expected HRP.
func DecodeSegwit(hrp, addr string) (byte, []byte, error) {
	gotHRP, data, enc, err := Bech32Decode(addr)
	if err != nil {
		return 0, nil, err
	}
	if err := validateHRP(hrp); err != nil {
		return 0, nil, err
	}
	if gotHRP != strings.ToLower(hrp) {
		return 0, nil, kterr.Newf(kterr.ErrMalformedSerialization, "hrp %q does not match %q", gotHRP, hrp)
	}
	if len(data) < 1 {
		return 0, nil, kterr.Newf(kterr.ErrMalformedSerialization, "missing witness version")
	}

	version := data[0]
	if version > MaxWitnessVersion {
		return 0, nil, kterr.Newf(kterr.ErrMalformedSerialization, "witness version %d exceeds %d", version, MaxWitnessVersion)
	}

	program, err := ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return 0, nil, err
	}
	if err := checkProgram(version, program); err != nil {
		return 0, nil, err
	}

	if enc != encodingForVersion(version) {
		return 0, nil, kterr.Newf(kterr.ErrChecksumMismatch,
			"witness version %d requires %s, got %s", version, encodingForVersion(version), enc)
	}

	return version, program, nil
}

func encodingForVersion(version byte) Encoding {
	if version == 0 {
		return Bech32
	}
	return Bech32m
}

func checkProgram(version byte, program []byte) error {
	if version > MaxWitnessVersion {
		return kterr.Newf(kterr.ErrMalformedSerialization, "witness version %d exceeds %d", version, MaxWitnessVersion)
	}
	if len(program) < minProgramLen || len(program) > maxProgramLen {
		return kterr.Newf(kterr.ErrMalformedSerialization, "witness program length %d out of range", len(program))
	}
	if version == 0 && len(program) != 20 && len(program) != 32 {
		return kterr.Newf(kterr.ErrMalformedSerialization, "v0 witness program must be 20 or 32 bytes, got %d", len(program))
	}
	return nil
}
