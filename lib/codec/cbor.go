// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	// any-typed targets decode maps as map[string]any so diagnostic
	// tooling can hand them to encoding/json unchanged.
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v deterministically.
func Marshal(v any) ([]byte, error) { return encMode.Marshal(v) }

// Unmarshal decodes data into v. Unknown fields are ignored.
func Unmarshal(data []byte, v any) error { return decMode.Unmarshal(data, v) }

// Encoder and Decoder are aliases so callers import only this package.
type (
	Encoder = cbor.Encoder
	Decoder = cbor.Decoder
)

// NewEncoder returns a stream encoder writing one item per Encode.
func NewEncoder(w io.Writer) *Encoder { return encMode.NewEncoder(w) }

// NewDecoder returns a stream decoder reading one item per Decode.
func NewDecoder(r io.Reader) *Decoder { return decMode.NewDecoder(r) }

// DiagnoseFirst renders the first item of a CBOR sequence in
// diagnostic notation (RFC 8949 §8) and returns the bytes after it.
func DiagnoseFirst(data []byte) (string, []byte, error) {
	return cbor.DiagnoseFirst(data)
}
