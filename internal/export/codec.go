// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package export

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Encoding selects the payload format.
type Encoding string

const (
	JSON Encoding = "json"
	CBOR Encoding = "cbor"
)

// ContentType returns the MIME type for e.
func (e Encoding) ContentType() string {
	if e == CBOR {
		return "application/cbor"
	}
	return "application/json"
}

// Encode serializes r.
func Encode(e Encoding, r Record) ([]byte, error) {
	switch e {
	case JSON:
		return json.Marshal(r)
	case CBOR:
		data, err := cbor.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("failed to encode CBOR: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", e)
	}
}

// Decode is the inverse of Encode.
func Decode(e Encoding, data []byte) (Record, error) {
	var r Record
	switch e {
	case JSON:
		if err := json.Unmarshal(data, &r); err != nil {
			return Record{}, err
		}
	case CBOR:
		if err := cbor.Unmarshal(data, &r); err != nil {
			return Record{}, fmt.Errorf("failed to decode CBOR: %w", err)
		}
	default:
		return Record{}, fmt.Errorf("unknown encoding %q", e)
	}
	return r, nil
}
