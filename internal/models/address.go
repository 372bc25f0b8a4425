/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// AddressLength is the size in bytes of identities and campaign addresses.
const AddressLength = 32

// Address identifies an account on the ledger: a signer identity or a
// campaign record.
type Address [AddressLength]byte

// ParseAddress decodes the 64 character hex form produced by Address.String.
func ParseAddress(s string) (Address, error) {
	var addr Address
	raw, err := hex.DecodeString(s)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(raw) != AddressLength {
		return addr, fmt.Errorf("invalid address %q: expected %d bytes, got %d", s, AddressLength, len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

// IdentityFromSeed derives a stable development identity from a label.
// Used by the CLIs so operators can refer to "alice" instead of raw keys.
func IdentityFromSeed(seed string) Address {
	return Address(sha256.Sum256([]byte("identity:" + seed)))
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Short returns an abbreviated form for console output.
func (a Address) Short() string {
	s := a.String()
	return s[:8] + "..." + s[len(s)-4:]
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
