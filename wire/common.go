// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the Bitcoin wire serialization of transactions:
// the compactsize varint, little-endian fixed-width ints, and the
// version/inputs/outputs/witness/locktime layout of spec §6.
package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkt-cash/btccore/er"
)

var MessageError = er.TransactionErrorType.Code("Transaction",
	"malformed transaction wire encoding")

func messageError(op, reason string) er.R {
	return MessageError.New(op + ": " + reason)
}

// MaxMessagePayload is a sanity ceiling on any single varint-prefixed field
// read off the wire, guarding against memory-exhaustion from a corrupt or
// hostile byte stream.
const MaxMessagePayload = 32 * 1024 * 1024

// ReadVarInt reads a compactsize integer: a single byte if < 0xfd, else a
// marker byte (0xfd/0xfe/0xff) followed by a 2/4/8-byte little-endian
// integer, per spec §3.
func ReadVarInt(r io.Reader) (uint64, er.R) {
	var prefix [1]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return 0, er.E(err)
	}
	switch prefix[0] {
	case 0xff:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, er.E(err)
		}
		v := binary.LittleEndian.Uint64(b[:])
		if v <= 0xffffffff {
			return 0, messageError("ReadVarInt", "non-canonical varint encoding")
		}
		return v, nil
	case 0xfe:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, er.E(err)
		}
		v := uint64(binary.LittleEndian.Uint32(b[:]))
		if v <= 0xffff {
			return 0, messageError("ReadVarInt", "non-canonical varint encoding")
		}
		return v, nil
	case 0xfd:
		var b [2]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, er.E(err)
		}
		v := uint64(binary.LittleEndian.Uint16(b[:]))
		if v < 0xfd {
			return 0, messageError("ReadVarInt", "non-canonical varint encoding")
		}
		return v, nil
	default:
		return uint64(prefix[0]), nil
	}
}

// WriteVarInt writes val using the compactsize encoding.
func WriteVarInt(w io.Writer, val uint64) er.R {
	switch {
	case val < 0xfd:
		_, err := w.Write([]byte{byte(val)})
		return er.E(err)
	case val <= 0xffff:
		var b [3]byte
		b[0] = 0xfd
		binary.LittleEndian.PutUint16(b[1:], uint16(val))
		_, err := w.Write(b[:])
		return er.E(err)
	case val <= 0xffffffff:
		var b [5]byte
		b[0] = 0xfe
		binary.LittleEndian.PutUint32(b[1:], uint32(val))
		_, err := w.Write(b[:])
		return er.E(err)
	default:
		var b [9]byte
		b[0] = 0xff
		binary.LittleEndian.PutUint64(b[1:], val)
		_, err := w.Write(b[:])
		return er.E(err)
	}
}

// VarIntSerializeSize returns the number of bytes WriteVarInt would use to
// encode val.
func VarIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= 0xffff:
		return 3
	case val <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// ReadVarBytes reads a varint-length-prefixed byte string, capped at
// maxAllowed bytes to bound allocation from malformed input.
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, er.R) {
	n, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if n > maxAllowed {
		return nil, messageError("ReadVarBytes", fieldName+" is larger than the max allowed size")
	}
	b := make([]byte, n)
	if _, errr := io.ReadFull(r, b); errr != nil {
		return nil, er.E(errr)
	}
	return b, nil
}

// WriteVarBytes writes b as a varint length prefix followed by its bytes.
func WriteVarBytes(w io.Writer, b []byte) er.R {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	_, err := w.Write(b)
	return er.E(err)
}

func readUint32LE(r io.Reader) (uint32, er.R) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, er.E(err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func writeUint32LE(w io.Writer, v uint32) er.R {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return er.E(err)
}

func readUint64LE(r io.Reader) (uint64, er.R) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, er.E(err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func writeUint64LE(w io.Writer, v uint64) er.R {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.Write(b[:])
	return er.E(err)
}
