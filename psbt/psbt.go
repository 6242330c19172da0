// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package psbt implements the Partially Signed Bitcoin Transaction
// container of spec §4.7: a versioned sequence of Maps (one Global map,
// one per input, one per output), each holding typed Fields, serialized
// per BIP 174/370.
package psbt

import (
	"bytes"

	"github.com/pkt-cash/btccore/er"
	"github.com/pkt-cash/btccore/wire"

	"github.com/jedib0t/go-pretty/table"
)

var PsbtError = er.TransactionErrorType.Code("Psbt",
	"malformed or invalid PSBT")

// Magic is the four-byte signature plus 0xff separator that opens every
// serialized PSBT.
var Magic = [5]byte{0x70, 0x73, 0x62, 0x74, 0xff}

// Scope names which of a PSBT's three map kinds a field belongs to.
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeInput
	ScopeOutput
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeInput:
		return "input"
	case ScopeOutput:
		return "output"
	default:
		return "unknown"
	}
}

// Global field type codes (BIP174/BIP370).
const (
	PSBT_GLOBAL_UNSIGNED_TX   byte = 0x00
	PSBT_GLOBAL_XPUB          byte = 0x01
	PSBT_GLOBAL_VERSION       byte = 0xfb
	PSBT_GLOBAL_INPUT_COUNT   byte = 0x04
	PSBT_GLOBAL_OUTPUT_COUNT  byte = 0x05
)

// Input field type codes.
const (
	PSBT_IN_NON_WITNESS_UTXO byte = 0x00
	PSBT_IN_WITNESS_UTXO     byte = 0x01
	PSBT_IN_PARTIAL_SIG      byte = 0x02
	PSBT_IN_SIGHASH_TYPE     byte = 0x03
	PSBT_IN_REDEEM_SCRIPT    byte = 0x04
	PSBT_IN_WITNESS_SCRIPT   byte = 0x05
	PSBT_IN_PREVIOUS_TXID    byte = 0x0e
	PSBT_IN_OUTPUT_INDEX     byte = 0x0f
	PSBT_IN_SEQUENCE         byte = 0x10
)

// Output field type codes.
const (
	PSBT_OUT_REDEEM_SCRIPT  byte = 0x00
	PSBT_OUT_WITNESS_SCRIPT byte = 0x01
	PSBT_OUT_AMOUNT         byte = 0x03
	PSBT_OUT_SCRIPT         byte = 0x04
)

// FieldStatus is a field's presence requirement at one PSBT version.
type FieldStatus int

const (
	// Absent: the field has no meaning at this version; check() does not
	// reject an Absent field that is present.
	Absent FieldStatus = iota
	// Available: the field may be present or not.
	Available
	// Required: check() fails if the field is missing.
	Required
)

// FieldType names one PSBT field: its scope, numeric code, whether it is
// keyed by KeyData (repeatable, e.g. one entry per xpub or per pubkey), and
// its presence requirement at each PSBT version this package supports.
// This is the data-model table spec §4.7 calls for, in place of per-field
// presence checks scattered through check().
type FieldType struct {
	Name    string
	Code    byte
	Scope   Scope
	Keyed   bool
	StatusV0 FieldStatus
	StatusV2 FieldStatus
}

// StatusFor returns ft's presence requirement at the given PSBT version.
func (ft FieldType) StatusFor(version uint32) FieldStatus {
	switch version {
	case 0:
		return ft.StatusV0
	case 2:
		return ft.StatusV2
	default:
		return Absent
	}
}

// FieldTypes is the complete field catalog this package recognizes, driving
// check()'s required-field validation generically rather than per-field.
var FieldTypes = []FieldType{
	{Name: "PSBT_GLOBAL_UNSIGNED_TX", Code: PSBT_GLOBAL_UNSIGNED_TX, Scope: ScopeGlobal, StatusV0: Required, StatusV2: Absent},
	{Name: "PSBT_GLOBAL_XPUB", Code: PSBT_GLOBAL_XPUB, Scope: ScopeGlobal, Keyed: true, StatusV0: Available, StatusV2: Available},
	{Name: "PSBT_GLOBAL_VERSION", Code: PSBT_GLOBAL_VERSION, Scope: ScopeGlobal, StatusV0: Absent, StatusV2: Required},
	{Name: "PSBT_GLOBAL_INPUT_COUNT", Code: PSBT_GLOBAL_INPUT_COUNT, Scope: ScopeGlobal, StatusV0: Absent, StatusV2: Required},
	{Name: "PSBT_GLOBAL_OUTPUT_COUNT", Code: PSBT_GLOBAL_OUTPUT_COUNT, Scope: ScopeGlobal, StatusV0: Absent, StatusV2: Required},

	{Name: "PSBT_IN_NON_WITNESS_UTXO", Code: PSBT_IN_NON_WITNESS_UTXO, Scope: ScopeInput, StatusV0: Available, StatusV2: Available},
	{Name: "PSBT_IN_WITNESS_UTXO", Code: PSBT_IN_WITNESS_UTXO, Scope: ScopeInput, StatusV0: Available, StatusV2: Available},
	{Name: "PSBT_IN_PARTIAL_SIG", Code: PSBT_IN_PARTIAL_SIG, Scope: ScopeInput, Keyed: true, StatusV0: Available, StatusV2: Available},
	{Name: "PSBT_IN_SIGHASH_TYPE", Code: PSBT_IN_SIGHASH_TYPE, Scope: ScopeInput, StatusV0: Available, StatusV2: Available},
	{Name: "PSBT_IN_REDEEM_SCRIPT", Code: PSBT_IN_REDEEM_SCRIPT, Scope: ScopeInput, StatusV0: Available, StatusV2: Available},
	{Name: "PSBT_IN_WITNESS_SCRIPT", Code: PSBT_IN_WITNESS_SCRIPT, Scope: ScopeInput, StatusV0: Available, StatusV2: Available},
	{Name: "PSBT_IN_PREVIOUS_TXID", Code: PSBT_IN_PREVIOUS_TXID, Scope: ScopeInput, StatusV0: Absent, StatusV2: Required},
	{Name: "PSBT_IN_OUTPUT_INDEX", Code: PSBT_IN_OUTPUT_INDEX, Scope: ScopeInput, StatusV0: Absent, StatusV2: Required},
	{Name: "PSBT_IN_SEQUENCE", Code: PSBT_IN_SEQUENCE, Scope: ScopeInput, StatusV0: Absent, StatusV2: Available},

	{Name: "PSBT_OUT_REDEEM_SCRIPT", Code: PSBT_OUT_REDEEM_SCRIPT, Scope: ScopeOutput, StatusV0: Available, StatusV2: Available},
	{Name: "PSBT_OUT_WITNESS_SCRIPT", Code: PSBT_OUT_WITNESS_SCRIPT, Scope: ScopeOutput, StatusV0: Available, StatusV2: Available},
	{Name: "PSBT_OUT_AMOUNT", Code: PSBT_OUT_AMOUNT, Scope: ScopeOutput, StatusV0: Absent, StatusV2: Required},
	{Name: "PSBT_OUT_SCRIPT", Code: PSBT_OUT_SCRIPT, Scope: ScopeOutput, StatusV0: Absent, StatusV2: Required},
}

// Field is one (type code, optional key data, value) record within a Map.
type Field struct {
	Code    byte
	KeyData []byte
	Value   []byte
}

// Map is an ordered set of Fields sharing one Scope, per spec §4.7.
type Map struct {
	Scope  Scope
	Fields []Field
}

// AddField appends a field, failing on a duplicate (type, key) identity
// within this map, per spec §4.7's check() rule.
func (m *Map) AddField(code byte, keyData, value []byte) er.R {
	f := Field{Code: code, KeyData: keyData, Value: value}
	for _, existing := range m.Fields {
		if existing.Code == code && bytes.Equal(existing.KeyData, keyData) {
			return PsbtError.New("duplicate field in PSBT map")
		}
	}
	m.Fields = append(m.Fields, f)
	return nil
}

// GetField returns the first field matching (code, keyData), if present.
func (m *Map) GetField(code byte, keyData []byte) (*Field, bool) {
	for i := range m.Fields {
		if m.Fields[i].Code == code && bytes.Equal(m.Fields[i].KeyData, keyData) {
			return &m.Fields[i], true
		}
	}
	return nil, false
}

// GetAllFields returns every field with the given type code, regardless of
// key data (used for repeatable fields like PSBT_GLOBAL_XPUB).
func (m *Map) GetAllFields(code byte) []Field {
	var out []Field
	for _, f := range m.Fields {
		if f.Code == code {
			out = append(out, f)
		}
	}
	return out
}

// Psbt is a full container: exactly one Global map, one Input map per
// transaction input, one Output map per transaction output, per spec §4.7.
type Psbt struct {
	Version uint32
	Global  Map
	Inputs  []Map
	Outputs []Map
}

// New returns an empty v0 or v2 PSBT shell (callers populate the required
// fields before Serialize/check).
func New(version uint32) *Psbt {
	return &Psbt{
		Version: version,
		Global:  Map{Scope: ScopeGlobal},
	}
}

// check validates that every field the declared version requires is
// present (driven by FieldTypes's version-status table), and that the
// cross-field invariants spec §4.7 names for version 0 hold.
func (p *Psbt) check() er.R {
	if p.Version != 0 && p.Version != 2 {
		return PsbtError.New("unsupported PSBT version")
	}

	if err := checkRequired(&p.Global, ScopeGlobal, p.Version, -1); err != nil {
		return err
	}
	for i := range p.Inputs {
		if err := checkRequired(&p.Inputs[i], ScopeInput, p.Version, i); err != nil {
			return err
		}
	}
	for i := range p.Outputs {
		if err := checkRequired(&p.Outputs[i], ScopeOutput, p.Version, i); err != nil {
			return err
		}
	}

	if p.Version == 0 {
		f, _ := p.Global.GetField(PSBT_GLOBAL_UNSIGNED_TX, nil)
		var tx wire.MsgTx
		if err := tx.DeserializeNoWitness(bytes.NewReader(f.Value)); err != nil {
			return err
		}
		if len(tx.TxIn) != len(p.Inputs) {
			return PsbtError.New("PSBT_GLOBAL_UNSIGNED_TX input count does not match Input map count")
		}
		if len(tx.TxOut) != len(p.Outputs) {
			return PsbtError.New("PSBT_GLOBAL_UNSIGNED_TX output count does not match Output map count")
		}
		for _, in := range tx.TxIn {
			if len(in.SignatureScript) != 0 {
				return PsbtError.New("version 0 unsigned tx must carry empty signature scripts")
			}
		}
		if tx.HasWitness() {
			return PsbtError.New("version 0 unsigned tx must carry no witness data")
		}
	}
	return nil
}

// checkRequired fails if m is missing any field FieldTypes marks Required
// for scope at version. index is the input/output position for error
// messages, or -1 for the Global map.
func checkRequired(m *Map, scope Scope, version uint32, index int) er.R {
	for _, ft := range FieldTypes {
		if ft.Scope != scope || ft.StatusFor(version) != Required {
			continue
		}
		if _, ok := m.GetField(ft.Code, nil); !ok {
			where := scope.String()
			if index >= 0 {
				where += " " + itoa(index)
			}
			return PsbtError.New("version " + itoa(int(version)) + " " + where + " missing " + ft.Name)
		}
	}
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Serialize validates p and writes its bit-exact BIP174/370 wire form.
func (p *Psbt) Serialize() ([]byte, er.R) {
	if err := p.check(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(Magic[:])
	if err := writeMap(&buf, &p.Global); err != nil {
		return nil, err
	}
	for i := range p.Inputs {
		if err := writeMap(&buf, &p.Inputs[i]); err != nil {
			return nil, err
		}
	}
	for i := range p.Outputs {
		if err := writeMap(&buf, &p.Outputs[i]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeMap(buf *bytes.Buffer, m *Map) er.R {
	for _, f := range m.Fields {
		key := append([]byte{f.Code}, f.KeyData...)
		if err := wire.WriteVarBytes(buf, key); err != nil {
			return err
		}
		if err := wire.WriteVarBytes(buf, f.Value); err != nil {
			return err
		}
	}
	buf.WriteByte(0x00)
	return nil
}

// FromSerialized parses a complete PSBT byte stream: magic, one Global map,
// inputCount Input maps, outputCount Output maps. When the Global map holds
// an unsigned transaction, its input and output counts replace the
// inputCount and outputCount arguments.
func FromSerialized(data []byte, inputCount, outputCount int) (*Psbt, er.R) {
	if len(data) < len(Magic) || !bytes.Equal(data[:len(Magic)], Magic[:]) {
		return nil, PsbtError.New("missing or incorrect PSBT magic bytes")
	}
	r := bytes.NewReader(data[len(Magic):])

	global, err := readMap(r, ScopeGlobal)
	if err != nil {
		return nil, err
	}
	p := &Psbt{Global: *global}

	if f, ok := global.GetField(PSBT_GLOBAL_VERSION, nil); ok && len(f.Value) == 4 {
		p.Version = uint32(f.Value[0]) | uint32(f.Value[1])<<8 | uint32(f.Value[2])<<16 | uint32(f.Value[3])<<24
	}

	if _, ok := global.GetField(PSBT_GLOBAL_UNSIGNED_TX, nil); ok {
		var tx wire.MsgTx
		txField, _ := global.GetField(PSBT_GLOBAL_UNSIGNED_TX, nil)
		if err := tx.DeserializeNoWitness(bytes.NewReader(txField.Value)); err != nil {
			return nil, err
		}
		inputCount = len(tx.TxIn)
		outputCount = len(tx.TxOut)
	}

	for i := 0; i < inputCount; i++ {
		m, err := readMap(r, ScopeInput)
		if err != nil {
			return nil, err
		}
		p.Inputs = append(p.Inputs, *m)
	}
	for i := 0; i < outputCount; i++ {
		m, err := readMap(r, ScopeOutput)
		if err != nil {
			return nil, err
		}
		p.Outputs = append(p.Outputs, *m)
	}

	if err := p.check(); err != nil {
		return nil, err
	}
	return p, nil
}

func readMap(r *bytes.Reader, scope Scope) (*Map, er.R) {
	m := &Map{Scope: scope}
	for {
		if r.Len() == 0 {
			return nil, PsbtError.New("truncated PSBT stream: map not terminated")
		}
		peeked, err := r.ReadByte()
		if err != nil {
			return nil, er.E(err)
		}
		if peeked == 0x00 {
			return m, nil
		}
		if err := r.UnreadByte(); err != nil {
			return nil, er.E(err)
		}
		key, errr := wire.ReadVarBytes(r, MaxFieldSize, "PSBT field key")
		if errr != nil {
			return nil, errr
		}
		if len(key) == 0 {
			return nil, PsbtError.New("empty PSBT field key")
		}
		value, errr := wire.ReadVarBytes(r, MaxFieldSize, "PSBT field value")
		if errr != nil {
			return nil, errr
		}
		if err := m.AddField(key[0], key[1:], value); err != nil {
			return nil, err
		}
	}
}

// MaxFieldSize bounds a single PSBT field's key or value length, a sanity
// limit rather than a consensus one.
const MaxFieldSize = 4 << 20

// Dump renders p as a human-readable table via go-pretty, one row per
// field across every map, per spec §4.7's caller-facing Dump() API.
func (p *Psbt) Dump() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Scope", "Index", "Code", "KeyData", "Value (bytes)"})
	for _, f := range p.Global.Fields {
		t.AppendRow(table.Row{"global", "-", f.Code, len(f.KeyData), len(f.Value)})
	}
	for i, m := range p.Inputs {
		for _, f := range m.Fields {
			t.AppendRow(table.Row{"input", i, f.Code, len(f.KeyData), len(f.Value)})
		}
	}
	for i, m := range p.Outputs {
		for _, f := range m.Fields {
			t.AppendRow(table.Row{"output", i, f.Code, len(f.KeyData), len(f.Value)})
		}
	}
	return t.Render()
}
