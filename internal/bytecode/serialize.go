package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/aerojs/aerojs/internal/value"
)

// Cache format per §6 "Bytecode caching": a {magic, version, flags}
// header followed by function records. A version or checksum mismatch
// means the cache is simply ignored and the source recompiled — never a
// hard error, since a stale cache must never block execution.
const (
	magic        uint32 = 0x41454A53 // "AEJS"
	cacheVersion uint16 = 1
)

// Marshal serializes f (and its nested function tree) into the cache
// binary format. Encoding is hand-rolled binary/encoding, matching the
// bytecode-cache's own requirement for a compact, checksummed format;
// no pack example reaches for a schema/IDL library (protobuf, flatbuffers)
// for this, and an interpreter's bytecode cache is exactly the kind of
// hot-path, version-gated binary blob encoding/binary is built for.
// The per-instruction Spans table is not written, so a Function read back
// by Unmarshal has no Spans.
func Marshal(f *Function) []byte {
	var body bytes.Buffer
	writeFunction(&body, f)

	checksum := crc32.ChecksumIEEE(body.Bytes())

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, magic)
	binary.Write(&out, binary.LittleEndian, cacheVersion)
	binary.Write(&out, binary.LittleEndian, uint16(0)) // flags, reserved
	binary.Write(&out, binary.LittleEndian, checksum)
	out.Write(body.Bytes())
	return out.Bytes()
}

// Unmarshal decodes a Marshal-produced blob. ok is false (with a nil
// error) whenever the cache should simply be ignored: bad magic, a
// version mismatch, or a checksum failure. err is non-nil only for a
// truncated/corrupt stream that can't even be framed.
func Unmarshal(data []byte) (f *Function, ok bool, err error) {
	r := bytes.NewReader(data)
	var gotMagic uint32
	var version, flags uint16
	var checksum uint32
	if err := binary.Read(r, binary.LittleEndian, &gotMagic); err != nil {
		return nil, false, err
	}
	if gotMagic != magic {
		return nil, false, nil
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, false, err
	}
	if version != cacheVersion {
		return nil, false, nil
	}
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, false, err
	}
	_ = flags
	if err := binary.Read(r, binary.LittleEndian, &checksum); err != nil {
		return nil, false, err
	}
	rest := data[len(data)-r.Len():]
	if crc32.ChecksumIEEE(rest) != checksum {
		return nil, false, nil
	}
	body := bytes.NewReader(rest)
	fn, err := readFunction(body)
	if err != nil {
		return nil, false, err
	}
	return fn, true, nil
}

func writeFunction(w *bytes.Buffer, f *Function) {
	writeString(w, f.Name)
	binary.Write(w, binary.LittleEndian, int32(f.ParamCount))
	binary.Write(w, binary.LittleEndian, int32(f.NumRegisters))
	writeBool(w, f.IsArrow)
	writeBool(w, f.IsStrict)

	binary.Write(w, binary.LittleEndian, int32(len(f.ICNames)))
	for _, n := range f.ICNames {
		binary.Write(w, binary.LittleEndian, n)
	}

	binary.Write(w, binary.LittleEndian, int32(len(f.Constants)))
	for _, c := range f.Constants {
		writeConstant(w, c)
	}

	binary.Write(w, binary.LittleEndian, int32(len(f.Code)))
	for _, ins := range f.Code {
		binary.Write(w, binary.LittleEndian, uint32(ins))
	}

	binary.Write(w, binary.LittleEndian, int32(len(f.Handlers)))
	for _, h := range f.Handlers {
		binary.Write(w, binary.LittleEndian, int32(h.TryStart))
		binary.Write(w, binary.LittleEndian, int32(h.TryEnd))
		binary.Write(w, binary.LittleEndian, int32(h.Target))
		binary.Write(w, binary.LittleEndian, uint8(h.Kind))
		binary.Write(w, binary.LittleEndian, int32(h.Register))
		binary.Write(w, binary.LittleEndian, int32(h.FinallyEnd))
	}

	binary.Write(w, binary.LittleEndian, int32(len(f.Inner)))
	for _, inner := range f.Inner {
		writeFunction(w, inner)
	}
}

func readFunction(r *bytes.Reader) (*Function, error) {
	f := &Function{}
	var err error
	if f.Name, err = readString(r); err != nil {
		return nil, err
	}
	var i32 int32
	if err = binary.Read(r, binary.LittleEndian, &i32); err != nil {
		return nil, err
	}
	f.ParamCount = int(i32)
	if err = binary.Read(r, binary.LittleEndian, &i32); err != nil {
		return nil, err
	}
	f.NumRegisters = int(i32)
	if f.IsArrow, err = readBool(r); err != nil {
		return nil, err
	}
	if f.IsStrict, err = readBool(r); err != nil {
		return nil, err
	}

	var n int32
	if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	f.ICNames = make([]uint16, n)
	for i := range f.ICNames {
		if err = binary.Read(r, binary.LittleEndian, &f.ICNames[i]); err != nil {
			return nil, err
		}
	}
	if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	f.Constants = make([]value.Value, n)
	for i := range f.Constants {
		if f.Constants[i], err = readConstant(r); err != nil {
			return nil, err
		}
	}

	if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	f.Code = make([]Instruction, n)
	for i := range f.Code {
		var word uint32
		if err = binary.Read(r, binary.LittleEndian, &word); err != nil {
			return nil, err
		}
		f.Code[i] = Instruction(word)
	}

	if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	f.Handlers = make([]ExceptionHandler, n)
	for i := range f.Handlers {
		var start, end, target, reg, finallyEnd int32
		var kind uint8
		if err = binary.Read(r, binary.LittleEndian, &start); err != nil {
			return nil, err
		}
		if err = binary.Read(r, binary.LittleEndian, &end); err != nil {
			return nil, err
		}
		if err = binary.Read(r, binary.LittleEndian, &target); err != nil {
			return nil, err
		}
		if err = binary.Read(r, binary.LittleEndian, &kind); err != nil {
			return nil, err
		}
		if err = binary.Read(r, binary.LittleEndian, &reg); err != nil {
			return nil, err
		}
		if err = binary.Read(r, binary.LittleEndian, &finallyEnd); err != nil {
			return nil, err
		}
		f.Handlers[i] = ExceptionHandler{
			TryStart: int(start), TryEnd: int(end), Target: int(target),
			Kind: HandlerKind(kind), Register: int(reg), FinallyEnd: int(finallyEnd),
		}
	}

	if err = binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	f.Inner = make([]*Function, n)
	for i := range f.Inner {
		if f.Inner[i], err = readFunction(r); err != nil {
			return nil, err
		}
	}
	return f, nil
}

const (
	tagUndefined uint8 = iota
	tagNull
	tagBoolean
	tagNumber
	tagString
)

func writeConstant(w *bytes.Buffer, v value.Value) {
	switch t := v.(type) {
	case value.Boolean:
		w.WriteByte(tagBoolean)
		writeBool(w, bool(t))
	case value.Number:
		w.WriteByte(tagNumber)
		binary.Write(w, binary.LittleEndian, float64(t))
	case value.String:
		w.WriteByte(tagString)
		writeString(w, string(t))
	default:
		w.WriteByte(tagUndefined)
	}
}

func readConstant(r *bytes.Reader) (value.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagNull:
		return value.Null, nil
	case tagBoolean:
		b, err := readBool(r)
		return value.Boolean(b), err
	case tagNumber:
		var f float64
		err := binary.Read(r, binary.LittleEndian, &f)
		return value.Number(f), err
	case tagString:
		s, err := readString(r)
		return value.String(s), err
	case tagUndefined:
		return value.Undefined, nil
	default:
		return nil, fmt.Errorf("bytecode: unknown constant tag %d", tag)
	}
}

func writeString(w *bytes.Buffer, s string) {
	binary.Write(w, binary.LittleEndian, int32(len(s)))
	w.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := r.Read(buf); err != nil && n > 0 {
		return "", err
	}
	return string(buf), nil
}

func writeBool(w *bytes.Buffer, b bool) {
	if b {
		w.WriteByte(1)
	} else {
		w.WriteByte(0)
	}
}

func readBool(r *bytes.Reader) (bool, error) {
	b, err := r.ReadByte()
	return b != 0, err
}
