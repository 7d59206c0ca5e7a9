// Package wdlfile implements the on-disk table format: a small header
// (magic, version, material key) followed by a compress.Compressed
// payload, all integers little-endian.
package wdlfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"bitbucket.org/zurichess/heisenbase/compress"
	"bitbucket.org/zurichess/heisenbase/material"
	"bitbucket.org/zurichess/heisenbase/score"
)

const (
	magic         = "HBWD"
	formatVersion = 1
)

// ErrFormat is returned for any malformed file: bad magic, unsupported
// version, or a structurally truncated payload.
var ErrFormat = errors.New("wdlfile: malformed table file")

// Table is a fully decoded .hbt file: the material key it was built for
// and the WDL value at every index.
type Table struct {
	Material  material.MaterialKey
	Positions []score.WdlScoreRange
}

// Write encodes t and writes it to w in the format described by the
// table file header and payload layout.
func Write(w io.Writer, t Table) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(magic); err != nil {
		return err
	}
	if err := bw.WriteByte(formatVersion); err != nil {
		return err
	}

	keyStr := t.Material.String()
	if len(keyStr) > 255 {
		return fmt.Errorf("wdlfile: material key string %q exceeds 255 bytes", keyStr)
	}
	if err := bw.WriteByte(byte(len(keyStr))); err != nil {
		return err
	}
	if _, err := bw.WriteString(keyStr); err != nil {
		return err
	}

	if err := writeUint64(bw, uint64(len(t.Positions))); err != nil {
		return err
	}

	c := compress.Compress(t.Positions)
	if err := writePayload(bw, c); err != nil {
		return err
	}

	return bw.Flush()
}

func writePayload(w *bufio.Writer, c compress.Compressed) error {
	if err := writeUint16(w, c.BaseSymbols); err != nil {
		return err
	}
	if err := writeUint16(w, uint16(len(c.SymPairs))); err != nil {
		return err
	}
	for _, p := range c.SymPairs {
		if err := writeUint16(w, p[0]); err != nil {
			return err
		}
		if err := writeUint16(w, p[1]); err != nil {
			return err
		}
	}

	if err := writeUint16(w, uint16(len(c.CodeLens))); err != nil {
		return err
	}
	if _, err := w.Write(c.CodeLens); err != nil {
		return err
	}

	if err := writeUint64(w, uint64(c.BitLen)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(c.Bitstream))); err != nil {
		return err
	}
	if _, err := w.Write(c.Bitstream); err != nil {
		return err
	}
	return nil
}

func writeUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// Read decodes a table file from r and verifies its embedded material key
// equals wantKey. Readers must check both magic/version and the embedded
// key before trusting the payload; this function does both.
func Read(r io.Reader, wantKey material.MaterialKey) (Table, error) {
	br := bufio.NewReader(r)

	var magicBuf [4]byte
	if _, err := io.ReadFull(br, magicBuf[:]); err != nil {
		return Table{}, fmt.Errorf("%w: reading magic: %v", ErrFormat, err)
	}
	if string(magicBuf[:]) != magic {
		return Table{}, fmt.Errorf("%w: bad magic %q", ErrFormat, magicBuf[:])
	}

	version, err := br.ReadByte()
	if err != nil {
		return Table{}, fmt.Errorf("%w: reading version: %v", ErrFormat, err)
	}
	if version != formatVersion {
		return Table{}, fmt.Errorf("%w: unsupported version %d", ErrFormat, version)
	}

	keyLen, err := br.ReadByte()
	if err != nil {
		return Table{}, fmt.Errorf("%w: reading material key length: %v", ErrFormat, err)
	}
	keyBuf := make([]byte, keyLen)
	if _, err := io.ReadFull(br, keyBuf); err != nil {
		return Table{}, fmt.Errorf("%w: reading material key: %v", ErrFormat, err)
	}
	key, err := material.ParseMaterialKey(string(keyBuf))
	if err != nil {
		return Table{}, fmt.Errorf("%w: embedded material key %q: %v", ErrFormat, keyBuf, err)
	}
	if key.String() != wantKey.String() {
		return Table{}, fmt.Errorf("%w: embedded material key %q does not match requested %q", ErrFormat, key, wantKey)
	}

	origLen, err := readUint64(br)
	if err != nil {
		return Table{}, fmt.Errorf("%w: reading position count: %v", ErrFormat, err)
	}

	c, err := readPayload(br, int(origLen))
	if err != nil {
		return Table{}, err
	}

	positions, err := compress.Decompress(c)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	return Table{Material: key, Positions: positions}, nil
}

func readPayload(r io.Reader, origLen int) (compress.Compressed, error) {
	baseSymbols, err := readUint16(r)
	if err != nil {
		return compress.Compressed{}, fmt.Errorf("%w: reading base_symbols: %v", ErrFormat, err)
	}

	pairCount, err := readUint16(r)
	if err != nil {
		return compress.Compressed{}, fmt.Errorf("%w: reading sym_pairs count: %v", ErrFormat, err)
	}
	symPairs := make([][2]uint16, pairCount)
	for i := range symPairs {
		a, err := readUint16(r)
		if err != nil {
			return compress.Compressed{}, fmt.Errorf("%w: reading sym_pairs[%d]: %v", ErrFormat, i, err)
		}
		b, err := readUint16(r)
		if err != nil {
			return compress.Compressed{}, fmt.Errorf("%w: reading sym_pairs[%d]: %v", ErrFormat, i, err)
		}
		symPairs[i] = [2]uint16{a, b}
	}

	codeLenCount, err := readUint16(r)
	if err != nil {
		return compress.Compressed{}, fmt.Errorf("%w: reading code_lens count: %v", ErrFormat, err)
	}
	codeLens := make([]byte, codeLenCount)
	if _, err := io.ReadFull(r, codeLens); err != nil {
		return compress.Compressed{}, fmt.Errorf("%w: reading code_lens: %v", ErrFormat, err)
	}

	bitLen, err := readUint64(r)
	if err != nil {
		return compress.Compressed{}, fmt.Errorf("%w: reading bit_len: %v", ErrFormat, err)
	}

	bitstreamLen, err := readUint32(r)
	if err != nil {
		return compress.Compressed{}, fmt.Errorf("%w: reading bitstream length: %v", ErrFormat, err)
	}
	bitstream := make([]byte, bitstreamLen)
	if _, err := io.ReadFull(r, bitstream); err != nil {
		return compress.Compressed{}, fmt.Errorf("%w: reading bitstream: %v", ErrFormat, err)
	}

	return compress.Compressed{
		BaseSymbols: baseSymbols,
		SymPairs:    symPairs,
		CodeLens:    codeLens,
		Bitstream:   bitstream,
		BitLen:      int(bitLen),
		OrigLen:     origLen,
	}, nil
}

func readUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
