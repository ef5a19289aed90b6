package dataset

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// maxFrame bounds the length prefix accepted by a FramedReader. A row encodes
// to well under 32 bytes; anything larger is corruption.
const maxFrame = 1 << 10

// Field numbers of the row message.
const (
	fieldPhase protowire.Number = 1
	fieldReal  protowire.Number = 2
	fieldImag  protowire.Number = 3
)

// A FramedWriter writes rows as framed protocol buffer messages.
// The structure of each frame is trivial: message-length | message
//
// where message-length is a little-endian int32 and message is equivalent to
//
//	message Row {
//	  sint32 phase = 1;
//	  double real  = 2;
//	  double imag  = 3;
//	}
type FramedWriter struct {
	w   io.Writer
	c   io.Closer
	buf []byte
}

// NewFramedWriter returns a FramedWriter writing to w.
func NewFramedWriter(w io.Writer) *FramedWriter {
	return &FramedWriter{w: w}
}

// Write implements the Sink interface.
func (f *FramedWriter) Write(rows ...Row) error {
	for _, r := range rows {
		f.buf = marshalRow(f.buf[:0], r)
		if err := binary.Write(f.w, binary.LittleEndian, int32(len(f.buf))); err != nil {
			return err
		}
		if _, err := f.w.Write(f.buf); err != nil {
			return err
		}
	}
	return nil
}

// Close implements the Sink interface. It closes the underlying file, if the
// FramedWriter owns one.
func (f *FramedWriter) Close() error {
	if f.c == nil {
		return nil
	}
	return f.c.Close()
}

// A FramedReader reads rows written by a FramedWriter.
type FramedReader struct {
	r   io.Reader
	buf []byte
}

// NewFramedReader returns a FramedReader reading from r.
func NewFramedReader(r io.Reader) *FramedReader {
	return &FramedReader{r: r}
}

// Read returns the next row, or io.EOF if the stream ends cleanly between
// frames. A stream ending mid-frame yields io.ErrUnexpectedEOF.
func (f *FramedReader) Read() (Row, error) {
	var mLen int32
	if err := binary.Read(f.r, binary.LittleEndian, &mLen); err != nil {
		return Row{}, err
	}
	if mLen < 0 || mLen > maxFrame {
		return Row{}, fmt.Errorf("invalid frame length %d", mLen)
	}
	if cap(f.buf) < int(mLen) {
		f.buf = make([]byte, mLen)
	}
	f.buf = f.buf[:mLen]
	if _, err := io.ReadFull(f.r, f.buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return Row{}, err
	}
	return unmarshalRow(f.buf)
}

// ReadFramed reads every row from r.
func ReadFramed(r io.Reader) ([]Row, error) {
	fr := NewFramedReader(r)
	var rows []Row
	for {
		row, err := fr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", len(rows), err)
		}
		rows = append(rows, row)
	}
}

func marshalRow(b []byte, r Row) []byte {
	b = protowire.AppendTag(b, fieldPhase, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeZigZag(int64(r.Phase)))
	b = protowire.AppendTag(b, fieldReal, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(r.Real))
	b = protowire.AppendTag(b, fieldImag, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(r.Imag))
	return b
}

func unmarshalRow(b []byte) (Row, error) {
	var r Row
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Row{}, protowire.ParseError(n)
		}
		b = b[n:]
		switch {
		case num == fieldPhase && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			r.Phase = int(protowire.DecodeZigZag(v))
		case num == fieldReal && typ == protowire.Fixed64Type:
			var v uint64
			v, n = protowire.ConsumeFixed64(b)
			r.Real = math.Float64frombits(v)
		case num == fieldImag && typ == protowire.Fixed64Type:
			var v uint64
			v, n = protowire.ConsumeFixed64(b)
			r.Imag = math.Float64frombits(v)
		default:
			// Unknown fields are skipped, as proto.Unmarshal would.
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return Row{}, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return r, nil
}
