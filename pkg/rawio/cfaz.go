package rawio

import(
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/abworrall/rawdev/pkg/demosaic"
)

// A .cfaz file is a mosaic that has already been normalized, so it
// loads without any levels or EXIF handling:
//
//   "CFAZ" | version u16 | width u32 | height u32 | cfa u32 |
//   make (u16 length + bytes) | model (u16 length + bytes) |
//   zstd(little endian float32 samples)
//
// All integers are little endian.

var cfazMagic = [4]byte{'C', 'F', 'A', 'Z'}

const cfazVersion = 1

// Largest mosaic a cfaz file may declare, 16Ki x 16Ki.
const maxCFAZPixels = 1 << 28

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(4*maxCFAZPixels),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var zstdEncPool = sync.Pool{New: func() any { return mustNewZstdEncoder() }}
var zstdDecPool = sync.Pool{New: func() any { return mustNewZstdDecoder() }}

func compressZstd(data []byte) []byte {
	enc := zstdEncPool.Get().(*zstd.Encoder)
	out := enc.EncodeAll(data, nil)
	zstdEncPool.Put(enc)
	return out
}

func decompressZstd(data []byte, size int) ([]byte, error) {
	dec := zstdDecPool.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(data, make([]byte, 0, size))
	zstdDecPool.Put(dec)
	return out, err
}

// EncodeCFAZ writes the mosaic in the cfaz container format.
func EncodeCFAZ(w io.Writer, m Mosaic) error {
	if len(m.Pix) != m.Width*m.Height {
		return fmt.Errorf("cfaz encode: %w", demosaic.ErrMosaicSize)
	}

	var hdr bytes.Buffer
	hdr.Write(cfazMagic[:])
	binary.Write(&hdr, binary.LittleEndian, uint16(cfazVersion))
	binary.Write(&hdr, binary.LittleEndian, uint32(m.Width))
	binary.Write(&hdr, binary.LittleEndian, uint32(m.Height))
	binary.Write(&hdr, binary.LittleEndian, uint32(m.CFA))
	for _, s := range []string{m.Make, m.Model} {
		if len(s) > math.MaxUint16 {
			s = s[:math.MaxUint16]
		}
		binary.Write(&hdr, binary.LittleEndian, uint16(len(s)))
		hdr.WriteString(s)
	}

	raw := make([]byte, 4*len(m.Pix))
	for i, v := range m.Pix {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}

	if _, err := w.Write(hdr.Bytes()); err != nil {
		return fmt.Errorf("cfaz encode: %v", err)
	}
	if _, err := w.Write(compressZstd(raw)); err != nil {
		return fmt.Errorf("cfaz encode: %v", err)
	}
	return nil
}

// DecodeCFAZ reads a mosaic written by EncodeCFAZ.
func DecodeCFAZ(r io.Reader) (Mosaic, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Mosaic{}, fmt.Errorf("cfaz decode: %v", err)
	}
	br := bytes.NewReader(data)

	var head struct {
		Magic   [4]byte
		Version uint16
		Width   uint32
		Height  uint32
		CFA     uint32
	}
	if err := binary.Read(br, binary.LittleEndian, &head); err != nil {
		return Mosaic{}, fmt.Errorf("%w: header: %v", ErrBadContainer, err)
	}
	if head.Magic != cfazMagic {
		return Mosaic{}, fmt.Errorf("%w: bad magic %q", ErrBadContainer, head.Magic[:])
	}
	if head.Version != cfazVersion {
		return Mosaic{}, fmt.Errorf("%w: version %d", ErrBadContainer, head.Version)
	}

	if n := uint64(head.Width) * uint64(head.Height); n == 0 || n > maxCFAZPixels {
		return Mosaic{}, fmt.Errorf("%w: bad size %dx%d", ErrBadContainer, head.Width, head.Height)
	}

	m := Mosaic{
		Width:  int(head.Width),
		Height: int(head.Height),
		CFA:    demosaic.CFA(head.CFA),
	}
	for _, dst := range []*string{&m.Make, &m.Model} {
		var n uint16
		if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
			return Mosaic{}, fmt.Errorf("%w: strings: %v", ErrBadContainer, err)
		}
		s := make([]byte, n)
		if _, err := io.ReadFull(br, s); err != nil {
			return Mosaic{}, fmt.Errorf("%w: strings: %v", ErrBadContainer, err)
		}
		*dst = string(s)
	}

	payload := data[len(data)-br.Len():]
	size := 4*m.Width*m.Height

	// Check the frame's declared size before allocating for it.
	var fh zstd.Header
	if err := fh.Decode(payload); err != nil {
		return Mosaic{}, fmt.Errorf("%w: zstd header: %v", ErrBadContainer, err)
	}
	if fh.HasFCS && fh.FrameContentSize != uint64(size) {
		return Mosaic{}, fmt.Errorf("%w: %d payload bytes for %dx%d", ErrBadContainer, fh.FrameContentSize, m.Width, m.Height)
	}

	raw, err := decompressZstd(payload, size)
	if err != nil {
		return Mosaic{}, fmt.Errorf("%w: zstd decode: %v", ErrBadContainer, err)
	}
	if len(raw) != size {
		return Mosaic{}, fmt.Errorf("%w: %d payload bytes for %dx%d", ErrBadContainer, len(raw), m.Width, m.Height)
	}

	m.Pix = make([]float32, m.Width*m.Height)
	for i := range m.Pix {
		m.Pix[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}

	if err := m.CFA.Validate(); err != nil {
		return Mosaic{}, fmt.Errorf("cfaz decode: %w", err)
	}
	return m, nil
}

func WriteCFAZ(filename string, m Mosaic) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create '%s': %v", filename, err)
	}
	if err := EncodeCFAZ(f, m); err != nil {
		f.Close()
		return fmt.Errorf("write '%s': %w", filename, err)
	}
	return f.Close()
}

func ReadCFAZ(filename string) (Mosaic, error) {
	f, err := os.Open(filename)
	if err != nil {
		return Mosaic{}, fmt.Errorf("open+r '%s': %v", filename, err)
	}
	defer f.Close()

	m, err := DecodeCFAZ(f)
	if err != nil {
		return Mosaic{}, fmt.Errorf("read '%s': %w", filename, err)
	}
	m.Filename = filename
	return m, nil
}
