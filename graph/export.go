package graph

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/semago/codec"
)

// Compression selects the compression applied to exported graph
// bytes.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ExportOptions configures Export.
type ExportOptions struct {
	// Codec encodes the handoff spec. Default: codec.Default.
	Codec codec.Codec
	// Compression wraps the encoded payload. Default: zstd.
	Compression Compression
}

// Export header layout:
//
//	[magic "SMG1":4][compression:1][codec name len:1][codec name:N][payload]
var exportMagic = [4]byte{'S', 'M', 'G', '1'}

// Export writes a self-describing serialization of the graph: the
// header records codec and compression so Read needs no out-of-band
// agreement.
func (g *Graph) Export(w io.Writer, optFns ...func(*ExportOptions)) error {
	opts := ExportOptions{Codec: codec.Default, Compression: CompressionZstd}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}

	name := opts.Codec.Name()
	if len(name) > 255 {
		return fmt.Errorf("codec name too long: %q", name)
	}
	if _, err := w.Write(exportMagic[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(opts.Compression)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint8(len(name))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}

	payload, err := opts.Codec.Marshal(g.Spec())
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}

	switch opts.Compression {
	case CompressionNone:
		_, err := w.Write(payload)
		return err
	case CompressionZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("create zstd writer: %w", err)
		}
		if _, err := enc.Write(payload); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	case CompressionLZ4:
		enc := lz4.NewWriter(w)
		if _, err := enc.Write(payload); err != nil {
			_ = enc.Close()
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported compression %v", opts.Compression)
	}
}

// Read decodes a graph exported with Export.
func Read(r io.Reader) (*Graph, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if magic != exportMagic {
		return nil, fmt.Errorf("not a graph export (bad magic %q)", magic[:])
	}

	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	compression := Compression(header[0])
	nameBuf := make([]byte, int(header[1]))
	if _, err := io.ReadFull(r, nameBuf); err != nil {
		return nil, fmt.Errorf("read codec name: %w", err)
	}
	c, ok := codec.ByName(string(nameBuf))
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", string(nameBuf))
	}

	var payload []byte
	switch compression {
	case CompressionNone:
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		payload = b
	case CompressionZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		defer dec.Close()
		b, err := io.ReadAll(dec)
		if err != nil {
			return nil, err
		}
		payload = b
	case CompressionLZ4:
		b, err := io.ReadAll(lz4.NewReader(r))
		if err != nil {
			return nil, err
		}
		payload = b
	default:
		return nil, fmt.Errorf("unsupported compression %v", compression)
	}

	var spec Spec
	if err := c.Unmarshal(payload, &spec); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return FromSpec(&spec)
}
