package backup

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type CompressionType string

const (
	CompressionTypeNone CompressionType = "NONE"
	CompressionTypeGzip CompressionType = "GZIP"
	CompressionTypeLZ4  CompressionType = "LZ4"
	CompressionTypeZstd CompressionType = "ZSTD"
)

// CompressionTypeForExt maps a layer suffix to its compression algorithm
func CompressionTypeForExt(ext string) CompressionType {
	switch ext {
	case ExtGzip:
		return CompressionTypeGzip
	case ExtLZ4:
		return CompressionTypeLZ4
	case ExtZstd:
		return CompressionTypeZstd
	default:
		return CompressionTypeNone
	}
}

// NewDecompressReader wraps r with a streaming decompressor for the algorithm
func NewDecompressReader(r io.Reader, algorithm CompressionType) (io.ReadCloser, error) {
	switch algorithm {
	case CompressionTypeNone:
		return io.NopCloser(r), nil

	case CompressionTypeGzip:
		reader, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		return reader, nil

	case CompressionTypeLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil

	case CompressionTypeZstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		return decoder.IOReadCloser(), nil

	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}
}

// Compress compresses data with the algorithm at its default level
func Compress(data []byte, algorithm CompressionType) ([]byte, error) {
	var buf bytes.Buffer

	switch algorithm {
	case CompressionTypeNone:
		return data, nil

	case CompressionTypeGzip:
		writer := gzip.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			writer.Close()
			return nil, fmt.Errorf("failed to write gzip data: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("failed to close gzip writer: %w", err)
		}

	case CompressionTypeLZ4:
		writer := lz4.NewWriter(&buf)
		if _, err := writer.Write(data); err != nil {
			writer.Close()
			return nil, fmt.Errorf("failed to write lz4 data: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("failed to close lz4 writer: %w", err)
		}

	case CompressionTypeZstd:
		encoder, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		if _, err := encoder.Write(data); err != nil {
			encoder.Close()
			return nil, fmt.Errorf("failed to write zstd data: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("failed to close zstd encoder: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}

	return buf.Bytes(), nil
}
