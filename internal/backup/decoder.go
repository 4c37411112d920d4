package backup

import (
	"bytes"
	stderrors "errors"
	"io"

	"experiment-setup/internal/errors"
)

// Decoder turns a stored backup into its plain SQL script
type Decoder struct {
	passphrase string
}

// NewDecoder creates a decoder; passphrase may be empty when no backup is encrypted
func NewDecoder(passphrase string) *Decoder {
	return &Decoder{passphrase: passphrase}
}

// Decode strips the encoding layers named by the file's suffixes, outermost first.
// Closing the result closes every layer and r.
func (d *Decoder) Decode(name string, r io.ReadCloser) (io.ReadCloser, error) {
	if !IsBackupFile(name) {
		r.Close()
		return nil, errors.NewParseError("not a backup file: "+name, nil).
			WithContext("backup", name)
	}

	chain := &layeredReader{Reader: r, closers: []io.Closer{r}}

	for _, layer := range Layers(name) {
		if layer == ExtEncrypted {
			if err := d.decrypt(name, chain); err != nil {
				chain.Close()
				return nil, err
			}
			continue
		}

		next, err := NewDecompressReader(chain.Reader, CompressionTypeForExt(layer))
		if err != nil {
			chain.Close()
			return nil, NewDecodeError(name, layer, err)
		}
		chain.push(next)
	}

	return chain, nil
}

func (d *Decoder) decrypt(name string, chain *layeredReader) error {
	if d.passphrase == "" {
		return errors.NewConfigError("backup "+name+" is encrypted but no encryption passphrase is configured", ErrPassphraseRequired).
			WithContext("backup", name)
	}

	data, err := io.ReadAll(chain.Reader)
	if err != nil {
		return NewStorageError("failed to read backup "+name, err)
	}

	plaintext, err := Decrypt(data, d.passphrase)
	if err != nil {
		return NewDecodeError(name, ExtEncrypted, err)
	}

	chain.Reader = bytes.NewReader(plaintext)
	return nil
}

// layeredReader reads from the innermost decoding layer and closes all of them
type layeredReader struct {
	io.Reader
	closers []io.Closer
}

func (l *layeredReader) push(rc io.ReadCloser) {
	l.Reader = rc
	l.closers = append(l.closers, rc)
}

// Close closes the layers from the innermost out
func (l *layeredReader) Close() error {
	var errs []error
	for i := len(l.closers) - 1; i >= 0; i-- {
		if err := l.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	l.closers = nil
	return stderrors.Join(errs...)
}
