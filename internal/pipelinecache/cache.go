// Package pipelinecache persists driver pipeline cache blobs between runs and
// discards blobs written by a different device or driver.
package pipelinecache

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/framecore/internal/log"
)

var logger = log.New("pipelinecache")

const (
	HeaderVersionOne uint32 = 1
	// Size of a version one header in bytes.
	HeaderSize = 16 + len(uuid.UUID{})
)

var (
	ErrTruncated = errors.New("pipeline cache header truncated")
	ErrMismatch  = errors.New("pipeline cache written by a different device")
)

// Identity is what a cache blob must have been written by to be reused.
type Identity struct {
	VendorID uint32
	DeviceID uint32
	UUID     uuid.UUID
}

// Header is the version one pipeline cache header. Every field is stored
// least significant byte first.
type Header struct {
	Length   uint32
	Version  uint32
	VendorID uint32
	DeviceID uint32
	UUID     uuid.UUID
}

func ParseHeader(data []byte) (Header, error) {
	var header Header
	if len(data) < HeaderSize {
		return header, errors.Wrapf(ErrTruncated, "%d bytes", len(data))
	}

	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header)
	if err != nil {
		return header, errors.Wrap(err, "read pipeline cache header")
	}
	return header, nil
}

// Validate reports every way the header disagrees with id.
func (h Header) Validate(id Identity) error {
	var err error

	if h.Length < uint32(HeaderSize) {
		err = errors.CombineErrors(err, errors.Newf("bad header length %d", h.Length))
	}
	if h.Version != HeaderVersionOne {
		err = errors.CombineErrors(err, errors.Newf("unsupported header version %d", h.Version))
	}
	if h.VendorID != id.VendorID {
		err = errors.CombineErrors(err, errors.Newf("vendor id 0x%x, driver expects 0x%x", h.VendorID, id.VendorID))
	}
	if h.DeviceID != id.DeviceID {
		err = errors.CombineErrors(err, errors.Newf("device id 0x%x, driver expects 0x%x", h.DeviceID, id.DeviceID))
	}
	if h.UUID != id.UUID {
		err = errors.CombineErrors(err, errors.Newf("uuid %s, driver expects %s", h.UUID, id.UUID))
	}

	if err != nil {
		return errors.Mark(err, ErrMismatch)
	}
	return nil
}

// Load returns the cache blob at path if it was written for id. A missing
// file yields nil data. A stale or corrupt file is removed so the next run
// repopulates it, and also yields nil data.
func Load(path string, id Identity) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Infof("pipeline cache miss: %s", path)
		return nil, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "read pipeline cache")
	}

	header, err := ParseHeader(data)
	if err == nil {
		err = header.Validate(id)
	}
	if err != nil {
		logger.Warningf("discarding pipeline cache %s: %v", path, err)
		_ = os.Remove(path)
		return nil, nil
	}

	logger.Infof("pipeline cache hit: %s (%d bytes)", path, len(data))
	return data, nil
}

// Store writes data to path atomically.
func Store(path string, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "create pipeline cache file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write pipeline cache")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close pipeline cache")
	}

	return errors.Wrap(os.Rename(tmp.Name(), path), "store pipeline cache")
}
