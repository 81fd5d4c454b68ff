package elfinspect

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	cacheMagic       = "glibc-ld.so.cache"
	cacheVersion     = "1.1"
	cacheDefaultPath = "/etc/ld.so.cache"
)

// cacheHeader is the on-disk header of the glibc ld.so.cache format.
// Reference: glibc sysdeps/generic/dl-cache.h.
type cacheHeader struct {
	Magic     [17]byte
	Version   [3]byte
	Count     uint32
	TableSize uint32
	_         uint8
	_         [3]byte
	_         uint32
	_         [3]uint32
}

func (h *cacheHeader) validate() error {
	if string(h.Magic[:]) != cacheMagic {
		return fmt.Errorf("unsupported magic value: %s", h.Magic[:])
	}
	if string(h.Version[:]) != cacheVersion {
		return fmt.Errorf("unsupported %s version: %s", h.Magic[:], h.Version[:])
	}
	return nil
}

// readLdSoCache parses /etc/ld.so.cache (a binary file maintained by
// ldconfig) into a soname -> path map. The string table at the end of the
// file alternates NUL-terminated sonames and full paths.
func readLdSoCache(filename string) (map[string]string, error) {
	if filename == "" {
		filename = cacheDefaultPath
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var header cacheHeader
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if err := header.validate(); err != nil {
		return nil, err
	}
	if _, err := f.Seek(-int64(header.TableSize), io.SeekEnd); err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(f)
	scanner.Split(splitNuls)
	cache := make(map[string]string)
	var key string
	var readKey bool
	for scanner.Scan() {
		readKey = !readKey
		if readKey {
			key = scanner.Text()
			continue
		}
		cache[key] = scanner.Text()
		if !strings.HasSuffix(cache[key], key) {
			return nil, fmt.Errorf("mismatching cache value: %s => %s", key, cache[key])
		}
	}
	if scanner.Err() != nil {
		return nil, scanner.Err()
	}
	if len(cache) != int(header.Count) {
		return nil, fmt.Errorf("mismatching entries count: header advertised %d items, got %d", header.Count, len(cache))
	}
	return cache, nil
}

func splitNuls(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i + 1, data[0:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
