package loaders

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/vkr/engine/core"
)

// openAsset opens path, turning a missing file into ErrAssetNotFound.
func openAsset(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("%s: %w", path, core.ErrAssetNotFound)
		core.LogError(err.Error())
		return nil, err
	}
	if err != nil {
		core.LogError("failed to open asset %s: %s", path, err)
		return nil, err
	}
	return f, nil
}

func readBinary(path string) ([]byte, error) {
	f, err := openAsset(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// assetName is the file name without directory and extension.
func assetName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func invalid(name string, format string, args ...interface{}) error {
	err := fmt.Errorf("%s: %w: %s", name, core.ErrInvalidAsset, fmt.Sprintf(format, args...))
	core.LogError(err.Error())
	return err
}

// bytesToBytecode reads little endian 32-bit words. len(b) must be a multiple of 4.
func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
