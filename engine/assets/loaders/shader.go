package loaders

// SpirvMagic is the first word of every SPIR-V module.
const SpirvMagic uint32 = 0x07230203

type ShaderLoader struct{}

// Load reads a compiled SPIR-V module as 32-bit words.
func (sl *ShaderLoader) Load(path string) (interface{}, error) {
	data, err := readBinary(path)
	if err != nil {
		return nil, err
	}
	return ParseSpirv(assetName(path), data)
}

func ParseSpirv(name string, data []byte) ([]uint32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, invalid(name, "SPIR-V size %d is not a positive multiple of 4", len(data))
	}
	code := bytesToBytecode(data)
	if code[0] != SpirvMagic {
		return nil, invalid(name, "bad SPIR-V magic %#08x", code[0])
	}
	return code, nil
}
