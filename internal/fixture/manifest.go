// Package fixture loads declarative test-vector manifests shared across
// the module's test files, the way g3n-engine's gui.Builder loads panel
// descriptions: a YAML file decoded straight into typed Go structs.
package fixture

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the top-level shape of testdata/fixtures.yaml.
type Manifest struct {
	Huffman []HuffmanCase `yaml:"huffman"`
	Float32 []Float32Case `yaml:"float32_unpack"`
	CRC     []CRCCase     `yaml:"crc32"`
	InvDB   []InvDBCase   `yaml:"inverse_db"`
	Lacing  []LacingCase  `yaml:"lacing"`
}

// HuffmanCase is one canonical-Huffman code-length table and the codeword
// bit patterns it must produce, MSb-first as written in the Vorbis I spec's
// own worked examples.
type HuffmanCase struct {
	Name      string   `yaml:"name"`
	Lengths   []int    `yaml:"lengths"`
	Codewords []string `yaml:"codewords"` // binary strings, MSb-first
}

// Float32Case is one Vorbis-packed 32-bit float and its expected decoded
// value.
type Float32Case struct {
	Name  string  `yaml:"name"`
	Bits  uint32  `yaml:"bits"`
	Value float64 `yaml:"value"`
}

// CRCCase is one byte sequence and its expected Ogg CRC-32 checksum.
type CRCCase struct {
	Name string `yaml:"name"`
	Hex  string `yaml:"hex"`
	CRC  uint32 `yaml:"crc"`
}

// InvDBCase spot-checks the floor 1 inverse-dB lookup table at a known
// index.
type InvDBCase struct {
	Name  string  `yaml:"name"`
	Index int     `yaml:"index"`
	Value float64 `yaml:"value"`
	Tol   float64 `yaml:"tol"`
}

// LacingCase is one Ogg lacing-table byte sequence and the packet lengths
// it must decode to.
type LacingCase struct {
	Name          string `yaml:"name"`
	Lacing        []int  `yaml:"lacing"`
	Lengths       []int  `yaml:"lengths"`
	FinalComplete bool   `yaml:"final_complete"`
}

// Load reads and parses a fixture manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
