package tiledata

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// Fingerprint identifies the content of a definition. Two definitions with the
// same fingerprint and seed produce the same map.
func Fingerprint(def *Definition) (string, error) {
	canonical := *def
	canonical.Name = ""

	data, err := yaml.Marshal(&canonical)
	if err != nil {
		return "", fmt.Errorf("failed to marshal definition: %w", err)
	}

	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
