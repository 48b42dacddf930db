package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
)

// Read reads a conversion config from the given file, substituting environment variables.
func Read(filePath string) (*Convert, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a conversion config from the given reader and specifies where, if
// applicable, the file the reader originated from.
func FromReader(originalPath string, r io.Reader) (*Convert, error) {
	cfg := Convert{ConfigFilePath: originalPath}
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode config from json")
	}
	if err := cfg.Validate("convert"); err != nil {
		return nil, err
	}
	return &cfg, nil
}
