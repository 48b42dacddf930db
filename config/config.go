// Package config defines the configuration of a bag conversion.
package config

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.viam.com/utils"

	"go.viam.com/xviz/format"
	"go.viam.com/xviz/logging"
	"go.viam.com/xviz/tree"
)

// Convert describes one bag to XVIZ conversion.
type Convert struct {
	Bag             string   `json:"bag"`
	Output          string   `json:"output"`
	Scope           string   `json:"scope,omitempty"`
	Format          string   `json:"format,omitempty"`
	MinArraySize    *Int     `json:"min_array_size,omitempty"`
	Parallelism     *Int     `json:"parallelism,omitempty"`
	DisabledStreams []string `json:"disabled_streams,omitempty"`
	Topics          Topics   `json:"topics"`
	Log             Log      `json:"log"`

	ConfigFilePath string `json:"-"`
}

// Topics names the bag topics to read.
type Topics struct {
	Pose string `json:"pose"`
	IMU  string `json:"imu,omitempty"`
	GPS  string `json:"gps,omitempty"`
	TF   string `json:"tf,omitempty"`
}

// Log configures logging of the conversion.
type Log struct {
	Level logging.Level `json:"level"`
	File  string        `json:"file,omitempty"`
	// MaxSizeMB rotates the log file once it grows past the size.
	MaxSizeMB *Int `json:"max_size_mb,omitempty"`
}

// Int is an integer that may also be written as a string, e.g. after environment substitution.
type Int int

// UnmarshalJSON accepts numbers and numeric strings.
func (i *Int) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n, err := cast.ToIntE(raw)
	if err != nil {
		return err
	}
	*i = Int(n)
	return nil
}

// Validate checks the config and fills in defaults.
func (c *Convert) Validate(path string) error {
	if c.Bag == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "bag")
	}
	if c.Output == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "output")
	}
	if c.Topics.Pose == "" {
		return utils.NewConfigValidationFieldRequiredError(fmt.Sprintf("%s.topics", path), "pose")
	}
	if c.Format == "" {
		c.Format = format.Binary.String()
	}
	if _, err := format.Parse(c.Format); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if c.MinArraySize == nil {
		size := Int(tree.DefaultMinArraySize)
		c.MinArraySize = &size
	} else if *c.MinArraySize < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("min_array_size must be >= 0, got %d", *c.MinArraySize))
	}
	if c.Parallelism == nil {
		n := Int(runtime.NumCPU())
		c.Parallelism = &n
	} else if *c.Parallelism < 1 {
		return utils.NewConfigValidationError(path, errors.Errorf("parallelism must be >= 1, got %d", *c.Parallelism))
	}
	if c.Log.MaxSizeMB != nil && *c.Log.MaxSizeMB < 1 {
		return utils.NewConfigValidationError(fmt.Sprintf("%s.log", path), errors.New("max_size_mb must be >= 1"))
	}
	return nil
}

// OutputFormat returns the parsed output format. Validate must have succeeded.
func (c *Convert) OutputFormat() format.Format {
	f, err := format.Parse(c.Format)
	if err != nil {
		return format.Binary
	}
	return f
}

// EncodeOptions returns the encoder options of the config. Validate must have succeeded.
func (c *Convert) EncodeOptions() format.Options {
	opts := format.DefaultOptions()
	if c.MinArraySize != nil {
		opts.MinArraySize = int(*c.MinArraySize)
	}
	return opts
}
