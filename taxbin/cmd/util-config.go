// Copyright © 2020-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/shenwei356/taxbin/taxbin/cmd/host"
	"github.com/shenwei356/taxbin/taxbin/cmd/taxonomy"
	"github.com/shenwei356/util/pathutil"
	"gopkg.in/yaml.v2"
)

// environment variables overriding defaults of the config
const (
	EnvRecordDSN = "TAXBIN_RECORD_DSN"
	EnvTaxIDDSN  = "TAXBIN_TAXID_DSN"
	EnvTaxdump   = "TAXBIN_TAXDUMP"
)

// Config is the run configuration.
type Config struct {
	HostSeeds      []uint32 `yaml:"host_seeds"`
	MicrobeSeeds   []uint32 `yaml:"microbe_seeds"`
	PotentialHosts []uint32 `yaml:"potential_hosts"`
	Targets        []uint32 `yaml:"targets"`

	HostFilter HostFilterConfig `yaml:"host_filter"`

	RecordStore string `yaml:"record_store"` // CDS table file or database DSN
	TaxIDSource string `yaml:"taxid_source"` // GI->taxid file or database DSN
	Taxdump     string `yaml:"taxdump"`      // NCBI taxdump directory
}

// HostFilterConfig configures host filtering.
type HostFilterConfig struct {
	ReadRule         string  `yaml:"read_rule"`
	Percentage       float64 `yaml:"percentage"`
	DeleteReads      bool    `yaml:"delete_reads"`
	DeleteAlignments bool    `yaml:"delete_alignments"`
	FilterUnassigned bool    `yaml:"filter_unassigned"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	tcfg := taxonomy.DefaultConfig()
	return &Config{
		HostSeeds:      tcfg.HostSeeds,
		MicrobeSeeds:   tcfg.MicrobeSeeds,
		PotentialHosts: append([]uint32(nil), taxonomy.DefaultHostSeeds...),
		HostFilter: HostFilterConfig{
			ReadRule:         host.BestScore.String(),
			Percentage:       host.DefaultPercentage,
			DeleteReads:      false,
			DeleteAlignments: false,
			FilterUnassigned: true,
		},
	}
}

// LoadEnv reads a .env file in the working directory if it exists.
func LoadEnv() {
	existed, err := pathutil.Exists(".env")
	if err != nil || !existed {
		return
	}
	if err = godotenv.Load(); err != nil {
		log.Warningf("failed to load .env: %s", err)
	}
}

// loadConfig reads a config file over the defaults. Fields absent from
// the file keep default values, and empty paths are taken from the
// environment.
func loadConfig(file string) (*Config, error) {
	cfg := DefaultConfig()
	if file != "" {
		file, err := homedir.Expand(file)
		if err != nil {
			return nil, errors.Wrap(err, file)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "reading config file")
		}
		if err = yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config file %s", file)
		}
	}

	if cfg.RecordStore == "" {
		cfg.RecordStore = os.Getenv(EnvRecordDSN)
	}
	if cfg.TaxIDSource == "" {
		cfg.TaxIDSource = os.Getenv(EnvTaxIDDSN)
	}
	if cfg.Taxdump == "" {
		cfg.Taxdump = os.Getenv(EnvTaxdump)
	}
	var err error
	for _, p := range []*string{&cfg.RecordStore, &cfg.TaxIDSource, &cfg.Taxdump} {
		if *p == "" || strings.Contains(*p, "://") {
			continue
		}
		if *p, err = homedir.Expand(*p); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks values of the config.
func (c *Config) Validate() error {
	if _, err := host.ParseRule(c.HostFilter.ReadRule); err != nil {
		return errors.Wrapf(err, "host_filter.read_rule: %s", c.HostFilter.ReadRule)
	}
	if c.HostFilter.Percentage <= 0 || c.HostFilter.Percentage > 1 {
		return fmt.Errorf("host_filter.percentage should be in range of (0, 1]: %f", c.HostFilter.Percentage)
	}
	return nil
}

// TaxonomyConfig returns seed lists for the taxonomy tree.
func (c *Config) TaxonomyConfig() taxonomy.Config {
	return taxonomy.Config{HostSeeds: c.HostSeeds, MicrobeSeeds: c.MicrobeSeeds}
}

// Bytes returns the config in YAML format.
func (c *Config) Bytes() ([]byte, error) {
	return yaml.Marshal(c)
}
