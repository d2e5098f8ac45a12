package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

type Config struct {
	RPCAddress           string `toml:"RPCAddress"`
	DataDir              string `toml:"DataDir"`
	Environment          string `toml:"Environment"`
	Owner                string `toml:"Owner"`
	Governance           string `toml:"Governance"`
	ModuleAddress        string `toml:"ModuleAddress"`
	UniqueCollection     string `toml:"UniqueCollection"`
	MultiCollection      string `toml:"MultiCollection"`
	FungibleCollection   string `toml:"FungibleCollection"`
	QualifyingCollection string `toml:"QualifyingCollection"`
	LogFile              string `toml:"LogFile,omitempty"`
	LogMaxSizeMB         int    `toml:"LogMaxSizeMB,omitempty"`
	LogMaxBackups        int    `toml:"LogMaxBackups,omitempty"`
}

// Default addresses for the in-process token collections the daemon binds at
// startup.
const (
	defaultUniqueCollection     = "0x547261736842696e556e69717565"
	defaultMultiCollection      = "0x547261736842696e4d756c7469"
	defaultFungibleCollection   = "0x547261736842696e46756e6769626c65"
	defaultQualifyingCollection = "0x547261736842696e476f76"
)

// Load loads the configuration from the given path.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8545"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./trashbin-data"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
	if strings.TrimSpace(cfg.UniqueCollection) == "" {
		cfg.UniqueCollection = defaultUniqueCollection
	}
	if strings.TrimSpace(cfg.MultiCollection) == "" {
		cfg.MultiCollection = defaultMultiCollection
	}
	if strings.TrimSpace(cfg.FungibleCollection) == "" {
		cfg.FungibleCollection = defaultFungibleCollection
	}
	if strings.TrimSpace(cfg.QualifyingCollection) == "" {
		cfg.QualifyingCollection = defaultQualifyingCollection
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for name, value := range map[string]string{
		"Owner":                c.Owner,
		"Governance":           c.Governance,
		"ModuleAddress":        c.ModuleAddress,
		"UniqueCollection":     c.UniqueCollection,
		"MultiCollection":      c.MultiCollection,
		"FungibleCollection":   c.FungibleCollection,
		"QualifyingCollection": c.QualifyingCollection,
	} {
		if !common.IsHexAddress(value) {
			return fmt.Errorf("%s is not a valid hex address: %q", name, value)
		}
	}
	return nil
}

// OwnerAddress returns the configured owner account.
func (c *Config) OwnerAddress() common.Address { return common.HexToAddress(c.Owner) }

// GovernanceAddress returns the configured governance account.
func (c *Config) GovernanceAddress() common.Address { return common.HexToAddress(c.Governance) }

// EngineAddress returns the account the escrow engine itself operates as.
func (c *Config) EngineAddress() common.Address { return common.HexToAddress(c.ModuleAddress) }

// UniqueCollectionAddress returns the address the unique-token collection is
// bound at.
func (c *Config) UniqueCollectionAddress() common.Address {
	return common.HexToAddress(c.UniqueCollection)
}

// MultiCollectionAddress returns the address the multi-token collection is
// bound at.
func (c *Config) MultiCollectionAddress() common.Address {
	return common.HexToAddress(c.MultiCollection)
}

// FungibleCollectionAddress returns the address of the fungible collection
// used by the failsafe recovery path.
func (c *Config) FungibleCollectionAddress() common.Address {
	return common.HexToAddress(c.FungibleCollection)
}

// QualifyingCollectionAddress returns the address of the collection whose
// ownership decides the buyer's discount tier.
func (c *Config) QualifyingCollectionAddress() common.Address {
	return common.HexToAddress(c.QualifyingCollection)
}

// createDefault creates and saves a default configuration file. The owner and
// governance addresses must be filled in before the daemon accepts the file.
func createDefault(path string) (*Config, error) {
	cfg := &Config{
		RPCAddress:           "127.0.0.1:8545",
		DataDir:              "./trashbin-data",
		Environment:          "local",
		Owner:                common.Address{}.Hex(),
		Governance:           common.Address{}.Hex(),
		ModuleAddress:        common.HexToAddress("0x7261736842696e4d6f64756c65").Hex(),
		UniqueCollection:     common.HexToAddress(defaultUniqueCollection).Hex(),
		MultiCollection:      common.HexToAddress(defaultMultiCollection).Hex(),
		FungibleCollection:   common.HexToAddress(defaultFungibleCollection).Hex(),
		QualifyingCollection: common.HexToAddress(defaultQualifyingCollection).Hex(),
	}
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, fmt.Errorf("wrote default config to %s; set Owner and Governance before starting", path)
}

func persist(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
