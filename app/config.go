package app

import (
	"errors"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/spf13/viper"

	"tuition-node/modules"
)

const (
	configKey = "tuition"
	// no account grows beyond this
	maxAccountSpace = 1 << 20
)

type Config struct {
	Rent modules.Rent `mapstructure:"rent"`
}

func DefaultConfig() Config {
	return Config{Rent: modules.DefaultRent()}
}

// LoadConfig reads the [tuition] table, keeping defaults for missing keys.
func LoadConfig(v *viper.Viper) (Config, error) {
	config := DefaultConfig()
	if v.IsSet(configKey) {
		if err := v.UnmarshalKey(configKey, &config); err != nil {
			return Config{}, err
		}
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (config Config) Validate() error {
	perByte, overflow := math.SafeMul(config.Rent.LamportsPerByteYear, config.Rent.ExemptionYears)
	if overflow {
		return errors.New("rent per byte overflows")
	}
	if _, overflow := math.SafeMul(perByte, maxAccountSpace); overflow {
		return errors.New("rent of the largest account overflows")
	}
	return nil
}
