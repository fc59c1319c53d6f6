package providers

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"starbot/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "STARBOT_LOG_LEVEL")
	viper.BindEnv("tracker.timezone", "STARBOT_TIMEZONE")
	viper.BindEnv("persistence.saveInterval", "STARBOT_SAVE_INTERVAL")
	viper.BindEnv("cache.enabled", "STARBOT_CACHE_ENABLED")
	viper.BindEnv("cache.size", "STARBOT_CACHE_SIZE")
	viper.BindEnv("gemini.apiKey", "STARBOT_GEMINI_API_KEY")
	viper.BindEnv("gemini.model", "STARBOT_GEMINI_MODEL")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "WorkoutStarBot"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
