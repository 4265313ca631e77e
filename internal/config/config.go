package config

import "github.com/spf13/viper"

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	APIBaseURL    string `mapstructure:"API_BASE_URL"`
	FeedURL       string `mapstructure:"FEED_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	// PostgresURL is optional; empty disables the activity archive.
	PostgresURL     string `mapstructure:"POSTGRES_URL"`
	ChainRPCURL     string `mapstructure:"CHAIN_RPC_URL"`
	ChainID         int64  `mapstructure:"CHAIN_ID"`
	ProfileContract string `mapstructure:"PROFILE_CONTRACT"`
	WalletKey       string `mapstructure:"WALLET_KEY"`
	WalletKeyFile   string `mapstructure:"WALLET_KEY_FILE"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":8090")
	viper.SetDefault("API_BASE_URL", "http://localhost:8080")
	viper.SetDefault("FEED_URL", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("POSTGRES_URL", "")
	viper.SetDefault("CHAIN_RPC_URL", "")
	viper.SetDefault("CHAIN_ID", 4202)
	viper.SetDefault("PROFILE_CONTRACT", "")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
