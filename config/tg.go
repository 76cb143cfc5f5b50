package config

type telegramConfig struct {
	Token    string        `toml:"token" mapstructure:"token"`
	AppID    int           `toml:"app_id" mapstructure:"app_id"`
	AppHash  string        `toml:"app_hash" mapstructure:"app_hash"`
	RpcRetry int           `toml:"rpc_retry" mapstructure:"rpc_retry"`
	Proxy    tgProxyConfig `toml:"proxy" mapstructure:"proxy"`
	Userbot  userbotConfig `toml:"userbot" mapstructure:"userbot"`
}

type userbotConfig struct {
	Enable  bool   `toml:"enable" mapstructure:"enable"`
	Session string `toml:"session" mapstructure:"session"`
}

type tgProxyConfig struct {
	Enable bool   `toml:"enable" mapstructure:"enable"`
	URL    string `toml:"url" mapstructure:"url"`
}
