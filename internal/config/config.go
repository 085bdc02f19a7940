package config

import "github.com/spf13/viper"

type Config struct {
	App struct {
		Env      string
		Timezone string
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"app"`

	Telegram struct {
		Token     string
		WebAppURL string `mapstructure:"webapp_url"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr           string
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"http"`

	// Внутренний канал бота: сюда бэкенд отправляет payload отчёта.
	Internal struct {
		Addr         string
		URL          string `mapstructure:"url"`
		ReportSecret string `mapstructure:"report_secret"`
	} `mapstructure:"internal"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Auth struct {
		SkipValidation bool `mapstructure:"skip_validation"`
		MaxInitDataAge int  `mapstructure:"max_init_data_age"`
	} `mapstructure:"auth"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if c.Auth.MaxInitDataAge == 0 {
		c.Auth.MaxInitDataAge = 86400
	}
	return c, nil
}
