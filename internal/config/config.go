package config

import (
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Token        string
		AdminChatIDs []int64 `mapstructure:"admin_chat_ids"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Databases struct {
		Accounts string
		Pharmacy string
		Reports  string
	} `mapstructure:"databases"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`
}

func Load(path string) (Config, error) {
	// .env (если есть) подхватываем до viper: токен удобно держать вне yaml
	_ = gotenv.Load()

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
	if tok := v.GetString("TELEGRAM_TOKEN"); tok != "" {
		c.Telegram.Token = tok
	}
	return c, nil
}

// IsAdmin проверяет chat id по списку админов из конфига.
func (c Config) IsAdmin(chatID int64) bool {
	for _, id := range c.Telegram.AdminChatIDs {
		if id == chatID {
			return true
		}
	}
	return false
}
