package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Name    string
		Version string
	}
	Paths struct {
		Cookies     string `mapstructure:"cookies"`
		Credentials string `mapstructure:"credentials"`
		Token       string `mapstructure:"token"`
		VideosDir   string `mapstructure:"videos_dir"`
		VideoList   string `mapstructure:"video_list"`
	}
	Ledger struct {
		Backend string // json 或 sqlite
		Path    string
	}
	Batch struct {
		IntervalMin   time.Duration `mapstructure:"interval_min"`
		IntervalMax   time.Duration `mapstructure:"interval_max"`
		WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	}
	Upload struct {
		Privacy    string
		CategoryID string `mapstructure:"category_id"`
		Tags       []string
	}
	Logging struct {
		Level string
		File  string
	}
}

func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)

	// 所有键都有默认值，空配置文件也能跑
	viper.SetDefault("paths.cookies", "cookies.txt")
	viper.SetDefault("paths.credentials", "credentials.json")
	viper.SetDefault("paths.token", "token.json")
	viper.SetDefault("paths.videos_dir", "videos")
	viper.SetDefault("paths.video_list", "video_list.json")
	viper.SetDefault("ledger.backend", "json")
	viper.SetDefault("ledger.path", "uploaded.json")
	viper.SetDefault("batch.interval_min", 10)
	viper.SetDefault("batch.interval_max", 30)
	viper.SetDefault("batch.watch_debounce", 5)
	viper.SetDefault("upload.privacy", "public")
	viper.SetDefault("upload.category_id", "22")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "logs/xhs2yt.log")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// 配置里写的是秒数
	config.Batch.IntervalMin *= time.Second
	config.Batch.IntervalMax *= time.Second
	config.Batch.WatchDebounce *= time.Second

	if config.Batch.IntervalMax < config.Batch.IntervalMin {
		return nil, fmt.Errorf("batch.interval_max (%v) less than batch.interval_min (%v)",
			config.Batch.IntervalMax, config.Batch.IntervalMin)
	}
	if config.Ledger.Backend != "json" && config.Ledger.Backend != "sqlite" {
		return nil, fmt.Errorf("unknown ledger backend %q", config.Ledger.Backend)
	}

	return &config, nil
}
