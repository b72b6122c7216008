package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Host     HostConfig     `mapstructure:"host"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN 生成 postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// ChainConfig 宿主链配置
type ChainConfig struct {
	Clock           string `mapstructure:"clock"`            // 时间源: system, chain, manual
	RpcUrl          string `mapstructure:"rpc_url"`          // clock=chain 时使用的 RPC 节点
	ContractAddress string `mapstructure:"contract_address"` // 合约地址，用于派生托管地址
	StartTime       uint64 `mapstructure:"start_time"`       // clock=manual 时的初始时间
}

// HostConfig 转账原语配置
type HostConfig struct {
	Faucet         bool     `mapstructure:"faucet"`          // 是否开放水龙头接口
	RejectAccounts []string `mapstructure:"reject_accounts"` // 拒收转入的地址
}

// AuthConfig 调用者签名校验配置
type AuthConfig struct {
	MaxSkew time.Duration `mapstructure:"max_skew"` // 允许的签名时间偏差
}

type TaskConfig struct {
	Interval  int `mapstructure:"interval"`   // 秒
	BatchSize int `mapstructure:"batch_size"` // 每轮处理的事件数
	Workers   int `mapstructure:"workers"`    // 协程池大小
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

func (l LogConfig) GetLevel() string {
	return l.Level
}

func (l LogConfig) GetOutput() string {
	return l.Output
}

func (l LogConfig) GetFile() string {
	return l.File
}

// Load 读取配置文件和环境变量，file 为空时按默认路径查找 config.yaml
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/cfs")
	}

	setDefaults(v)

	// 环境变量形如 CFS_DATABASE_HOST
	v.SetEnvPrefix("cfs")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "crowdfunding")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("chain.clock", "system")
	v.SetDefault("chain.rpc_url", "")
	v.SetDefault("chain.contract_address", "0x0000000000000000000000000000000000000000")
	v.SetDefault("chain.start_time", 0)
	v.SetDefault("host.faucet", false)
	v.SetDefault("host.reject_accounts", []string{})
	v.SetDefault("auth.max_skew", "5m")
	v.SetDefault("task.interval", 10)
	v.SetDefault("task.batch_size", 100)
	v.SetDefault("task.workers", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file", "logs/app.log")
}

func (c *Config) validate() error {
	switch c.Chain.Clock {
	case "system", "manual":
	case "chain":
		if c.Chain.RpcUrl == "" {
			return errors.New("chain.rpc_url is required when chain.clock is chain")
		}
	default:
		return fmt.Errorf("unknown chain.clock %q", c.Chain.Clock)
	}
	if c.Auth.MaxSkew <= 0 {
		return fmt.Errorf("auth.max_skew must be positive, got %s", c.Auth.MaxSkew)
	}
	if c.Task.Interval <= 0 {
		return fmt.Errorf("task.interval must be positive, got %d", c.Task.Interval)
	}
	return nil
}
