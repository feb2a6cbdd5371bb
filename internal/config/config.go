package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	RedisAddr string // 存在チェックキャッシュ用Redis（host:port）

	JWTSecret string // JWT署名シークレット

	SMTPAddr string // 通知メールのSMTP（host:port）
	SMTPFrom string // 送信元アドレス

	// 金額計算の設定（ハードコードせず環境から注入する）
	TaxRate               decimal.Decimal
	StandardShippingFee   decimal.Decimal
	ExpressShippingFee    decimal.Decimal
	FreeShippingThreshold decimal.Decimal

	GoEnv string // dev/prod
}

// Loadは環境変数から設定を組み立てる
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		RedisAddr: getenvDefault("REDIS_ADDR", "localhost:6379"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		SMTPAddr: getenvDefault("SMTP_ADDR", "localhost:25"),
		SMTPFrom: getenvDefault("SMTP_FROM", "no-reply@localhost"),

		GoEnv: os.Getenv("GO_ENV"),
	}

	//金額計算（省略時は運用デフォルト）
	cfg.TaxRate, err = decimalEnv("ORDER_TAX_RATE", "0.1")
	if err != nil {
		return Config{}, err
	}
	cfg.StandardShippingFee, err = decimalEnv("ORDER_STANDARD_SHIPPING_FEE", "30000")
	if err != nil {
		return Config{}, err
	}
	cfg.ExpressShippingFee, err = decimalEnv("ORDER_EXPRESS_SHIPPING_FEE", "50000")
	if err != nil {
		return Config{}, err
	}
	cfg.FreeShippingThreshold, err = decimalEnv("ORDER_FREE_SHIPPING_THRESHOLD", "500000")
	if err != nil {
		return Config{}, err
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getenvDefault(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func decimalEnv(key string, def string) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		v = def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be decimal: %w", key, err)
	}
	return d, nil
}
