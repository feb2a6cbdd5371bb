package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/notification"
	"app/internal/pricing"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(userID, 10),
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	// deferred cleanup（logger.Sync / dispatcher.Close）を走らせてから終了する
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .envは無ければ環境変数だけで動かす
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var logger *zap.Logger
	if cfg.GoEnv == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return err
	}
	defer logger.Sync()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Error("db connect failed", zap.Error(err))
		return err
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.Coupon{},
		&model.AuditLog{},
	); err != nil {
		logger.Error("migrate failed", zap.Error(err))
		return err
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//存在チェックキャッシュ（Redis停止時はDBへフォールバック）
	emailCache := cache.NewRedisBoolCache(cfg.RedisAddr, "user")
	skuCache := cache.NewRedisBoolCache(cfg.RedisAddr, "product")

	clock := &realClock{}

	//金額計算
	calc := pricing.NewCalculator(pricing.Config{
		TaxRate:               cfg.TaxRate,
		StandardShippingFee:   cfg.StandardShippingFee,
		ExpressShippingFee:    cfg.ExpressShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	})
	coupons := pricing.NewStoreCouponResolver(couponRepo, clock)

	//通知はコミット後に非同期で送る
	sender := notification.NewSMTPSender(cfg.SMTPAddr, cfg.SMTPFrom)
	dispatcher := notification.NewAsyncDispatcher(sender, logger, 256)
	defer dispatcher.Close()

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, emailCache, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	orderUC := usecase.NewOrderUsecase(txManager, calc, coupons, dispatcher, logger, clock)
	orderQueryUC := usecase.NewOrderQueryUsecase(txManager, clock)
	productUC := usecase.NewProductUsecase(txManager, skuCache, clock)

	//Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC)
	productH := handler.NewProductHandler(productUC)
	orderH := handler.NewOrderHandler(orderUC, orderQueryUC)
	adminOrderH := handler.NewAdminOrderHandler(orderUC, orderQueryUC)
	adminProductH := handler.NewAdminProductHandler(productUC)

	//Server起動
	e := server.New(logger)
	server.RegisterRoutes(e, cfg, authH, productH, orderH, adminOrderH, adminProductH)

	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(e, addr, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
