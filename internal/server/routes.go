package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

// 全ハンドラーのルートをまとめて登録する
func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	authH *handler.AuthHandler,
	productH *handler.ProductHandler,
	orderH *handler.OrderHandler,
	adminOrderH *handler.AdminOrderHandler,
	adminProductH *handler.AdminProductHandler,
) {
	authH.RegisterRoutes(e)
	productH.RegisterRoutes(e)
	orderH.RegisterRoutes(e, cfg)
	adminOrderH.RegisterRoutes(e, cfg)
	adminProductH.RegisterRoutes(e, cfg)
}
