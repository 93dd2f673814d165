package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/minegrid/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup            = "/api"
	RegisterRoute         = "/user/register"
	LoginRoute            = "/user/login"
	ProfileRoute          = "/user/profile"
	MinersRoute           = "/miners"
	UserMinersRoute       = "/user/miners"
	WithdrawalsRoute      = "/user/withdrawals"
	NotificationsRoute    = "/user/notifications"
	PaymentsCallbackRoute = "/payments/callback"
	AdminMinersRoute      = "/admin/miners"
	AdminWithdrawalsRoute = "/admin/withdrawals"
)

type RouterArgs struct {
	Logger              *logrus.Logger
	UserService         UserServicer
	CatalogService      CatalogServicer
	MinerService        MinerServicer
	WithdrawalService   WithdrawalServicer
	NotificationService NotificationServicer
	JWTSecretKey        []byte
}

func New(args RouterArgs) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	_ = registerValidators()

	authHandler := NewAuthHandler(args.UserService)
	profileHandler := NewProfileHandler(args.UserService)
	catalogHandler := NewCatalogHandler(args.CatalogService)
	minersHandler := NewMinersHandler(args.MinerService)
	withdrawalsHandler := NewWithdrawalsHandler(args.WithdrawalService)
	notificationsHandler := NewNotificationsHandler(args.NotificationService)
	adminHandler := NewAdminHandler(args.CatalogService, args.WithdrawalService)
	paymentsHandler := NewPaymentsHandler(args.UserService)

	api := r.Group(RouteGroup)

	api.POST(RegisterRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Register)
	api.POST(LoginRoute, middlewares.NonAuthRequired(args.JWTSecretKey), authHandler.Login)
	api.GET(MinersRoute, catalogHandler.Index)
	// колбэк шлюза приходит сервер-сервер, без пользовательского токена.
	api.POST(PaymentsCallbackRoute, paymentsHandler.Callback)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного пользователя.
	api.GET(ProfileRoute, profileHandler.Index)
	api.PATCH(ProfileRoute, profileHandler.Update)

	api.POST(UserMinersRoute, minersHandler.Create)
	api.GET(UserMinersRoute, minersHandler.Index)

	api.POST(WithdrawalsRoute, withdrawalsHandler.Create)
	api.GET(WithdrawalsRoute, withdrawalsHandler.Index)

	api.GET(NotificationsRoute, notificationsHandler.Index)
	api.POST(NotificationsRoute+"/:id/read", notificationsHandler.MarkRead)

	admin := api.Group("", middlewares.AdminRequired())
	admin.POST(AdminMinersRoute, adminHandler.CreateMiner)
	admin.GET(AdminMinersRoute, adminHandler.ListMiners)
	admin.PATCH(AdminMinersRoute+"/:id/toggle", adminHandler.ToggleMiner)
	admin.GET(AdminWithdrawalsRoute, adminHandler.ListWithdrawals)
	admin.POST(AdminWithdrawalsRoute+"/:id/approve", adminHandler.ApproveWithdrawal)
	admin.POST(AdminWithdrawalsRoute+"/:id/reject", adminHandler.RejectWithdrawal)

	return r
}
