//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 教学说明：
// 1. Wire是Google开发的编译期依赖注入工具
// 2. 与运行时反射注入（如Spring的@Autowired）不同，Wire在编译期生成代码
// 3. 优势：零运行时开销、类型安全、编译期检测循环依赖
//
// Wire工作流程：
// Step 1: 编写wire.go（本文件），定义Providers和Injector
// Step 2: 运行 `wire gen ./cmd/api`
// Step 3: Wire生成wire_gen.go，包含完整的依赖创建代码
// Step 4: main.go调用wire_gen.go中的InitializeApp()

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

	appbook "github.com/xiebiao/elibrary/internal/application/book"
	apploan "github.com/xiebiao/elibrary/internal/application/loan"
	appres "github.com/xiebiao/elibrary/internal/application/reservation"
	appuser "github.com/xiebiao/elibrary/internal/application/user"
	"github.com/xiebiao/elibrary/internal/domain/author"
	"github.com/xiebiao/elibrary/internal/domain/book"
	"github.com/xiebiao/elibrary/internal/domain/genre"
	"github.com/xiebiao/elibrary/internal/domain/loan"
	"github.com/xiebiao/elibrary/internal/domain/reservation"
	"github.com/xiebiao/elibrary/internal/domain/user"
	"github.com/xiebiao/elibrary/internal/infrastructure/config"
	"github.com/xiebiao/elibrary/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/elibrary/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/elibrary/internal/interface/http/handler"
	"github.com/xiebiao/elibrary/internal/interface/http/middleware"
	"github.com/xiebiao/elibrary/pkg/jwt"
	"github.com/xiebiao/elibrary/pkg/metrics"
	"github.com/xiebiao/elibrary/pkg/mq"
)

// ========================================
// Wire Provider Sets (依赖分组)
// ========================================

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,     // 加载配置文件
	mysql.NewDB,     // 创建MySQL连接
	redis.NewClient, // 创建Redis连接
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewAuthorRepository,
	mysql.NewGenreRepository,
	mysql.NewLoanRepository,
	mysql.NewReservationRepository,
	mysql.NewTxManager,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
	author.NewService,
	genre.NewService,
	loan.NewService,
	reservation.NewService,
)

// applicationSet 应用层依赖
// 教学说明:
// 用例的TxManager/EventPublisher参数是接口类型,
// Wire无法自动从具体类型推导,由自定义Provider完成组装
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	provideLoginUseCase,
	provideLogoutUseCase,
	provideDeleteUserUseCase,
	appbook.NewListBooksUseCase,
	provideCheckAvailabilityUseCase,
	provideBorrowBookUseCase,
	provideReturnBookUseCase,
	provideRenewLoanUseCase,
	provideReserveBookUseCase,
	provideCancelReservationUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	provideAvailabilityCache,
	provideMQPublisher,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewUserHandler,
	handler.NewBookHandler,
	handler.NewAuthorHandler,
	handler.NewGenreHandler,
	handler.NewLoanHandler,
	handler.NewReservationHandler,
)

// ========================================
// Custom Providers (自定义Provider)
// ========================================

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideAvailabilityCache 从Redis客户端创建可借数缓存
func provideAvailabilityCache(client *goredis.Client) *redis.AvailabilityCache {
	return redis.NewAvailabilityCache(client)
}

// provideMQPublisher 创建RabbitMQ发布器(MQ未启用时返回nil)
func provideMQPublisher(cfg *config.Config) (*mq.Publisher, error) {
	if !cfg.MQ.Enabled {
		return nil, nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
}

func provideLoginUseCase(svc user.Service, jm *jwt.Manager, ss *redis.SessionStore) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(svc, jm, ss)
}

func provideLogoutUseCase(jm *jwt.Manager, ss *redis.SessionStore) *appuser.LogoutUseCase {
	return appuser.NewLogoutUseCase(jm, ss)
}

func provideDeleteUserUseCase(svc user.Service, loanRepo loan.Repository, txm *mysql.TxManager) *appuser.DeleteUserUseCase {
	return appuser.NewDeleteUserUseCase(svc, loanRepo, txm)
}

func provideCheckAvailabilityUseCase(bookRepo book.Repository, cache *redis.AvailabilityCache) *appbook.CheckAvailabilityUseCase {
	return appbook.NewCheckAvailabilityUseCase(bookRepo, cache)
}

// loanEventPublisher 避免将nil的*mq.Publisher装进非nil接口
func loanEventPublisher(pub *mq.Publisher) apploan.EventPublisher {
	if pub == nil {
		return nil
	}
	return pub
}

func reservationEventPublisher(pub *mq.Publisher) appres.EventPublisher {
	if pub == nil {
		return nil
	}
	return pub
}

func provideBorrowBookUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txm *mysql.TxManager,
	pub *mq.Publisher,
	cache *redis.AvailabilityCache,
	cfg *config.Config,
) *apploan.BorrowBookUseCase {
	return apploan.NewBorrowBookUseCase(loanRepo, bookRepo, txm,
		loanEventPublisher(pub), cache, cfg.Loan.MaxLoanDays)
}

func provideReturnBookUseCase(
	loanRepo loan.Repository,
	bookRepo book.Repository,
	txm *mysql.TxManager,
	pub *mq.Publisher,
	cache *redis.AvailabilityCache,
) *apploan.ReturnBookUseCase {
	return apploan.NewReturnBookUseCase(loanRepo, bookRepo, txm,
		loanEventPublisher(pub), cache)
}

func provideRenewLoanUseCase(
	loanRepo loan.Repository,
	txm *mysql.TxManager,
	pub *mq.Publisher,
	cfg *config.Config,
) *apploan.RenewLoanUseCase {
	return apploan.NewRenewLoanUseCase(loanRepo, txm,
		loanEventPublisher(pub), cfg.Loan.MaxRenewals, cfg.Loan.MaxLoanDays)
}

func provideReserveBookUseCase(
	resRepo reservation.Repository,
	bookRepo book.Repository,
	txm *mysql.TxManager,
	pub *mq.Publisher,
	cfg *config.Config,
) *appres.ReserveBookUseCase {
	return appres.NewReserveBookUseCase(resRepo, bookRepo, txm,
		reservationEventPublisher(pub), cfg.Loan.ReserveDays)
}

func provideCancelReservationUseCase(
	resRepo reservation.Repository,
	txm *mysql.TxManager,
	pub *mq.Publisher,
) *appres.CancelReservationUseCase {
	return appres.NewCancelReservationUseCase(resRepo, txm, reservationEventPublisher(pub))
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	authorHandler *handler.AuthorHandler,
	genreHandler *handler.GenreHandler,
	loanHandler *handler.LoanHandler,
	resHandler *handler.ReservationHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.Init()

	r := gin.Default()
	r.Use(metrics.GinMiddleware())

	// registerRoutes内含Swagger/metrics/业务路由
	registerRoutes(r, userHandler, bookHandler, authorHandler, genreHandler,
		loanHandler, resHandler, authMiddleware)

	return r
}

// ========================================
// Wire Injector (依赖注入器)
// ========================================

// InitializeApp 初始化整个应用
// Wire会按依赖链的正确顺序调用所有Provider:
// *gin.Engine ← Handler ← UseCase ← Service ← Repository ← *gorm.DB ← *config.Config
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)

	// 占位返回值,实际代码由wire生成在wire_gen.go中
	return nil, nil
}
