package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

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
	"github.com/xiebiao/elibrary/pkg/response"
)

// main 主程序入口
// 说明：手动依赖注入(wire.go提供等价的Wire注入器)
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 3. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 初始化RabbitMQ(可选)
	var (
		loanPublisher apploan.EventPublisher
		resPublisher  appres.EventPublisher
		mqPublisher   *mq.Publisher
	)
	if cfg.MQ.Enabled {
		mqPublisher, err = mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Fatalf("初始化RabbitMQ失败: %v", err)
		}
		loanPublisher = mqPublisher
		resPublisher = mqPublisher
	}

	// 5. 初始化Prometheus指标
	metrics.Init()

	// 6. 依赖注入（手动组装）
	// 学习要点：依赖注入链
	// Repository ← Service ← UseCase ← Handler

	// 基础设施层
	userRepo := mysql.NewUserRepository(db)
	bookRepo := mysql.NewBookRepository(db)
	authorRepo := mysql.NewAuthorRepository(db)
	genreRepo := mysql.NewGenreRepository(db)
	loanRepo := mysql.NewLoanRepository(db)
	resRepo := mysql.NewReservationRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	availCache := redis.NewAvailabilityCache(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	userService := user.NewService(userRepo)
	bookService := book.NewService(bookRepo)
	authorService := author.NewService(authorRepo)
	genreService := genre.NewService(genreRepo)
	loanService := loan.NewService(loanRepo)
	resService := reservation.NewService(resRepo)

	// 应用层
	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(jwtManager, sessionStore)
	deleteUserUseCase := appuser.NewDeleteUserUseCase(userService, loanRepo, txManager)
	listBooksUseCase := appbook.NewListBooksUseCase(bookService)
	checkAvailability := appbook.NewCheckAvailabilityUseCase(bookRepo, availCache)
	borrowBook := apploan.NewBorrowBookUseCase(loanRepo, bookRepo, txManager,
		loanPublisher, availCache, cfg.Loan.MaxLoanDays)
	returnBook := apploan.NewReturnBookUseCase(loanRepo, bookRepo, txManager,
		loanPublisher, availCache)
	renewLoan := apploan.NewRenewLoanUseCase(loanRepo, txManager,
		loanPublisher, cfg.Loan.MaxRenewals, cfg.Loan.MaxLoanDays)
	reserveBook := appres.NewReserveBookUseCase(resRepo, bookRepo, txManager,
		resPublisher, cfg.Loan.ReserveDays)
	cancelReservation := appres.NewCancelReservationUseCase(resRepo, txManager, resPublisher)

	// 接口层
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase,
		deleteUserUseCase, userService, sessionStore)
	bookHandler := handler.NewBookHandler(bookService, listBooksUseCase, checkAvailability)
	authorHandler := handler.NewAuthorHandler(authorService)
	genreHandler := handler.NewGenreHandler(genreService)
	loanHandler := handler.NewLoanHandler(borrowBook, returnBook, renewLoan, loanService)
	resHandler := handler.NewReservationHandler(reserveBook, cancelReservation, resService)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 7. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(metrics.GinMiddleware())

	// 8. 注册路由
	registerRoutes(r, userHandler, bookHandler, authorHandler, genreHandler,
		loanHandler, resHandler, authMiddleware)

	// 9. 启动服务(支持优雅关闭)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
		fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
		fmt.Printf("   指标采集: http://localhost%s/metrics\n", addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("关闭服务失败: %v", err)
	}
	if mqPublisher != nil {
		_ = mqPublisher.Close()
	}
	log.Println("服务已退出")
}

// registerRoutes 注册路由
// 权限分层:
// - 公开: 注册/登录/图书与作者分类浏览
// - 登录: 借书/还书/续借/预约/个人记录
// - 馆员(Librarian/Admin): 目录维护、全馆借阅与逾期视图
// - 管理员(Admin): 用户角色与删除
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	bookHandler *handler.BookHandler,
	authorHandler *handler.AuthorHandler,
	genreHandler *handler.GenreHandler,
	loanHandler *handler.LoanHandler,
	resHandler *handler.ReservationHandler,
	auth *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireStaff := auth.RequireRole(user.RoleLibrarian, user.RoleAdmin)
	requireAdmin := auth.RequireRole(user.RoleAdmin)

	v1 := r.Group("/api/v1")
	{
		// 用户模块（公开接口）
		users := v1.Group("/users")
		{
			users.POST("/register", userHandler.Register)
			users.POST("/login", userHandler.Login)
		}

		// 用户模块（需要登录）
		usersAuth := v1.Group("/users", auth.RequireAuth())
		{
			usersAuth.POST("/logout", userHandler.Logout)
			usersAuth.GET("/me", userHandler.Profile)

			// 馆员视图
			usersAuth.GET("", requireStaff, userHandler.ListUsers)
			usersAuth.GET("/:id", requireStaff, userHandler.GetUser)
			usersAuth.GET("/:id/loans", requireStaff, loanHandler.UserLoans)

			// 管理员操作
			usersAuth.PUT("/:id/roles", requireAdmin, userHandler.UpdateRoles)
			usersAuth.DELETE("/:id", requireAdmin, userHandler.DeleteUser)
		}

		// 图书模块
		books := v1.Group("/books")
		{
			// 浏览接口公开
			books.GET("", bookHandler.ListBooks)
			books.GET("/:id", bookHandler.GetBook)
			books.GET("/isbn/:isbn", bookHandler.GetBookByISBN)
			books.GET("/:id/availability", bookHandler.CheckAvailability)

			// 目录维护需要馆员权限
			books.POST("", auth.RequireAuth(), requireStaff, bookHandler.CreateBook)
			books.PUT("/:id", auth.RequireAuth(), requireStaff, bookHandler.UpdateBook)
			books.DELETE("/:id", auth.RequireAuth(), requireStaff, bookHandler.DeleteBook)
		}

		// 作者模块
		authors := v1.Group("/authors")
		{
			authors.GET("", authorHandler.ListAuthors)
			authors.GET("/:id", authorHandler.GetAuthor)
			authors.POST("", auth.RequireAuth(), requireStaff, authorHandler.CreateAuthor)
			authors.PUT("/:id", auth.RequireAuth(), requireStaff, authorHandler.UpdateAuthor)
			authors.DELETE("/:id", auth.RequireAuth(), requireStaff, authorHandler.DeleteAuthor)
		}

		// 分类模块
		genres := v1.Group("/genres")
		{
			genres.GET("", genreHandler.ListGenres)
			genres.GET("/:id", genreHandler.GetGenre)
			genres.POST("", auth.RequireAuth(), requireStaff, genreHandler.CreateGenre)
			genres.PUT("/:id", auth.RequireAuth(), requireStaff, genreHandler.UpdateGenre)
			genres.DELETE("/:id", auth.RequireAuth(), requireStaff, genreHandler.DeleteGenre)
		}

		// 借阅模块（都需要登录）
		loans := v1.Group("/loans", auth.RequireAuth())
		{
			loans.POST("", loanHandler.BorrowBook)
			loans.GET("/my", loanHandler.MyLoans)
			loans.GET("/active", requireStaff, loanHandler.ActiveLoans)
			loans.GET("/overdue", requireStaff, loanHandler.OverdueLoans)
			loans.GET("/:id", loanHandler.GetLoan)
			loans.POST("/:id/return", loanHandler.ReturnBook)
			loans.POST("/:id/renew", loanHandler.RenewLoan)
		}

		// 预约模块（都需要登录）
		reservations := v1.Group("/reservations", auth.RequireAuth())
		{
			reservations.POST("", resHandler.ReserveBook)
			reservations.GET("/my", resHandler.MyReservations)
			reservations.GET("/active", requireStaff, resHandler.ActiveReservations)
			reservations.GET("/:id", resHandler.GetReservation)
			reservations.POST("/:id/cancel", resHandler.CancelReservation)
		}
	}
}
