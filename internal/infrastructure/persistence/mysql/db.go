package mysql

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xiebiao/elibrary/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（AutoMigrate）
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	// 1. 构建DSN连接字符串
	dsn := cfg.Database.DSN()

	// 2. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 3. 连接数据库
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	// 4. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 5. 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	log.Println("✓ 数据库连接成功")

	// 6. 自动迁移表结构（开发环境）
	// 注意：生产环境应使用专门的迁移工具（如golang-migrate）
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// AutoMigrate 自动迁移表结构
// 导出供sqlite内存库的仓储测试复用
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&UserRoleModel{},
		&AuthorModel{},
		&GenreModel{},
		&BookModel{},
		&BookAuthorModel{},
		&BookGenreModel{},
		&LoanModel{},
		&ReservationModel{},
	)
}

// UserModel GORM用户模型
// 设计说明：
// 1. infrastructure层的数据模型，包含GORM tag
// 2. domain/user/entity.go是领域实体，不依赖GORM
// 3. Repository负责两者之间的转换
type UserModel struct {
	ID               uint           `gorm:"primaryKey"`
	Email            string         `gorm:"uniqueIndex;size:100;not null;comment:邮箱"`
	Password         string         `gorm:"size:255;not null;comment:密码（bcrypt加密）"`
	FullName         string         `gorm:"size:80;not null;comment:姓名"`
	RegistrationDate time.Time      `gorm:"comment:注册时间"`
	CreatedAt        time.Time      `gorm:"comment:创建时间"`
	UpdatedAt        time.Time      `gorm:"comment:更新时间"`
	DeletedAt        gorm.DeletedAt `gorm:"index;comment:删除时间（软删除）"`
}

func (UserModel) TableName() string {
	return "users"
}

// UserRoleModel 用户角色关联
// 角色是固定枚举(User/Librarian/Admin),直接存角色名,不另建角色表
type UserRoleModel struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"uniqueIndex:idx_user_role;not null;comment:用户ID"`
	Role   string `gorm:"uniqueIndex:idx_user_role;size:20;not null;comment:角色名"`
}

func (UserRoleModel) TableName() string {
	return "user_roles"
}

// AuthorModel GORM作者模型
type AuthorModel struct {
	ID        uint           `gorm:"primaryKey"`
	FullName  string         `gorm:"uniqueIndex;size:100;not null;comment:姓名"`
	Biography string         `gorm:"type:text;comment:简介"`
	CreatedAt time.Time      `gorm:"comment:创建时间"`
	UpdatedAt time.Time      `gorm:"comment:更新时间"`
	DeletedAt gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (AuthorModel) TableName() string {
	return "authors"
}

// GenreModel GORM分类模型
type GenreModel struct {
	ID          uint           `gorm:"primaryKey"`
	Name        string         `gorm:"uniqueIndex;size:50;not null;comment:分类名"`
	Description string         `gorm:"type:text;comment:描述"`
	CreatedAt   time.Time      `gorm:"comment:创建时间"`
	UpdatedAt   time.Time      `gorm:"comment:更新时间"`
	DeletedAt   gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (GenreModel) TableName() string {
	return "genres"
}

// BookModel GORM图书模型
// 设计说明:
// 1. ISBN有唯一索引,防止重复
// 2. 台账不变量由CHECK约束兜底: 0 <= available_copies <= total_copies
//    (应用层守卫条件是第一道防线,CHECK是最后一道)
// 3. 作者/分类通过显式关联表维护(book_authors/book_genres)
type BookModel struct {
	ID              uint           `gorm:"primaryKey"`
	ISBN            string         `gorm:"uniqueIndex;size:20;not null;comment:ISBN号"`
	Title           string         `gorm:"index:idx_search;size:200;not null;comment:书名"`
	Publisher       string         `gorm:"size:100;comment:出版社"`
	Year            int            `gorm:"comment:出版年份"`
	Pages           int            `gorm:"comment:页数"`
	Language        string         `gorm:"size:30;comment:语言"`
	Description     string         `gorm:"type:text;comment:图书描述"`
	TotalCopies     int            `gorm:"not null;default:0;comment:馆藏总数"`
	AvailableCopies int            `gorm:"not null;default:0;check:available_copies >= 0 AND available_copies <= total_copies;comment:可借数"`
	CreatedAt       time.Time      `gorm:"index;comment:创建时间"`
	UpdatedAt       time.Time      `gorm:"comment:更新时间"`
	DeletedAt       gorm.DeletedAt `gorm:"index;comment:删除时间(软删除)"`
}

func (BookModel) TableName() string {
	return "books"
}

// BookAuthorModel 图书-作者关联
type BookAuthorModel struct {
	ID       uint `gorm:"primaryKey"`
	BookID   uint `gorm:"uniqueIndex:idx_book_author;not null"`
	AuthorID uint `gorm:"uniqueIndex:idx_book_author;not null"`
}

func (BookAuthorModel) TableName() string {
	return "book_authors"
}

// BookGenreModel 图书-分类关联
type BookGenreModel struct {
	ID      uint `gorm:"primaryKey"`
	BookID  uint `gorm:"uniqueIndex:idx_book_genre;not null"`
	GenreID uint `gorm:"uniqueIndex:idx_book_genre;not null"`
}

func (BookGenreModel) TableName() string {
	return "book_genres"
}

// LoanModel GORM借阅模型
// 教学要点:
// 1. 借阅记录是历史档案,没有DeletedAt(永不删除)
// 2. (user_id, book_id, return_date)联合索引服务重复借阅检查
// 3. return_date为NULL表示在借
type LoanModel struct {
	ID         uint       `gorm:"primaryKey"`
	LoanUID    string     `gorm:"uniqueIndex;size:36;not null;comment:业务UID"`
	BookID     uint       `gorm:"index:idx_user_book;index;not null;comment:图书ID"`
	UserID     uint       `gorm:"index:idx_user_book,priority:1;not null;comment:用户ID"`
	LoanDate   time.Time  `gorm:"not null;comment:借出日期"`
	DueDate    time.Time  `gorm:"index;not null;comment:应还日期"`
	ReturnDate *time.Time `gorm:"index;comment:归还日期(NULL表示在借)"`
	Renewals   int        `gorm:"not null;default:0;comment:已续借次数"`
	CreatedAt  time.Time  `gorm:"comment:创建时间"`
	UpdatedAt  time.Time  `gorm:"comment:更新时间"`
}

func (LoanModel) TableName() string {
	return "loans"
}

// ReservationModel GORM预约模型
// is_active+book_id+user_id联合索引服务重复预约检查
type ReservationModel struct {
	ID              uint      `gorm:"primaryKey"`
	ReservationUID  string    `gorm:"uniqueIndex;size:36;not null;comment:业务UID"`
	BookID          uint      `gorm:"index:idx_res_user_book;not null;comment:图书ID"`
	UserID          uint      `gorm:"index:idx_res_user_book,priority:1;not null;comment:用户ID"`
	ReservationDate time.Time `gorm:"not null;comment:预约日期"`
	ExpiryDate      time.Time `gorm:"index;not null;comment:失效日期"`
	IsActive        bool      `gorm:"index:idx_res_user_book;not null;default:true;comment:是否生效"`
	CreatedAt       time.Time `gorm:"comment:创建时间"`
	UpdatedAt       time.Time `gorm:"comment:更新时间"`
}

func (ReservationModel) TableName() string {
	return "reservations"
}
