package dto

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"passw0rd"`
	FullName string `json:"full_name" binding:"required" example:"张三"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateRolesRequest 调整用户角色请求(仅管理员)
type UpdateRolesRequest struct {
	Add    []string `json:"add" example:"Librarian"`
	Remove []string `json:"remove"`
}
