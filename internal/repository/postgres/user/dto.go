package user

type Filter struct {
	Limit  *int
	Offset *int
	Page   *int
	Search *string
	Role   *string
}

type SignInRequest struct {
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

type GetListResponse struct {
	ID     int     `json:"id"`
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *string `json:"role"`
	Active bool    `json:"active"`
}

type CreateRequest struct {
	Name     *string `json:"name"     form:"name"`
	Email    *string `json:"email"    form:"email"`
	Password *string `json:"password" form:"password"`
	Role     *string `json:"role"     form:"role"`
}

type UpdateRequest struct {
	ID       int     `json:"-"        form:"-"`
	Name     *string `json:"name"     form:"name"`
	Email    *string `json:"email"    form:"email"`
	Password *string `json:"password" form:"password"`
	Role     *string `json:"role"     form:"role"`
	Active   *bool   `json:"active"   form:"active"`
}
