package zone

type Filter struct {
	Limit  *int
	Offset *int
	Page   *int
	Search *string
	Active *bool
}

type CreateRequest struct {
	Code        *string  `json:"code"        form:"code"`
	Name        *string  `json:"name"        form:"name"`
	Description *string  `json:"description" form:"description"`
	StartTime   *string  `json:"start_time"  form:"start_time"`
	EndTime     *string  `json:"end_time"    form:"end_time"`
	Days        []string `json:"days"        form:"days"`
	Active      *bool    `json:"active"      form:"active"`
}

type UpdateRequest struct {
	ID          int      `json:"-"           form:"-"`
	Name        *string  `json:"name"        form:"name"`
	Description *string  `json:"description" form:"description"`
	StartTime   *string  `json:"start_time"  form:"start_time"`
	EndTime     *string  `json:"end_time"    form:"end_time"`
	Days        []string `json:"days"        form:"days"`
	Active      *bool    `json:"active"      form:"active"`
}
