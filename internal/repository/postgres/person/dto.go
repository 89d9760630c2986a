package person

type Filter struct {
	Limit    *int
	Offset   *int
	Page     *int
	Search   *string
	ZoneCode *string
	Active   *bool
}

type CreateRequest struct {
	ID             *string `json:"id"               form:"id"`
	Name           *string `json:"name"             form:"name"`
	FirstLastName  *string `json:"first_last_name"  form:"first_last_name"`
	SecondLastName *string `json:"second_last_name" form:"second_last_name"`
	Nationality    *string `json:"nationality"      form:"nationality"`
	IDDocument     *string `json:"id_document"      form:"id_document"`
	ZoneCode       *string `json:"zone_code"        form:"zone_code"`
	Active         *bool   `json:"active"           form:"active"`
}

type UpdateRequest struct {
	ID             string  `json:"-"                form:"-"`
	Name           *string `json:"name"             form:"name"`
	FirstLastName  *string `json:"first_last_name"  form:"first_last_name"`
	SecondLastName *string `json:"second_last_name" form:"second_last_name"`
	Nationality    *string `json:"nationality"      form:"nationality"`
	IDDocument     *string `json:"id_document"      form:"id_document"`
	ZoneCode       *string `json:"zone_code"        form:"zone_code"`
	Active         *bool   `json:"active"           form:"active"`
}

type ImportResponse struct {
	Created     int   `json:"created"`
	InvalidRows []int `json:"invalid_rows"`
}
