package common

type ListResponse struct {
	Data  interface{} `json:"data"`
	Total int         `json:"total"`
}

func NewListResponse(data interface{}, total int) *ListResponse {
	return &ListResponse{
		Data:  data,
		Total: total,
	}
}
