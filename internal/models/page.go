package models

// Page is the server's paging envelope for list endpoints.
type Page[T any] struct {
	Content          []T  `json:"content"`
	PageNumber       int  `json:"page"`
	Size             int  `json:"size"`
	TotalElements    int  `json:"totalElements"`
	TotalPages       int  `json:"totalPages"`
	First            bool `json:"first"`
	Last             bool `json:"last"`
	NumberOfElements int  `json:"numberOfElements"`
	Empty            bool `json:"empty"`
}
