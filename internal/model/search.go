package model

// SortKey 排序鍵
type SortKey string

const (
	SortByDeparture SortKey = "departure_asc"
	SortByDuration  SortKey = "duration_asc"
	SortByPrice     SortKey = "price_asc"
)

// IsValid 驗證排序鍵是否有效
func (k SortKey) IsValid() bool {
	switch k {
	case SortByDeparture, SortByDuration, SortByPrice:
		return true
	}
	return false
}

// SearchRequest 查詢請求：由外層 request shell 解析完成後傳入引擎
type SearchRequest struct {
	From      string    `form:"from" json:"from"`
	To        string    `form:"to" json:"to"`
	Date      string    `form:"date" json:"date"` // YYYY-MM-DD
	TrainType TrainType `form:"train_type" json:"train_type,omitempty"`
	SortBy    SortKey   `form:"sort_by" json:"sort_by,omitempty"`
	Page      int       `form:"page,default=1" json:"page"`
	PageSize  int       `form:"page_size,default=10" json:"page_size"`
}

// ReserveRequest 保留座位請求
type ReserveRequest struct {
	TrainNumber string    `json:"train_number" binding:"required"`
	Date        string    `json:"date" binding:"required"`
	From        string    `json:"from" binding:"required"`
	To          string    `json:"to" binding:"required"`
	SeatClass   SeatClass `json:"seat_class" binding:"required"`
	Count       int       `json:"count" binding:"required"`
}
