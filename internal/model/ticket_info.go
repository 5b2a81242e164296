package model

// SeatStatus 座位顯示狀態：低於門檻顯示確切張數，否則顯示「有票」，0 顯示「無票(可候補)」
const (
	SeatStatusAvailable = "available"
	SeatStatusSoldOut   = "sold_out"
)

// ArrivalDay 抵達日標記
const (
	ArrivalSameDay = "same_day"
	ArrivalNextDay = "next_day"
)

// SeatAvailability 單一座位等級的查詢結果
type SeatAvailability struct {
	SeatClass SeatClass `json:"seat_class"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Price     float64   `json:"price"`

	// 排序用的原始剩餘數，不輸出
	Remaining int `json:"-"`
}

// TicketInfo 查詢結果的唯讀投影，不落地，每次重算或由快取提供
type TicketInfo struct {
	TrainNumber     string             `json:"train_number"`
	TrainType       TrainType          `json:"train_type"`
	FromStation     string             `json:"from_station"`
	ToStation       string             `json:"to_station"`
	DepartureTime   string             `json:"departure_time"`
	ArrivalTime     string             `json:"arrival_time"`
	DurationMinutes int                `json:"duration_minutes"`
	ArrivalDay      string             `json:"arrival_day"`
	Seats           []SeatAvailability `json:"seats"`

	// 排序用的發車分鐘數(自當日 00:00 起算)，不輸出
	DepartureMinute int `json:"-"`
}

// MinAvailablePrice 有票等級中的最低票價；全數售罄回傳 false
func (t *TicketInfo) MinAvailablePrice() (float64, bool) {
	found := false
	min := 0.0
	for _, s := range t.Seats {
		if s.Remaining <= 0 {
			continue
		}
		if !found || s.Price < min {
			min = s.Price
			found = true
		}
	}
	return min, found
}

// Meta 分頁資訊
type Meta struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PageSize    int `json:"page_size"`
}

// SearchResult 查詢回應
type SearchResult struct {
	Meta Meta          `json:"meta"`
	Data []*TicketInfo `json:"data"`
}
