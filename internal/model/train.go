package model

// TrainType 車種類型
type TrainType string

const (
	TrainTypeHighSpeed TrainType = "high_speed"
	TrainTypeNormal    TrainType = "normal"
)

// IsValid 驗證車種是否有效
func (t TrainType) IsValid() bool {
	switch t {
	case TrainTypeHighSpeed, TrainTypeNormal:
		return true
	}
	return false
}

// SeatClass 座位等級
type SeatClass string

const (
	SeatClassBusiness SeatClass = "business_class"
	SeatClassFirst    SeatClass = "first_class"
	SeatClassSecond   SeatClass = "second_class"
	SeatClassSleeper  SeatClass = "sleeper"
)

var seatClassNames = map[SeatClass]string{
	SeatClassBusiness: "商務座",
	SeatClassFirst:    "一等座",
	SeatClassSecond:   "二等座",
	SeatClassSleeper:  "臥鋪",
}

// IsValid 驗證座位等級是否有效
func (c SeatClass) IsValid() bool {
	_, ok := seatClassNames[c]
	return ok
}

// DisplayName 座位等級顯示名稱
func (c SeatClass) DisplayName() string {
	if name, ok := seatClassNames[c]; ok {
		return name
	}
	return string(c)
}

// SeatConfig 每車次每等級的固定票價與編組容量
type SeatConfig struct {
	Price    float64 `json:"price" db:"price"`
	Capacity int     `json:"capacity" db:"capacity"`
}

// Stop 停靠站：到發時刻為 "15:04" 字串，DayOffset 為跨夜天數累計
type Stop struct {
	StationCode string `json:"station_code" db:"station_code"`
	Arrival     string `json:"arrival" db:"arrival"`
	Departure   string `json:"departure" db:"departure"`
	DayOffset   int    `json:"day_offset" db:"day_offset"`
}

// Train 車次：停靠順序固定，N 個停靠站之間有 N-1 個區段(leg)
type Train struct {
	Number string                   `json:"number" db:"number"`
	Type   TrainType                `json:"type" db:"type"`
	Stops  []Stop                   `json:"stops"`
	Seats  map[SeatClass]SeatConfig `json:"seats"`
}

// LegCount 區段數
func (t *Train) LegCount() int {
	if len(t.Stops) < 2 {
		return 0
	}
	return len(t.Stops) - 1
}
