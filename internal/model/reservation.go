package model

import "time"

// Reservation 已提交的座位保留：對 [FirstLeg, LastLeg] 內每個區段各扣 Count 張
type Reservation struct {
	ID          string    `json:"id"`
	TrainNumber string    `json:"train_number"`
	Date        string    `json:"date"`
	SeatClass   SeatClass `json:"seat_class"`
	FirstLeg    int       `json:"first_leg"`
	LastLeg     int       `json:"last_leg"`
	Count       int       `json:"count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Legs 展開成區段索引列表
func (r *Reservation) Legs() []int {
	legs := make([]int, 0, r.LastLeg-r.FirstLeg+1)
	for i := r.FirstLeg; i <= r.LastLeg; i++ {
		legs = append(legs, i)
	}
	return legs
}

// TrainDate 庫存的失效粒度：車次+乘車日
type TrainDate struct {
	TrainNumber string `json:"train_number"`
	Date        string `json:"date"`
}

// InvalidationEvent 庫存異動事件，由快取失效 worker 消費
type InvalidationEvent struct {
	TrainNumber string `json:"train_number"`
	Date        string `json:"date"`
}
