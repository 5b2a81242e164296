package model

// Station 車站，拓撲載入後不可變
type Station struct {
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
	City string `json:"city" db:"city"`
}
