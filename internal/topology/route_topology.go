package topology

import (
	"fmt"
	"strconv"
	"strings"

	"train-ticket-engine/internal/model"
	apperrors "train-ticket-engine/pkg/app_errors"
)

// Schedule 起訖站的時刻投影
type Schedule struct {
	Departure       string
	Arrival         string
	DepartureMinute int // 自乘車日 00:00 起算
	DurationMinutes int
	ArrivalDay      string
}

type pairKey struct {
	origin string
	dest   string
}

// RouteTopology 全部車次的固定停靠拓撲，Build 之後唯讀，不需要同步
type RouteTopology struct {
	stations map[string]*model.Station // by code
	byName   map[string]*model.Station
	trains   map[string]*model.Train
	// 站對 -> 車次編號索引，查詢時免掃全部車次
	pairIndex map[pairKey][]string
}

// Build 由載入的車站與車次建立拓撲。停靠站必須引用已知車站、至少兩站。
func Build(stations []*model.Station, trains []*model.Train) (*RouteTopology, error) {
	t := &RouteTopology{
		stations:  make(map[string]*model.Station),
		byName:    make(map[string]*model.Station),
		trains:    make(map[string]*model.Train),
		pairIndex: make(map[pairKey][]string),
	}

	for _, s := range stations {
		if _, ok := t.stations[s.Code]; ok {
			return nil, fmt.Errorf("duplicate station code: %s", s.Code)
		}
		// 站名也是查詢入口，重名同樣拒絕
		if _, ok := t.byName[s.Name]; ok {
			return nil, fmt.Errorf("duplicate station name: %s", s.Name)
		}
		t.stations[s.Code] = s
		t.byName[s.Name] = s
	}

	for _, tr := range trains {
		if len(tr.Stops) < 2 {
			return nil, fmt.Errorf("train %s has fewer than 2 stops", tr.Number)
		}
		if _, ok := t.trains[tr.Number]; ok {
			return nil, fmt.Errorf("duplicate train number: %s", tr.Number)
		}
		for _, stop := range tr.Stops {
			if _, ok := t.stations[stop.StationCode]; !ok {
				return nil, fmt.Errorf("train %s references unknown station %s", tr.Number, stop.StationCode)
			}
			if _, err := parseClock(stop.Departure); err != nil {
				return nil, fmt.Errorf("train %s stop %s: %v", tr.Number, stop.StationCode, err)
			}
			if _, err := parseClock(stop.Arrival); err != nil {
				return nil, fmt.Errorf("train %s stop %s: %v", tr.Number, stop.StationCode, err)
			}
		}
		t.trains[tr.Number] = tr

		// 索引該車次覆蓋的所有有序站對
		for i := 0; i < len(tr.Stops); i++ {
			for j := i + 1; j < len(tr.Stops); j++ {
				key := pairKey{tr.Stops[i].StationCode, tr.Stops[j].StationCode}
				t.pairIndex[key] = append(t.pairIndex[key], tr.Number)
			}
		}
	}

	return t, nil
}

// Station 依站代碼或站名查車站
func (t *RouteTopology) Station(ref string) (*model.Station, error) {
	if s, ok := t.stations[ref]; ok {
		return s, nil
	}
	if s, ok := t.byName[ref]; ok {
		return s, nil
	}
	return nil, apperrors.ErrStationNotFound
}

// Train 依車次編號查車次
func (t *RouteTopology) Train(number string) (*model.Train, error) {
	tr, ok := t.trains[number]
	if !ok {
		return nil, apperrors.ErrTrainNotFound
	}
	return tr, nil
}

// Trains 全部車次編號，供庫存預熱用
func (t *RouteTopology) Trains() []*model.Train {
	trains := make([]*model.Train, 0, len(t.trains))
	for _, tr := range t.trains {
		trains = append(trains, tr)
	}
	return trains
}

// LegsCovering 回傳車次覆蓋起訖站的連續區段索引 [indexOf(origin), indexOf(dest))。
// 起站必須在停靠順序上嚴格早於訖站(依停靠順序而非時刻，跨夜車才能正確處理)。
func (t *RouteTopology) LegsCovering(trainNo, origin, dest string) ([]int, error) {
	tr, ok := t.trains[trainNo]
	if !ok {
		return nil, apperrors.ErrTrainNotFound
	}

	from, to, err := t.stopIndexes(tr, origin, dest)
	if err != nil {
		return nil, err
	}

	legs := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		legs = append(legs, i)
	}
	return legs, nil
}

// Schedule 起站發車、訖站到達時刻與歷時；跨夜以 DayOffset 正規化
func (t *RouteTopology) Schedule(trainNo, origin, dest string) (*Schedule, error) {
	tr, ok := t.trains[trainNo]
	if !ok {
		return nil, apperrors.ErrTrainNotFound
	}

	from, to, err := t.stopIndexes(tr, origin, dest)
	if err != nil {
		return nil, err
	}

	depStop := tr.Stops[from]
	arrStop := tr.Stops[to]

	depMin, _ := parseClock(depStop.Departure)
	arrMin, _ := parseClock(arrStop.Arrival)

	arrivalDay := model.ArrivalSameDay
	if arrStop.DayOffset > depStop.DayOffset {
		arrivalDay = model.ArrivalNextDay
	}

	return &Schedule{
		Departure:       depStop.Departure,
		Arrival:         arrStop.Arrival,
		DepartureMinute: depStop.DayOffset*24*60 + depMin,
		DurationMinutes: (arrStop.DayOffset*24*60 + arrMin) - (depStop.DayOffset*24*60 + depMin),
		ArrivalDay:      arrivalDay,
	}, nil
}

// TrainsServing 依站對索引回傳候選車次編號；站名或代碼皆可
func (t *RouteTopology) TrainsServing(origin, dest string) ([]string, error) {
	o, err := t.Station(origin)
	if err != nil {
		return nil, err
	}
	d, err := t.Station(dest)
	if err != nil {
		return nil, err
	}
	return t.pairIndex[pairKey{o.Code, d.Code}], nil
}

// stopIndexes 解析起訖站在停靠序列中的位置；任一站不在序列或順序相反皆視為未服務
func (t *RouteTopology) stopIndexes(tr *model.Train, origin, dest string) (int, int, error) {
	o, err := t.Station(origin)
	if err != nil {
		return 0, 0, err
	}
	d, err := t.Station(dest)
	if err != nil {
		return 0, 0, err
	}

	from, to := -1, -1
	for i, stop := range tr.Stops {
		if stop.StationCode == o.Code && from == -1 {
			from = i
		}
		if stop.StationCode == d.Code {
			to = i
		}
	}

	if from == -1 || to == -1 || from >= to {
		return 0, 0, apperrors.ErrNotServed
	}
	return from, to, nil
}

// parseClock 將 "15:04" 轉為自 00:00 起算的分鐘數
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return h*60 + m, nil
}
