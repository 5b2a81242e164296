package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"train-ticket-engine/config"
	"train-ticket-engine/internal/availability"
	"train-ticket-engine/internal/cache"
	"train-ticket-engine/internal/inventory"
	"train-ticket-engine/internal/model"
	"train-ticket-engine/internal/topology"
	apperrors "train-ticket-engine/pkg/app_errors"
	"train-ticket-engine/pkg/logger"

	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// SearchService 查詢引擎：候選車次 -> 逐車次計算 -> 過濾 -> 排序 -> 分頁
type SearchService interface {
	Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error)
}

type SearchServiceImpl struct {
	topology *topology.RouteTopology
	computer availability.AvailabilityComputer
	store    inventory.SeatInventoryStore
	cache    cache.ResultCache
	cfg      config.SearchConfig

	// 可注入的時鐘，驗證「乘車日不得早於今日」用
	now func() time.Time
}

func NewSearchService(topo *topology.RouteTopology, computer availability.AvailabilityComputer, store inventory.SeatInventoryStore, resultCache cache.ResultCache, cfg config.SearchConfig) *SearchServiceImpl {
	return &SearchServiceImpl{
		topology: topo,
		computer: computer,
		store:    store,
		cache:    resultCache,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithClock 覆寫時鐘，測試用
func (s *SearchServiceImpl) WithClock(now func() time.Time) *SearchServiceImpl {
	s.now = now
	return s
}

func (s *SearchServiceImpl) Search(ctx context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}

	// 簽名以站代碼為準，站名與代碼查同一條目
	from, err := s.topology.Station(req.From)
	if err != nil {
		return nil, err
	}
	to, err := s.topology.Station(req.To)
	if err != nil {
		return nil, err
	}

	signature := cache.SearchSignature(from.Code, to.Code, req.Date, req.TrainType, req.SortBy)

	log := logger.WithComponent("service").With(zap.String("signature", signature))

	if cached, ok, err := s.cache.Get(ctx, signature); err != nil {
		// 快取故障只降效能：退回直接計算
		log.Warn("cache get failed, computing directly", zap.Error(err))
	} else if ok {
		return s.paginate(cached, req.Page, req.PageSize), nil
	}

	tickets, touched, versions, err := s.compute(ctx, req, from.Code, to.Code)
	if err != nil {
		return nil, err
	}

	// 寫回分頁前的完整列表，後續各頁共用同一條目
	if err := s.cache.Put(ctx, signature, tickets, touched); err != nil {
		log.Warn("cache put failed", zap.Error(err))
	} else {
		s.revalidate(ctx, versions, log)
	}

	return s.paginate(tickets, req.Page, req.PageSize), nil
}

// revalidate Put 之後重驗庫存版本。異動若落在計算與寫入之間，
// 其失效事件搶在條目存在之前、掃不到這筆條目，必須在此補失效。
func (s *SearchServiceImpl) revalidate(ctx context.Context, versions map[model.TrainDate]uint64, log *zap.Logger) {
	for td, seen := range versions {
		current, err := s.store.Version(td.TrainNumber, td.Date)
		if err == nil && current == seen {
			continue
		}
		if err := s.cache.Invalidate(ctx, td.TrainNumber, td.Date); err != nil {
			log.Warn("post-put invalidate failed",
				zap.String("train", td.TrainNumber), zap.String("date", td.Date), zap.Error(err))
		}
	}
}

func (s *SearchServiceImpl) validate(req *model.SearchRequest) error {
	if req.From == "" || req.To == "" || req.From == req.To {
		return apperrors.ErrInvalidParameters
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return apperrors.ErrInvalidParameters
	}
	today, _ := time.Parse(dateLayout, s.now().Format(dateLayout))
	if date.Before(today) {
		return apperrors.ErrInvalidParameters
	}

	if req.TrainType != "" && !req.TrainType.IsValid() {
		return apperrors.ErrInvalidParameters
	}
	if req.SortBy == "" {
		req.SortBy = model.SortByDeparture
	}
	if !req.SortBy.IsValid() {
		return apperrors.ErrInvalidParameters
	}

	if req.Page < 1 || req.PageSize < 1 || req.PageSize > s.cfg.MaxPageSize {
		return apperrors.ErrInvalidParameters
	}
	return nil
}

func (s *SearchServiceImpl) compute(ctx context.Context, req model.SearchRequest, fromCode, toCode string) ([]*model.TicketInfo, []model.TrainDate, map[model.TrainDate]uint64, error) {
	candidates, err := s.topology.TrainsServing(fromCode, toCode)
	if err != nil {
		return nil, nil, nil, err
	}

	tickets := make([]*model.TicketInfo, 0, len(candidates))
	touched := make([]model.TrainDate, 0, len(candidates))
	versions := make(map[model.TrainDate]uint64, len(candidates))

	for _, trainNo := range candidates {
		// 版本先取後算：計算期間的異動會讓重驗失敗
		version, err := s.store.Version(trainNo, req.Date)
		if err != nil {
			if errors.Is(err, apperrors.ErrTrainNotFound) {
				// 當日未開行，剔除
				continue
			}
			return nil, nil, nil, err
		}

		info, err := s.computer.ComputeTicketInfo(ctx, trainNo, fromCode, toCode, req.Date)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotServed) || errors.Is(err, apperrors.ErrTrainNotFound) {
				// 未覆蓋站對，剔除
				continue
			}
			return nil, nil, nil, err
		}

		if req.TrainType != "" && info.TrainType != req.TrainType {
			continue
		}

		td := model.TrainDate{TrainNumber: trainNo, Date: req.Date}
		tickets = append(tickets, info)
		touched = append(touched, td)
		versions[td] = version
	}

	s.sortTickets(tickets, req.SortBy)
	return tickets, touched, versions, nil
}

func (s *SearchServiceImpl) sortTickets(tickets []*model.TicketInfo, sortBy model.SortKey) {
	switch sortBy {
	case model.SortByDuration:
		sort.Slice(tickets, func(i, j int) bool {
			if tickets[i].DurationMinutes != tickets[j].DurationMinutes {
				return tickets[i].DurationMinutes < tickets[j].DurationMinutes
			}
			return tickets[i].TrainNumber < tickets[j].TrainNumber
		})
	case model.SortByPrice:
		sort.Slice(tickets, func(i, j int) bool {
			pi, iOK := tickets[i].MinAvailablePrice()
			pj, jOK := tickets[j].MinAvailablePrice()
			// 全數售罄的車次排最後
			if iOK != jOK {
				return iOK
			}
			if iOK && pi != pj {
				return pi < pj
			}
			return tickets[i].TrainNumber < tickets[j].TrainNumber
		})
	default: // departure_asc
		sort.Slice(tickets, func(i, j int) bool {
			if tickets[i].DepartureMinute != tickets[j].DepartureMinute {
				return tickets[i].DepartureMinute < tickets[j].DepartureMinute
			}
			return tickets[i].TrainNumber < tickets[j].TrainNumber
		})
	}
}

func (s *SearchServiceImpl) paginate(tickets []*model.TicketInfo, page, pageSize int) *model.SearchResult {
	totalItems := len(tickets)
	totalPages := (totalItems + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return &model.SearchResult{
		Meta: model.Meta{
			TotalItems:  totalItems,
			TotalPages:  totalPages,
			CurrentPage: page,
			PageSize:    pageSize,
		},
		Data: tickets[start:end],
	}
}
