package apperrors

import "errors"

var (
	ErrInvalidParameters    = errors.New("invalid parameters")
	ErrStationNotFound      = errors.New("station not found")
	ErrTrainNotFound        = errors.New("train not found")
	ErrNotServed            = errors.New("train does not serve the requested station pair")
	ErrInsufficientCapacity = errors.New("insufficient seat capacity")
	ErrUnknownReservation   = errors.New("unknown reservation")
	ErrCacheUnavailable     = errors.New("result cache unavailable")
	ErrInternalServerError  = errors.New("internal server error")
)
