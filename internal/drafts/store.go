package drafts

import "errors"

var (
	ErrUnitIDRequired = errors.New("drafts: unit id required")
	ErrNilSnapshot    = errors.New("drafts: snapshot required")
	ErrStoreClosed    = errors.New("drafts: store closed")
)
