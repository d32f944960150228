package model

import (
	"time"

	"github.com/google/uuid"
)

// APILog records one API call. Writes are fire-and-forget: a failed insert
// never affects the request it describes.
type APILog struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Endpoint     string    `db:"endpoint" json:"endpoint"`
	Method       string    `db:"method" json:"method"`
	RequestBody  string    `db:"request_body" json:"request_body"`
	ResponseCode int       `db:"response_code" json:"response_code"`
	ResponseTime int64     `db:"response_time" json:"response_time"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// MaxLoggedBodyLen truncates logged request bodies.
const MaxLoggedBodyLen = 1000
