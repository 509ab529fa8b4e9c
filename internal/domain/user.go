package domain

import "time"

type (
	MsgId  = int64
	UserId = int64
)

// User is an account row. PassHash never leaves the service layer.
type User struct {
	Id        UserId
	Name      string
	PassHash  []byte
	Role      Role
	CreatedAt time.Time
}
