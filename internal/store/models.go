package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ykvlv/timetracker-bot/internal/domain"
)

func toUnix(t time.Time) int64 {
	return t.UTC().Unix()
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func fromNullInt64(ns sql.NullInt64) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := fromUnix(ns.Int64)
	return &t
}

// userData is the JSON document kept in users.data.
type userData struct {
	UserID int64 `json:"user_id"`
	domain.Profile
	domain.Settings
}

func encodeUser(u *domain.User) (string, error) {
	b, err := json.Marshal(userData{UserID: u.PlatformID, Profile: u.Profile, Settings: u.Settings})
	return string(b), err
}

func decodeUser(id, platformID int64, data string) (*domain.User, error) {
	var d userData
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return nil, err
	}
	return &domain.User{ID: id, PlatformID: platformID, Profile: d.Profile, Settings: d.Settings}, nil
}

func encodePayload(p domain.Payload) (string, error) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	b, err := json.Marshal(p)
	return string(b), err
}

func decodePayload(data string) (domain.Payload, error) {
	var p domain.Payload
	err := json.Unmarshal([]byte(data), &p)
	return p, err
}
