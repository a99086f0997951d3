package audit

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/udisondev/webauth/pkg/webauth"
)

// Event — запись аудита об одной попытке аутентификации.
type Event struct {
	RequestID    string
	Account      string
	HomeDomain   string
	ClientDomain string
	Result       string
	Error        string
	Started      time.Time
	Duration     time.Duration
}

// EventFromOutcome переносит итог попытки в событие.
func EventFromOutcome(o webauth.Outcome) Event {
	ev := Event{
		RequestID:    o.RequestID,
		Account:      o.Account,
		HomeDomain:   o.HomeDomain,
		ClientDomain: o.ClientDomain,
		Result:       o.Result,
		Started:      o.Started,
		Duration:     o.Duration,
	}
	if o.Err != nil {
		ev.Error = o.Err.Error()
	}
	return ev
}

// Marshal кодирует событие как google.protobuf.Struct.
func (e Event) Marshal() ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"request_id":    e.RequestID,
		"account":       e.Account,
		"home_domain":   e.HomeDomain,
		"client_domain": e.ClientDomain,
		"result":        e.Result,
		"error":         e.Error,
		"started_ms":    float64(e.Started.UnixMilli()),
		"duration_ms":   float64(e.Duration.Milliseconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("build event: %w", err)
	}
	return proto.Marshal(s)
}

// UnmarshalEvent декодирует событие.
func UnmarshalEvent(data []byte) (Event, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}

	f := s.GetFields()
	str := func(k string) string { return f[k].GetStringValue() }
	num := func(k string) int64 { return int64(f[k].GetNumberValue()) }

	return Event{
		RequestID:    str("request_id"),
		Account:      str("account"),
		HomeDomain:   str("home_domain"),
		ClientDomain: str("client_domain"),
		Result:       str("result"),
		Error:        str("error"),
		Started:      time.UnixMilli(num("started_ms")),
		Duration:     time.Duration(num("duration_ms")) * time.Millisecond,
	}, nil
}
