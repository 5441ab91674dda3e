package poster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Transaction is a closed POS transaction. The wire names differ from the
// field names; decoding renames them once at the API boundary.
type Transaction struct {
	ID       int64
	ClientID int64
	ClosedAt time.Time
}

// ClientInfo is a registered client with its activation timestamp.
type ClientInfo struct {
	ID          int64
	ActivatedAt time.Time
}

// PageInfo is the pagination metadata echoed back by the API. The server may
// clamp per_page, so the echoed value is authoritative for termination checks.
type PageInfo struct {
	Count   int
	Page    int
	PerPage int
}

// Page is one page of records plus its pagination metadata.
type Page[T any] struct {
	Data T
	Page PageInfo
}

// Timestamps are timezone-naive local times of the source system.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type txWire struct {
	ID       flexInt  `json:"transaction_id"`
	ClientID flexInt  `json:"client_id"`
	ClosedAt flexTime `json:"date_close"`
}

// "date_activale" is not a typo here, it is one in the Poster API itself.
type clientWire struct {
	ID          flexInt  `json:"client_id"`
	ActivatedAt flexTime `json:"date_activale"`
}

type pageInfoWire struct {
	Count   flexInt `json:"count"`
	Page    flexInt `json:"page"`
	PerPage flexInt `json:"per_page"`
}

// UnmarshalJSON decodes the wire representation, failing on a missing or
// unparseable close timestamp.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var w txWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ClosedAt.IsZero() {
		return &MalformedResponseError{Reason: fmt.Sprintf("transaction %d has no close timestamp", w.ID)}
	}
	t.ID = int64(w.ID)
	t.ClientID = int64(w.ClientID)
	t.ClosedAt = time.Time(w.ClosedAt)
	return nil
}

// UnmarshalJSON decodes the wire representation, failing on a missing or
// unparseable activation timestamp.
func (c *ClientInfo) UnmarshalJSON(data []byte) error {
	var w clientWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ActivatedAt.IsZero() {
		return &MalformedResponseError{Reason: fmt.Sprintf("client %d has no activation timestamp", w.ID)}
	}
	c.ID = int64(w.ID)
	c.ActivatedAt = time.Time(w.ActivatedAt)
	return nil
}

func (p *PageInfo) UnmarshalJSON(data []byte) error {
	var w pageInfoWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p.Count = int(w.Count)
	p.Page = int(w.Page)
	p.PerPage = int(w.PerPage)
	return nil
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	var w struct {
		Data json.RawMessage `json:"data"`
		Page PageInfo        `json:"page"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Data != nil {
		if err := json.Unmarshal(w.Data, &p.Data); err != nil {
			return err
		}
	}
	p.Page = w.Page
	return nil
}

// flexInt decodes integers the Poster API serializes either as numbers or as
// quoted numeric strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(data), `"`)))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return &MalformedResponseError{Reason: fmt.Sprintf("invalid integer %q", s)}
	}
	*f = flexInt(n)
	return nil
}

// flexTime decodes naive timestamps in the handful of layouts Poster uses,
// plus millisecond epoch values some endpoints return.
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(bytes.TrimSpace(data), `"`)))
	if s == "" || s == "null" || s == "0" {
		*f = flexTime(time.Time{})
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*f = flexTime(t)
			return nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexTime(time.UnixMilli(ms).UTC())
		return nil
	}
	return &MalformedResponseError{Reason: fmt.Sprintf("invalid timestamp %q", s)}
}

func (f flexTime) IsZero() bool {
	return time.Time(f).IsZero()
}
