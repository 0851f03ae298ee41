// Package pagination implements opaque cursors and keyset pagination over
// ordered result sets.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/allisson/tasks/internal/errors"
)

// ErrMalformedCursor indicates a cursor that cannot be decoded.
var ErrMalformedCursor = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed cursor")

// Kind identifies the type of a sort key carried by a cursor.
type Kind string

const (
	KindUUID Kind = "uuid"
	KindTime Kind = "time"
	KindInt  Kind = "int"
)

// Value is a typed sort key value. Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind
	UUID uuid.UUID
	Time time.Time
	Int  int64
}

// UUIDValue returns a Value keyed on a UUID.
func UUIDValue(id uuid.UUID) Value {
	return Value{Kind: KindUUID, UUID: id}
}

// TimeValue returns a Value keyed on a timestamp, normalized to UTC.
func TimeValue(t time.Time) Value {
	return Value{Kind: KindTime, Time: t.UTC()}
}

// IntValue returns a Value keyed on an integer.
func IntValue(i int64) Value {
	return Value{Kind: KindInt, Int: i}
}

// Any returns the underlying scalar, suitable as a query argument.
func (v Value) Any() any {
	switch v.Kind {
	case KindUUID:
		return v.UUID
	case KindTime:
		return v.Time
	default:
		return v.Int
	}
}

type envelope struct {
	Kind  Kind   `json:"k"`
	Value string `json:"v"`
}

// Encode serializes v into a URL-safe opaque string.
func Encode(v Value) (string, error) {
	env := envelope{Kind: v.Kind}

	switch v.Kind {
	case KindUUID:
		env.Value = v.UUID.String()
	case KindTime:
		env.Value = v.Time.UTC().Format(time.RFC3339Nano)
	case KindInt:
		env.Value = strconv.FormatInt(v.Int, 10)
	default:
		return "", apperrors.Wrapf(apperrors.ErrInvalidInput, "unsupported cursor kind %q", v.Kind)
	}

	raw, err := json.Marshal(env)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encode cursor")
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode parses a cursor produced by Encode. Every failure wraps ErrMalformedCursor.
func Decode(cursor string) (Value, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return Value{}, apperrors.Wrap(ErrMalformedCursor, "invalid encoding")
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Value{}, apperrors.Wrap(ErrMalformedCursor, "invalid payload")
	}

	switch env.Kind {
	case KindUUID:
		id, err := uuid.Parse(env.Value)
		if err != nil {
			return Value{}, apperrors.Wrap(ErrMalformedCursor, "invalid uuid")
		}
		return UUIDValue(id), nil
	case KindTime:
		t, err := time.Parse(time.RFC3339Nano, env.Value)
		if err != nil {
			return Value{}, apperrors.Wrap(ErrMalformedCursor, "invalid timestamp")
		}
		return TimeValue(t), nil
	case KindInt:
		i, err := strconv.ParseInt(env.Value, 10, 64)
		if err != nil {
			return Value{}, apperrors.Wrap(ErrMalformedCursor, "invalid integer")
		}
		return IntValue(i), nil
	default:
		return Value{}, apperrors.Wrapf(ErrMalformedCursor, "unknown kind %q", env.Kind)
	}
}
