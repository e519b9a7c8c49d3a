// Package callback encodes inline button data as typed payloads.
//
// Wire form is "kind:field:field". Fields are numbers, fixed words or
// catalog ids, and catalog ids cannot contain ':' so splitting is exact.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxDataLength is Telegram's limit for callback_data.
const MaxDataLength = 64

var ErrMalformed = errors.New("malformed callback payload")

type Kind string

const (
	KindCategory   Kind = "cat"
	KindSubtype    Kind = "sub"
	KindVolume     Kind = "vol"
	KindSubmission Kind = "mod"
	KindSuggestion Kind = "sug"
	KindPause      Kind = "adm"
)

const (
	wordApprove = "approve"
	wordReject  = "reject"
	wordCustom  = "custom"
	wordPause   = "pause"
)

type Payload struct {
	Kind     Kind
	Category string
	Subtype  int
	Volume   int
	Custom   bool
	UserID   int64
	ID       int64
	Approve  bool
}

func Category(id string) Payload {
	return Payload{Kind: KindCategory, Category: id}
}

func Subtype(categoryID string, idx int) Payload {
	return Payload{Kind: KindSubtype, Category: categoryID, Subtype: idx}
}

func PresetVolume(volumeML int) Payload {
	return Payload{Kind: KindVolume, Volume: volumeML}
}

func CustomVolume() Payload {
	return Payload{Kind: KindVolume, Custom: true}
}

func SubmissionDecision(userID int64, volumeML int, approve bool) Payload {
	return Payload{Kind: KindSubmission, UserID: userID, Volume: volumeML, Approve: approve}
}

func SuggestionDecision(id int64, approve bool) Payload {
	return Payload{Kind: KindSuggestion, ID: id, Approve: approve}
}

func PauseToggle() Payload {
	return Payload{Kind: KindPause}
}

func (p Payload) Encode() string {
	switch p.Kind {
	case KindCategory:
		return join(p.Kind, p.Category)
	case KindSubtype:
		return join(p.Kind, p.Category, strconv.Itoa(p.Subtype))
	case KindVolume:
		if p.Custom {
			return join(p.Kind, wordCustom)
		}
		return join(p.Kind, strconv.Itoa(p.Volume))
	case KindSubmission:
		return join(p.Kind, decisionWord(p.Approve), strconv.FormatInt(p.UserID, 10), strconv.Itoa(p.Volume))
	case KindSuggestion:
		return join(p.Kind, decisionWord(p.Approve), strconv.FormatInt(p.ID, 10))
	case KindPause:
		return join(p.Kind, wordPause)
	default:
		return string(p.Kind)
	}
}

func Decode(data string) (Payload, error) {
	if data == "" || len(data) > MaxDataLength {
		return Payload{}, fmt.Errorf("%w: length %d", ErrMalformed, len(data))
	}
	parts := strings.Split(data, ":")
	kind := Kind(parts[0])
	args := parts[1:]

	switch kind {
	case KindCategory:
		if len(args) != 1 || !validID(args[0]) {
			return Payload{}, malformed(data)
		}
		return Category(args[0]), nil

	case KindSubtype:
		if len(args) != 2 || !validID(args[0]) {
			return Payload{}, malformed(data)
		}
		idx, err := nonNegative(args[1])
		if err != nil {
			return Payload{}, malformed(data)
		}
		return Subtype(args[0], idx), nil

	case KindVolume:
		if len(args) != 1 {
			return Payload{}, malformed(data)
		}
		if args[0] == wordCustom {
			return CustomVolume(), nil
		}
		volume, err := positive(args[0])
		if err != nil {
			return Payload{}, malformed(data)
		}
		return PresetVolume(volume), nil

	case KindSubmission:
		if len(args) != 3 {
			return Payload{}, malformed(data)
		}
		approve, ok := parseDecision(args[0])
		if !ok {
			return Payload{}, malformed(data)
		}
		userID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || userID <= 0 {
			return Payload{}, malformed(data)
		}
		volume, err := positive(args[2])
		if err != nil {
			return Payload{}, malformed(data)
		}
		return SubmissionDecision(userID, volume, approve), nil

	case KindSuggestion:
		if len(args) != 2 {
			return Payload{}, malformed(data)
		}
		approve, ok := parseDecision(args[0])
		if !ok {
			return Payload{}, malformed(data)
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || id <= 0 {
			return Payload{}, malformed(data)
		}
		return SuggestionDecision(id, approve), nil

	case KindPause:
		if len(args) != 1 || args[0] != wordPause {
			return Payload{}, malformed(data)
		}
		return PauseToggle(), nil

	default:
		return Payload{}, malformed(data)
	}
}

func join(kind Kind, fields ...string) string {
	return string(kind) + ":" + strings.Join(fields, ":")
}

func decisionWord(approve bool) string {
	if approve {
		return wordApprove
	}
	return wordReject
}

func parseDecision(word string) (bool, bool) {
	switch word {
	case wordApprove:
		return true, true
	case wordReject:
		return false, true
	default:
		return false, false
	}
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, ": ")
}

func nonNegative(raw string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("negative value %d", value)
	}
	return value, nil
}

func positive(raw string) (int, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("non-positive value %d", value)
	}
	return value, nil
}

func malformed(data string) error {
	return fmt.Errorf("%w: %q", ErrMalformed, data)
}
