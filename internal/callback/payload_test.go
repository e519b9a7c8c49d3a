package callback

import (
	"errors"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		payload Payload
		wire    string
	}{
		{Category("beer"), "cat:beer"},
		{Subtype("beer", 2), "sub:beer:2"},
		{PresetVolume(500), "vol:500"},
		{CustomVolume(), "vol:custom"},
		{SubmissionDecision(123456789, 750, true), "mod:approve:123456789:750"},
		{SubmissionDecision(42, 1000, false), "mod:reject:42:1000"},
		{SuggestionDecision(7, false), "sug:reject:7"},
		{PauseToggle(), "adm:pause"},
	}
	for _, tc := range cases {
		if got := tc.payload.Encode(); got != tc.wire {
			t.Fatalf("encode %+v: got %q, want %q", tc.payload, got, tc.wire)
		}
		decoded, err := Decode(tc.wire)
		if err != nil {
			t.Fatalf("decode %q: %v", tc.wire, err)
		}
		if decoded != tc.payload {
			t.Fatalf("decode %q: got %+v, want %+v", tc.wire, decoded, tc.payload)
		}
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"cat",
		"cat:",
		"cat:beer:extra",
		"sub:beer",
		"sub:beer:-1",
		"sub:beer:x",
		"vol:0",
		"vol:-5",
		"vol:abc",
		"mod:approve:42",
		"mod:maybe:42:500",
		"mod:approve:0:500",
		"mod:reject:42:0",
		"sug:approve:0",
		"adm:resume",
		"approve_42_500",
		"zzz:1",
		"cat:" + string(make([]byte, MaxDataLength)),
	}
	for _, input := range inputs {
		if _, err := Decode(input); !errors.Is(err, ErrMalformed) {
			t.Fatalf("decode %q: expected ErrMalformed, got %v", input, err)
		}
	}
}

func TestLargestDecisionFitsTelegramLimit(t *testing.T) {
	t.Parallel()

	wire := SubmissionDecision(9223372036854775807, 2147483647, false).Encode()
	if len(wire) > MaxDataLength {
		t.Fatalf("payload %q is %d bytes", wire, len(wire))
	}
}
