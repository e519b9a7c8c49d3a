package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestActorID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		update tgbotapi.Update
		want   int64
	}{
		{"message", tgbotapi.Update{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 11}}}, 11},
		{"callback", tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{From: &tgbotapi.User{ID: 12}}}, 12},
		{"edited", tgbotapi.Update{EditedMessage: &tgbotapi.Message{From: &tgbotapi.User{ID: 13}}}, 13},
		{"channel post", tgbotapi.Update{ChannelPost: &tgbotapi.Message{}}, 0},
	}
	for _, tc := range cases {
		if got := ActorID(tc.update); got != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestLaneForIsStableAndInRange(t *testing.T) {
	t.Parallel()

	for _, actor := range []int64{0, 1, 7, -7, 123456789} {
		lane := LaneFor(actor, 4)
		if lane < 0 || lane >= 4 {
			t.Fatalf("actor %d: lane %d out of range", actor, lane)
		}
		if again := LaneFor(actor, 4); again != lane {
			t.Fatalf("actor %d: lane changed %d -> %d", actor, lane, again)
		}
	}
	if LaneFor(99, 1) != 0 {
		t.Fatal("single worker must use lane 0")
	}
}

func TestGrid(t *testing.T) {
	t.Parallel()

	buttons := []InlineButton{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	rows := Grid(buttons, 2)
	if len(rows) != 2 || len(rows[0]) != 2 || len(rows[1]) != 1 {
		t.Fatalf("unexpected layout: %+v", rows)
	}
	markup := BuildInlineKeyboard(rows)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 keyboard rows, got %d", len(markup.InlineKeyboard))
	}
}

func TestNewClientWithoutTokenIsDryRun(t *testing.T) {
	t.Parallel()

	client, err := NewClient("", 30, 2, nil, func(_ context.Context, _ tgbotapi.Update) {})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if !client.DryRun() {
		t.Fatal("expected dry run without token")
	}
	if _, err := client.Send(tgbotapi.NewMessage(1, "hi")); err != nil {
		t.Fatalf("dry send: %v", err)
	}
}
