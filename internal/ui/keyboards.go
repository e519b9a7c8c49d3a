package ui

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nestor-churin/AlcoMeterBot/internal/callback"
	"github.com/nestor-churin/AlcoMeterBot/internal/catalog"
	"github.com/nestor-churin/AlcoMeterBot/internal/domain/model"
	"github.com/nestor-churin/AlcoMeterBot/internal/infra/telegram"
)

func CategoryKeyboard(cat *catalog.Catalog) tgbotapi.InlineKeyboardMarkup {
	categories := cat.Categories()
	buttons := make([]telegram.InlineButton, 0, len(categories))
	for _, c := range categories {
		buttons = append(buttons, telegram.InlineButton{Text: c.Name, Data: callback.Category(c.ID).Encode()})
	}
	return telegram.BuildInlineKeyboard(telegram.Grid(buttons, 2))
}

func SubtypeKeyboard(cat catalog.Category) tgbotapi.InlineKeyboardMarkup {
	buttons := make([]telegram.InlineButton, 0, len(cat.Subtypes))
	for i, name := range cat.Subtypes {
		buttons = append(buttons, telegram.InlineButton{Text: name, Data: callback.Subtype(cat.ID, i).Encode()})
	}
	return telegram.BuildInlineKeyboard(telegram.Grid(buttons, 2))
}

func VolumeKeyboard(cat catalog.Category) tgbotapi.InlineKeyboardMarkup {
	presets := cat.VolumePresets()
	row := make([]telegram.InlineButton, 0, len(presets))
	for _, v := range presets {
		row = append(row, telegram.InlineButton{Text: fmt.Sprintf("%dмл", v), Data: callback.PresetVolume(v).Encode()})
	}
	return telegram.BuildInlineKeyboard([][]telegram.InlineButton{
		row,
		{{Text: CustomVolumeButton, Data: callback.CustomVolume().Encode()}},
	})
}

func SubmissionDecisionKeyboard(rec model.Submission) tgbotapi.InlineKeyboardMarkup {
	return telegram.BuildInlineKeyboard([][]telegram.InlineButton{{
		{Text: ApproveButton, Data: callback.SubmissionDecision(rec.UserID, rec.VolumeML, true).Encode()},
		{Text: RejectButton, Data: callback.SubmissionDecision(rec.UserID, rec.VolumeML, false).Encode()},
	}})
}

func SuggestionDecisionKeyboard(sg model.Suggestion) tgbotapi.InlineKeyboardMarkup {
	return telegram.BuildInlineKeyboard([][]telegram.InlineButton{{
		{Text: AcceptButton, Data: callback.SuggestionDecision(sg.ID, true).Encode()},
		{Text: RejectButton, Data: callback.SuggestionDecision(sg.ID, false).Encode()},
	}})
}

// PauseKeyboard offers the opposite of the admin's current state.
func PauseKeyboard(paused bool) tgbotapi.InlineKeyboardMarkup {
	label := PauseButton
	if paused {
		label = ResumeButton
	}
	return telegram.BuildInlineKeyboard([][]telegram.InlineButton{{
		{Text: label, Data: callback.PauseToggle().Encode()},
	}})
}

func MainMenu(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	return telegram.BuildReplyKeyboard(rows)
}
