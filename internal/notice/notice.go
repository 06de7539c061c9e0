// Package notice turns workflow errors into the short messages shown to the
// user.
package notice

import (
	"errors"

	"github.com/nikhilbhutani/etpassistant/internal/analysis"
	"github.com/nikhilbhutani/etpassistant/internal/backend"
	"github.com/nikhilbhutani/etpassistant/internal/chat"
	"github.com/nikhilbhutani/etpassistant/internal/drafts"
	"github.com/nikhilbhutani/etpassistant/internal/export"
)

type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
)

const (
	MsgUnexpected       = "Erro inesperado"
	MsgDocumentNotFound = "Documento não encontrado"
)

type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func Success(msg string) Notice { return Notice{Level: LevelSuccess, Message: msg} }

func Info(msg string) Notice { return Notice{Level: LevelInfo, Message: msg} }

// FromError classifies err. action, when set, prefixes gateway failures
// ("Erro na análise: Erro no servidor").
func FromError(action string, err error) Notice {
	switch {
	case err == nil:
		return Notice{Level: LevelInfo}
	case errors.Is(err, analysis.ErrAssistantUnavailable):
		return Notice{Level: LevelError, Message: analysis.ErrAssistantUnavailable.Error()}
	case errors.Is(err, chat.ErrAssistantUnavailable):
		return Notice{Level: LevelError, Message: chat.ErrAssistantUnavailable.Error()}
	case errors.Is(err, analysis.ErrValueTooShort):
		return Notice{Level: LevelWarning, Message: analysis.ErrValueTooShort.Error()}
	case errors.Is(err, chat.ErrEmptyMessage):
		return Notice{Level: LevelWarning, Message: chat.ErrEmptyMessage.Error()}
	case errors.Is(err, drafts.ErrTitleRequired):
		return Notice{Level: LevelWarning, Message: drafts.ErrTitleRequired.Error()}
	case errors.Is(err, drafts.ErrNotFound):
		return Notice{Level: LevelWarning, Message: MsgDocumentNotFound}
	case errors.Is(err, drafts.ErrNoDraft):
		return Notice{Level: LevelInfo, Message: drafts.ErrNoDraft.Error()}
	case errors.Is(err, export.ErrMinimumData):
		return Notice{Level: LevelWarning, Message: export.ErrMinimumData.Error()}
	case errors.Is(err, analysis.ErrUnknownField), errors.Is(err, analysis.ErrNoResult):
		return Notice{Level: LevelWarning, Message: err.Error()}
	}

	if be, ok := backend.AsError(err); ok {
		msg := be.Message
		if action != "" {
			msg = action + ": " + msg
		}
		return Notice{Level: LevelError, Message: msg}
	}
	return Notice{Level: LevelError, Message: MsgUnexpected}
}
