package handler

import (
	"eventchat/internal/app/chat"
	"eventchat/internal/configs"
)

type AppDeps struct {
	Gateway *chat.Gateway
	Config  *configs.AppConfig
}
