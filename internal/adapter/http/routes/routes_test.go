package routes

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"taskapp/internal/adapter/http/handler"
	"taskapp/pkg/config"
)

func testHandlers() HandlersConfig {
	return HandlersConfig{
		AuthHandler:    handler.NewAuthHandler(nil),
		AccountHandler: handler.NewAccountHandler(nil),
		AvatarHandler:  handler.NewAvatarHandler(nil, nil),
	}
}

func TestSetupRouterUsesReleaseModeInProduction(t *testing.T) {
	previous := gin.Mode()
	defer gin.SetMode(previous)

	cfg := &config.AppConfig{Environment: "production"}

	SetupRouter(testHandlers(), nil, nil, cfg, zap.NewNop())

	assert.Equal(t, gin.ReleaseMode, gin.Mode())
}

func TestSetupRouterKeepsModeOutsideProduction(t *testing.T) {
	previous := gin.Mode()
	defer gin.SetMode(previous)

	gin.SetMode(gin.DebugMode)

	cfg := &config.AppConfig{Environment: "development"}

	SetupRouter(testHandlers(), nil, nil, cfg, zap.NewNop())

	assert.Equal(t, gin.DebugMode, gin.Mode())
}
