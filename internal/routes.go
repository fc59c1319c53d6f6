package internal

import (
	"net/http"

	"starbot/internal/controllers"
	"starbot/internal/providers"
	"starbot/internal/structures"
)

func InitRoutes(slackController *controllers.SlackController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/slack/command", http.HandlerFunc(slackController.HandleCommand))
	routers.Post("/slack/interact", http.HandlerFunc(slackController.HandleInteraction))
	return routers
}
