// @title           PaintQuote API
// @version         1.0
// @description     API для генерации малярных смет по планам помещений.
// @contact.name    PaintQuote
// @contact.email   support@paintquote.app
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /api/v1

package main

import (
	"log"

	"github.com/joho/godotenv"

	"paintquote_backend/internal/app"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}
	app.Run()
}
