package server

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed ui/index.html
var indexPage []byte

// indexPageHandler serves the embedded single page UI.
func indexPageHandler(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexPage)
}
