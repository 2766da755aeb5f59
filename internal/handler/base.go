// Package handler defines HTTP request handlers and related utilities.
package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BaseHandler provides common dependencies for HTTP handlers.
type BaseHandler struct {
	logger *slog.Logger
}

// NewApp returns a fiber app that encodes and decodes JSON with jsoniter.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
}
