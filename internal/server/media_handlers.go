package server

import (
	"errors"

	"lumen/internal/models"
	"lumen/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// ServeMedia handles GET /media/f/:id/:name, serving stored previews and
// originals from disk. The store validates both path segments, so traversal
// attempts resolve to not-found.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	path, err := s.blobs.Resolve(c.Params("id"), c.Params("name"))
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("File", c.Params("id")))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewBackendFailure(err))
	}

	c.Set("Cache-Control", "public, max-age=86400, immutable")
	return c.SendFile(path)
}
