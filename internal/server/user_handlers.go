package server

import (
	"lumen/internal/models"
	"lumen/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me. On first resolution this lazily
// provisions the caller's profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	session, err := s.session(c)
	if err != nil {
		return nil
	}
	return c.JSON(session.User)
}

// UpdateMyProfile handles PUT /api/users/me. Multipart with optional name,
// bio and avatar file fields.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	session, err := s.session(c)
	if err != nil {
		return nil
	}

	filename, content, err := formFile(c, "file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidArgumentError("Could not read uploaded file"))
	}

	user, err := s.userService.UpdateUser(c.UserContext(), session, service.UpdateUserInput{
		Name:     c.FormValue("name"),
		Bio:      c.FormValue("bio"),
		Filename: filename,
		File:     content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(user)
}

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 10)

	users, err := s.userService.GetUsers(c.UserContext(), p.Limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"users": users})
}

// GetUserProfile handles GET /api/users/:id with the profile's recent posts
// attached.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	postLimit := c.QueryInt("postLimit", 10)

	user, err := s.userService.GetUserByID(c.UserContext(), id, postLimit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(user)
}
