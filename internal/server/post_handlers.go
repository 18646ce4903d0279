package server

import (
	"lumen/internal/models"
	"lumen/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts. The request is multipart/form-data with
// caption, location and tags fields plus the image file.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	session, err := s.session(c)
	if err != nil {
		return nil
	}

	filename, content, err := formFile(c, "file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidArgumentError("Could not read uploaded file"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), session, service.CreatePostInput{
		Caption:  c.FormValue("caption"),
		Location: c.FormValue("location"),
		Tags:     c.FormValue("tags"),
		Filename: filename,
		File:     content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts. The feed is newest-first; cursor is the id
// of the last post from the previous page.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	cursor := c.QueryInt("cursor", 0)
	if cursor < 0 {
		cursor = 0
	}

	currentUserID := s.optionalUserID(c)
	posts, err := s.postService.GetRecentPosts(c.UserContext(), p.Limit, uint(cursor), currentUserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// SearchPosts handles GET /api/posts/search?q=...
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	currentUserID := s.optionalUserID(c)

	posts, err := s.postService.SearchPosts(c.UserContext(), c.Query("q"), p.Limit, currentUserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id, s.optionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id. Multipart like CreatePost; the file
// field is optional and the existing image is kept when it is absent.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	session, err := s.session(c)
	if err != nil {
		return nil
	}

	filename, content, err := formFile(c, "file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidArgumentError("Could not read uploaded file"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), session, service.UpdatePostInput{
		PostID:   id,
		Caption:  c.FormValue("caption"),
		Location: c.FormValue("location"),
		Tags:     c.FormValue("tags"),
		Filename: filename,
		File:     content,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id?imageId=... Both the post id and
// its image id are required.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	session, err := s.session(c)
	if err != nil {
		return nil
	}

	err = s.postService.DeletePost(c.UserContext(), session, service.DeletePostInput{
		PostID:  id,
		ImageID: c.Query("imageId"),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// ToggleLikePost handles POST /api/posts/:id/like and returns the fresh post.
func (s *Server) ToggleLikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	session, err := s.session(c)
	if err != nil {
		return nil
	}

	post, err := s.postService.ToggleLike(c.UserContext(), session, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(post)
}

// SavePost handles POST /api/posts/:id/save
func (s *Server) SavePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	session, err := s.session(c)
	if err != nil {
		return nil
	}

	save, err := s.postService.SavePost(c.UserContext(), session, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(save)
}

// DeleteSavedPost handles DELETE /api/saves/:id
func (s *Server) DeleteSavedPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	session, err := s.session(c)
	if err != nil {
		return nil
	}

	if err := s.postService.DeleteSavedPost(c.UserContext(), session, id); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"status": "ok"})
}

// GetSavedPosts handles GET /api/posts/saved/me, ordered by save time.
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	session, err := s.session(c)
	if err != nil {
		return nil
	}

	posts, err := s.postService.GetSavedPosts(c.UserContext(), session)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	p := parsePagination(c, 20)

	posts, err := s.postService.GetUserPosts(c.UserContext(), id, p.Limit, p.Offset, s.optionalUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"posts": posts})
}
