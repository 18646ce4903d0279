package server

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"lumen/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const maxPaginationLimit = 100

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewInvalidArgumentError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// statusForError maps workflow error codes onto HTTP statuses. Unclassified
// errors are treated as internal.
func statusForError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeInvalidArgument:
		return fiber.StatusBadRequest
	case models.CodeUnauthenticated:
		return fiber.StatusUnauthorized
	case models.CodeUnauthorized:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the standardized error response for a service error.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, statusForError(err), err)
}

// session resolves the caller's session from the authenticated account id.
// On failure it writes the error response and returns errResponseWritten.
func (s *Server) session(c *fiber.Ctx) (*models.Session, error) {
	accountID, _ := c.Locals("accountID").(uint)
	sess, err := s.identityService.CurrentUser(c.UserContext(), accountID)
	if err != nil {
		_ = respondError(c, err)
		return nil, errResponseWritten
	}
	return sess, nil
}

// optionalUserID resolves the caller's profile user id when a valid token is
// present, without enforcing authentication. Public browse routes use it so
// the liked flag reflects the viewer.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	accountID, ok := c.Locals("accountID").(uint)
	if !ok || accountID == 0 {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return 0
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return 0
		}
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return 0
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return 0
		}
		sub, ok := claims["sub"].(string)
		if !ok {
			return 0
		}
		parsed, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return 0
		}
		accountID = uint(parsed)
	}

	user, err := s.userRepo.GetByAccountID(c.UserContext(), accountID)
	if err != nil || user == nil {
		return 0
	}
	return user.ID
}

// formFile reads the optional multipart file field. Returns empty values when
// the field is absent.
func formFile(c *fiber.Ctx, field string) (filename string, content []byte, err error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	content, err = io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return fh.Filename, content, nil
}
