package server

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/engine"
	"github.com/spigell/job-matcher/internal/profile"
)

const formResume = "resume"

type matchBody struct {
	Query string `json:"query" form:"query"`
}

func (s *Server) handleMatch(c *fiber.Ctx) error {
	log := requestLog(c, s.logger)

	req, err := s.parseMatchRequest(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	resp, err := s.matcher.Match(c.UserContext(), req)
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrInput):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, profile.ErrExtraction):
			log.Warn("profile extraction failed", zap.Error(err))
			return fiber.NewError(fiber.StatusBadGateway, profile.ErrExtraction.Error())
		default:
			log.Error("match failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "internal error")
		}
	}

	return c.JSON(resp)
}

func (s *Server) parseMatchRequest(c *fiber.Ctx) (*engine.Request, error) {
	req := &engine.Request{UserID: strings.TrimSpace(c.Get(headerUserID))}

	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return nil, fmt.Errorf("failed to parse multipart form: %w", err)
		}

		if values := form.Value["query"]; len(values) > 0 {
			req.Query = values[0]
		}

		files := form.File[formResume]
		if len(files) == 0 {
			break
		}
		file := files[0]

		f, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open resume: %w", err)
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("read resume: %w", err)
		}

		req.Document = data
		req.Filename = file.Filename
		req.MimeType = file.Header.Get(fiber.HeaderContentType)

	case len(c.Body()) == 0:
		// Neither resume nor query: the engine reports the input error.

	default:
		var body matchBody
		if err := c.BodyParser(&body); err != nil {
			return nil, fmt.Errorf("malformed request body: %w", err)
		}
		req.Query = body.Query
	}

	req.Query = strings.TrimSpace(req.Query)
	return req, nil
}
