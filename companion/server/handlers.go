package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/theimaginaryfoundation/comfort-bot/companion"
)

type textRequest struct {
	Text string `json:"text"`
}

type composeRequest struct {
	Text string `json:"text"`
	Mood string `json:"mood"`
}

type composeResponse struct {
	Reply string         `json:"reply"`
	Mood  companion.Mood `json:"mood"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleReply runs the full pipeline and records both turns in the conversation log.
func (s *Server) handleReply(c echo.Context) error {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	reply := s.engine.Respond(c.Request().Context(), companion.NewUtterance(req.Text))
	return c.JSON(http.StatusOK, reply)
}

func (s *Server) handleSentiment(c echo.Context) error {
	var req textRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.engine.AnalyzeSentiment(c.Request().Context(), req.Text))
}

func (s *Server) handleCompose(c echo.Context) error {
	var req composeRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	mood, err := companion.ParseMood(req.Mood)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// mood is already normalized, so Compose cannot reject it
	text, err := s.engine.Compose(req.Text, mood)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, composeResponse{Reply: text, Mood: mood})
}
