package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"WeatherEdge/internal/recorder"
)

// Server exposes the recorder's tables as CSV downloads plus health and
// metrics endpoints. It exists so the spreadsheet workflow keeps working
// after the move from flat files to SQLite.
type Server struct {
	echo *echo.Echo
	rec  recorder.Recorder
	addr string
}

// NewServer builds the export server. It does not start listening.
func NewServer(addr string, rec recorder.Recorder) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, rec: rec, addr: addr}
	e.GET("/", s.signals)
	e.GET("/export", s.signals)
	e.GET("/paper", s.paperTrades)
	e.GET("/resolve", s.resolutions)
	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return s
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		log.Info().Str("addr", s.addr).Msg("Export server listening")
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Export server failed")
		}
	}()
}

// Stop shuts the listener down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) signals(c echo.Context) error {
	rows, err := s.rec.AllSignals()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Record())
	}
	return writeCSV(c, "kalshi_signals.csv", recorder.SignalHeader, records)
}

func (s *Server) paperTrades(c echo.Context) error {
	rows, err := s.rec.AllPaperTrades()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Record())
	}
	return writeCSV(c, "paper_trades.csv", recorder.PaperHeader, records)
}

func (s *Server) resolutions(c echo.Context) error {
	rows, err := s.rec.AllResolutions()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Record())
	}
	return writeCSV(c, "resolutions.csv", recorder.ResolutionHeader, records)
}

func writeCSV(c echo.Context, filename string, header []string, records [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := w.WriteAll(records); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%s", filename))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
