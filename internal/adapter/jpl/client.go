package jpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/impact-simulator/internal/domain"
)

// Client implements domain.NeoFeed using the JPL SBDB Close-Approach Data API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limit      int
	logger     *slog.Logger
}

// NewClient creates a close-approach feed client that lists up to limit
// upcoming Earth approaches of potentially hazardous asteroids.
func NewClient(baseURL string, timeout time.Duration, limit int, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		limit:   limit,
		logger:  logger,
	}
}

// FetchNeoFeed returns the upcoming close approaches. Any malformed record
// fails the whole fetch.
func (c *Client) FetchNeoFeed(ctx context.Context) ([]domain.NeoData, error) {
	params := url.Values{
		"pha":      {"true"},
		"date-min": {"now"},
		"body":     {"Earth"},
		"sort":     {"date"},
		"limit":    {strconv.Itoa(c.limit)},
	}
	fullURL := c.baseURL + "/cad.api?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("close-approach request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("jpl API error: status %d: %s", resp.StatusCode, body)
	}

	var cad response
	if err := json.NewDecoder(resp.Body).Decode(&cad); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records, err := parseRecords(cad)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("close-approach feed fetched", "records", len(records))
	return records, nil
}

// JPL CAD API response types. Every row is a positional array of cells.

type response struct {
	Fields []string `json:"fields"`
	Data   [][]any  `json:"data"`
}

// columns holds the row positions of the fields the simulator uses.
type columns struct {
	designation int
	date        int
	distance    int
	velocity    int
	magnitude   int
}

// defaultColumns is the positional layout used when the body has no fields header.
var defaultColumns = columns{designation: 0, date: 3, distance: 4, velocity: 6, magnitude: 10}

// resolveColumns maps the named CAD fields to positions, falling back to the
// fixed layout when the header is absent or incomplete.
func resolveColumns(fields []string) columns {
	if len(fields) == 0 {
		return defaultColumns
	}
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f] = i
	}
	cols := columns{}
	for name, dst := range map[string]*int{
		"des":   &cols.designation,
		"cd":    &cols.date,
		"dist":  &cols.distance,
		"v_rel": &cols.velocity,
		"h":     &cols.magnitude,
	} {
		i, ok := index[name]
		if !ok {
			return defaultColumns
		}
		*dst = i
	}
	return cols
}

func (c columns) width() int {
	return max(c.designation, c.date, c.distance, c.velocity, c.magnitude) + 1
}

func parseRecords(cad response) ([]domain.NeoData, error) {
	cols := resolveColumns(cad.Fields)
	records := make([]domain.NeoData, 0, len(cad.Data))

	for i, row := range cad.Data {
		if len(row) < cols.width() {
			return nil, fmt.Errorf("record %d: expected at least %d fields, got %d", i, cols.width(), len(row))
		}

		designation := cellString(row[cols.designation])
		if designation == "" {
			return nil, fmt.Errorf("record %d: missing designation", i)
		}
		distanceAU, err := cellFloat(row[cols.distance])
		if err != nil {
			return nil, fmt.Errorf("record %d distance: %w", i, err)
		}
		velocity, err := cellFloat(row[cols.velocity])
		if err != nil {
			return nil, fmt.Errorf("record %d velocity: %w", i, err)
		}
		magnitude, err := cellFloat(row[cols.magnitude])
		if err != nil {
			return nil, fmt.Errorf("record %d magnitude: %w", i, err)
		}

		records = append(records, domain.NeoData{
			Designation:       designation,
			CloseApproachDate: cellString(row[cols.date]),
			MissDistance:      distanceAU * domain.KilometersPerAU,
			Velocity:          velocity,
			Diameter:          domain.DiameterFromMagnitude(magnitude),
		})
	}
	return records, nil
}

var errEmptyCell = errors.New("empty value")

// cellString renders a JSON cell as trimmed text. Null cells are empty.
func cellString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func cellFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, errEmptyCell
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", s, err)
		}
		return f, nil
	default:
		return 0, errEmptyCell
	}
}
