package trello

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"riskreward.app/web/common/logger"
	"riskreward.app/web/internal/model"
)

const DefaultAPIURL = "https://api.trello.com"

// maxErrorBody caps how much of an error response is kept in APIError.
const maxErrorBody = 512

// CardQuery selects which cards and card fields ListCards returns.
type CardQuery struct {
	Lists   string
	Fields  []string
	Actions string
}

// DefaultCardQuery asks for cards on open lists with their labels and
// comment actions.
var DefaultCardQuery = CardQuery{
	Lists:   "open",
	Fields:  []string{"name", "url", "labels"},
	Actions: string(model.ActionTypeCommentCard),
}

type Client interface {
	MemberBoards(ctx context.Context) ([]model.Board, error)
	GetBoard(ctx context.Context, boardID string) (*model.Board, error)
	ListCards(ctx context.Context, boardID string, query CardQuery) ([]model.Card, error)
	PostComment(ctx context.Context, cardID, text string) (string, error)
	DeleteComment(ctx context.Context, actionID string) error
}

type client struct {
	http    *http.Client
	baseURL string
}

// NewClient returns a Client that sends requests through httpClient, which
// is expected to sign them (see Connector.Client).
func NewClient(httpClient *http.Client, baseURL string) Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (c *client) MemberBoards(ctx context.Context) ([]model.Board, error) {
	q := url.Values{}
	q.Set("filter", "open")
	q.Set("fields", "name,desc,url,closed")

	var boards []model.Board
	if err := c.do(ctx, http.MethodGet, "/1/members/me/boards", q, nil, &boards); err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	return boards, nil
}

func (c *client) GetBoard(ctx context.Context, boardID string) (*model.Board, error) {
	q := url.Values{}
	q.Set("fields", "name,desc")

	var board model.Board
	if err := c.do(ctx, http.MethodGet, "/1/boards/"+url.PathEscape(boardID), q, nil, &board); err != nil {
		return nil, fmt.Errorf("fetching board %s: %w", boardID, err)
	}
	if board.ID == "" {
		board.ID = boardID
	}
	return &board, nil
}

func (c *client) ListCards(ctx context.Context, boardID string, query CardQuery) ([]model.Card, error) {
	q := url.Values{}
	if query.Lists != "" {
		q.Set("lists", query.Lists)
	}
	if len(query.Fields) > 0 {
		q.Set("fields", strings.Join(query.Fields, ","))
	}
	if query.Actions != "" {
		q.Set("actions", query.Actions)
	}

	var cards []model.Card
	if err := c.do(ctx, http.MethodGet, "/1/boards/"+url.PathEscape(boardID)+"/cards", q, nil, &cards); err != nil {
		return nil, fmt.Errorf("listing cards of board %s: %w", boardID, err)
	}
	return cards, nil
}

func (c *client) PostComment(ctx context.Context, cardID, text string) (string, error) {
	form := url.Values{}
	form.Set("text", text)

	var action model.Action
	if err := c.do(ctx, http.MethodPost, "/1/cards/"+url.PathEscape(cardID)+"/actions/comments", nil, form, &action); err != nil {
		return "", fmt.Errorf("commenting on card %s: %w", cardID, err)
	}
	return action.ID, nil
}

func (c *client) DeleteComment(ctx context.Context, actionID string) error {
	if err := c.do(ctx, http.MethodDelete, "/1/actions/"+url.PathEscape(actionID), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting comment %s: %w", actionID, err)
	}
	return nil
}

// do sends one request. form, when set, is sent as an urlencoded body so
// the OAuth1 signature covers it. out, when set, receives the JSON response.
func (c *client) do(ctx context.Context, method, path string, query, form url.Values, out any) error {
	sc := logger.StartSpan(ctx, "trello."+strings.ToLower(method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer sc.End()
	ctx = sc.Context()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		sc.RecordError(err)
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	sc.Span().SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := errorForStatus(resp.StatusCode, strings.TrimSpace(string(raw)))
		sc.RecordError(err)
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
