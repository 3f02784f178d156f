package slack

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/slack-go/slack"

	"github.com/coveord/standupbot"
)

// Client posts standup messages through the Slack web API. Every call
// is bounded by the configured timeout.
type Client struct {
	api     *slack.Client
	timeout time.Duration
}

var _ standupbot.Messenger = &Client{}

// New builds a Slack client from the bot configuration. When a "d"
// session cookie is configured it is attached to every request, which
// some workspace tokens require.
func New(config standupbot.SlackConfig) *Client {
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	if config.Cookie != "" {
		httpClient.Transport = &cookieTransport{cookie: config.Cookie}
	}

	return &Client{
		api:     slack.New(config.Token, slack.OptionHTTPClient(httpClient)),
		timeout: timeout,
	}
}

// PostMessage delivers the text to the channel and returns the thread
// timestamp Slack assigned to the message.
func (c *Client) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	attachment := slack.Attachment{
		Color:      colorful.FastHappyColor().Hex(),
		MarkdownIn: []string{"text", "pretext"},
		Text:       text,
	}

	_, threadTS, err := c.api.PostMessageContext(ctx, channelID,
		slack.MsgOptionAttachments(attachment),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return "", apiError(err)
	}
	if threadTS == "" {
		return "", &standupbot.SlackAPIError{Code: "no_timestamp", Message: "response missing timestamp"}
	}
	return threadTS, nil
}

func apiError(err error) error {
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &standupbot.SlackAPIError{Code: "timeout", Message: "request timed out"}
	case errors.As(err, &urlErr):
		return &standupbot.SlackAPIError{Code: "transport", Message: err.Error()}
	default:
		// The Slack API reports failures as a bare error code string.
		return &standupbot.SlackAPIError{Code: err.Error(), Message: "failed to send message"}
	}
}

// cookieTransport attaches the Slack "d" session cookie to every
// outgoing request.
type cookieTransport struct {
	cookie string
	base   http.RoundTripper
}

func (t *cookieTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.AddCookie(&http.Cookie{Name: "d", Value: t.cookie})

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
