package gmail

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/gtl92/gmail-svelkit/internal/config"
	"github.com/gtl92/gmail-svelkit/internal/logger"
	"github.com/gtl92/gmail-svelkit/internal/model"
	"github.com/gtl92/gmail-svelkit/internal/service"
)

const gmailUser = "me" // the authenticated account

type gmailClient struct {
	client *gmail.Service
	logger *logger.Logger
}

// Factory builds per-user Gmail clients with a refreshing token source, so
// an expired access token is renewed from the refresh token transparently.
type Factory struct {
	oauthConfig *oauth2.Config
	logger      *logger.Logger
}

func NewFactory(cfg *config.Config, logger *logger.Logger) *Factory {
	return &Factory{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				gmail.GmailReadonlyScope,
				gmail.GmailSendScope,
			},
		},
		logger: logger,
	}
}

func (f *Factory) ForCredentials(ctx context.Context, creds *model.CredentialBundle) (service.MailSource, error) {
	if creds == nil || creds.AccessToken == "" {
		return nil, service.ErrNotAuthenticated
	}
	tokenSource := f.oauthConfig.TokenSource(ctx, creds.OAuthToken())
	httpClient := oauth2.NewClient(ctx, tokenSource)

	gmailService, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &gmailClient{client: gmailService, logger: f.logger}, nil
}

// wrapErr maps credential failures onto service.ErrNotAuthenticated and
// wraps everything else with context.
func wrapErr(action string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == 401 || apiErr.Code == 403) {
		return fmt.Errorf("%s: %w", action, service.ErrNotAuthenticated)
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%s: %w", action, service.ErrNotAuthenticated)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func (g *gmailClient) ListMessages(ctx context.Context, query string, maxResults int64) ([]string, error) {
	list, err := g.client.Users.Messages.List(gmailUser).
		MaxResults(maxResults).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("failed to list messages", err)
	}

	ids := make([]string, 0, len(list.Messages))
	for _, msg := range list.Messages {
		ids = append(ids, msg.Id)
	}
	return ids, nil
}

func (g *gmailClient) GetMessage(ctx context.Context, id string) (*model.MessageSummary, error) {
	msg, err := g.client.Users.Messages.Get(gmailUser, id).
		Format("metadata").Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("failed to get message", err)
	}

	summary := &model.MessageSummary{
		ID:       id,
		Subject:  "(No subject)",
		LabelIDs: msg.LabelIds,
		Snippet:  msg.Snippet,
	}
	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "Subject":
				summary.Subject = header.Value
			case "From":
				summary.From = header.Value
			case "Date":
				if t, err := mail.ParseDate(header.Value); err == nil {
					summary.DateStr = t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	for _, label := range msg.LabelIds {
		if label == "UNREAD" {
			summary.IsUnread = true
			break
		}
	}
	return summary, nil
}

func (g *gmailClient) EstimateCount(ctx context.Context, query string) (int64, error) {
	list, err := g.client.Users.Messages.List(gmailUser).Q(query).Context(ctx).Do()
	if err != nil {
		return 0, wrapErr("failed to count messages", err)
	}
	return list.ResultSizeEstimate, nil
}

func (g *gmailClient) SendMessage(ctx context.Context, raw []byte) error {
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	_, err := g.client.Users.Messages.Send(gmailUser, &gmail.Message{Raw: encoded}).
		Context(ctx).Do()
	if err != nil {
		return wrapErr("failed to send message", err)
	}
	return nil
}

func (g *gmailClient) Profile(ctx context.Context) (string, error) {
	profile, err := g.client.Users.GetProfile(gmailUser).Context(ctx).Do()
	if err != nil {
		return "", wrapErr("failed to get profile", err)
	}
	return profile.EmailAddress, nil
}
