package line

import (
	"context"
	"fmt"
	"memocal/internal/pkg/logger"

	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// Client wraps the linebot.Client and pushes reminders to a single recipient.
type Client struct {
	*linebot.Client
	recipientID string
	log         logger.Logger
}

// NewClient creates a LINE Bot client that pushes reminders to recipientID.
func NewClient(channelSecret, channelToken, recipientID string, log logger.Logger, options ...linebot.ClientOption) (*Client, error) {
	if channelSecret == "" || channelToken == "" {
		return nil, fmt.Errorf("CHANNEL_SECRET and CHANNEL_ACCESS_TOKEN must be set")
	}
	bot, err := linebot.New(channelSecret, channelToken, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE Bot client: %w", err)
	}
	log.Info("Successfully created LINE Bot client.")
	return &Client{
		Client:      bot,
		recipientID: recipientID,
		log:         log,
	}, nil
}

// PushMessages sends one or more messages using the PushMessage API.
func (c *Client) PushMessages(ctx context.Context, to string, messages ...linebot.SendingMessage) error {
	_, err := c.PushMessage(to, messages...).WithContext(ctx).Do()
	if err != nil {
		return err // Return the error for the caller to handle
	}
	c.log.Debug("Successfully sent push message.")
	return nil
}

// HasPermission reports whether a recipient is configured.
func (c *Client) HasPermission(context.Context) bool {
	return c.recipientID != ""
}

// RequestPermission fails when no recipient is configured; LINE has no runtime prompt.
func (c *Client) RequestPermission(context.Context) error {
	if c.recipientID == "" {
		return fmt.Errorf("LINE_RECIPIENT_ID is not set")
	}
	return nil
}

// Deliver pushes the reminder text to the recipient.
func (c *Client) Deliver(ctx context.Context, memoID uint, title string) error {
	message := linebot.NewTextMessage(fmt.Sprintf("備忘錄提醒：「%s」的時間到了", title))
	if err := c.PushMessages(ctx, c.recipientID, message); err != nil {
		return fmt.Errorf("failed to push reminder for memo %d: %w", memoID, err)
	}
	c.log.Info(fmt.Sprintf("Successfully pushed reminder for memo %d", memoID))
	return nil
}

// Dismiss is a no-op: pushed messages cannot be recalled.
func (c *Client) Dismiss(context.Context, uint) error {
	return nil
}
