package backend

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

const (
	blogsPath         = "/blogs"
	qrLogsPath        = "/qr-logs"
	notificationsPath = "/notifications"
)

// Blog categories
const (
	CategoryNews         = "news"
	CategoryAnnouncement = "announcement"
	CategoryArticle      = "article"
)

var BlogCategories = []string{CategoryNews, CategoryAnnouncement, CategoryArticle}

// Notification audiences
const (
	AudienceAll       = "all"
	AudienceAttendees = "attendees"
	AudienceUsers     = "users"
)

var NotificationAudiences = []string{AudienceAll, AudienceAttendees, AudienceUsers}

type Blog struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Body       string    `json:"body"`
	Published  bool      `json:"published"`
	Cover      string    `json:"cover"`
	AuthorName string    `json:"author_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ScanLog is one QR code scan at a conference gate.
type ScanLog struct {
	ID           string    `json:"id"`
	ConferenceID string    `json:"conference_id"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	TicketID     string    `json:"ticket_id,omitempty"`
	Gate         string    `json:"gate"`
	Valid        bool      `json:"valid"`
	ScannedAt    time.Time `json:"scanned_at"`
}

type ScanLogFilter struct {
	ConferenceID string
	From         time.Time
	To           time.Time
}

func (f ScanLogFilter) values() url.Values {
	v := make(url.Values)
	if f.ConferenceID != "" {
		v.Set("conference_id", f.ConferenceID)
	}
	if !f.From.IsZero() {
		v.Set("from", f.From.Format(time.RFC3339Nano))
	}
	if !f.To.IsZero() {
		v.Set("to", f.To.Format(time.RFC3339Nano))
	}
	return v
}

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Audience  string    `json:"audience"`
	UserIDs   []string  `json:"user_ids,omitempty"`
	CreatedBy string    `json:"created_by,omitempty"`
	SentAt    time.Time `json:"sent_at"`
}

func (c *Client) ListBlogs(ctx context.Context) ([]Blog, error) {
	return list[Blog](ctx, c, blogsPath, nil)
}

func (c *Client) CreateBlog(ctx context.Context, body Multipart) (Blog, error) {
	return sendMultipart[Blog](ctx, c, http.MethodPost, blogsPath, body)
}

func (c *Client) UpdateBlog(ctx context.Context, id string, body Multipart) (Blog, error) {
	return sendMultipart[Blog](ctx, c, http.MethodPut, resourcePath(blogsPath, id), body)
}

func (c *Client) DeleteBlog(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(blogsPath, id))
}

func (c *Client) ListScanLogs(ctx context.Context, filter ScanLogFilter) ([]ScanLog, error) {
	return list[ScanLog](ctx, c, qrLogsPath, filter.values())
}

func (c *Client) ListNotifications(ctx context.Context) ([]Notification, error) {
	return list[Notification](ctx, c, notificationsPath, nil)
}

func (c *Client) SendNotification(ctx context.Context, body interface{}) (Notification, error) {
	return send[Notification](ctx, c, http.MethodPost, notificationsPath, body)
}

func (c *Client) DeleteNotification(ctx context.Context, id string) error {
	return c.delete(ctx, resourcePath(notificationsPath, id))
}
