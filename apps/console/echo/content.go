package echoconsole

import (
	"context"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/confadmin/apps/console/forms"
	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/core/audit"
	"github.com/trezcool/confadmin/core/form"
	"github.com/trezcool/confadmin/core/table"
	"github.com/trezcool/confadmin/core/user"
	"github.com/trezcool/confadmin/services/backend"
)

func (s *Server) registerContent(g *echo.Group) {
	registerResource(s, g.Group("/blogs"), resource[backend.Blog, *forms.BlogForm]{
		Name:     resBlogs,
		Path:     "/blogs",
		Title:    "Blog & News",
		Singular: "post",

		List: func(ctx context.Context, _ url.Values) ([]backend.Blog, error) {
			return s.backend.ListBlogs(ctx)
		},
		ID:    func(b backend.Blog) string { return b.ID },
		Label: func(b backend.Blog) string { return b.Title },
		Columns: []table.Column{
			{Key: "cover", Label: ""},
			{Key: "title", Label: "Title", Sortable: true, Searchable: true},
			{Key: "category", Label: "Category", Sortable: true, Searchable: true},
			{Key: "author", Label: "Author", Sortable: true, Searchable: true},
			{Key: "published", Label: "Published", Sortable: true},
			{Key: "created_at", Label: "Created", Sortable: true},
		},
		Cells: func(b backend.Blog, _ map[string]string) map[string]table.Cell {
			return map[string]table.Cell{
				"cover":      s.imageCell(b.Cover),
				"title":      table.Text(b.Title),
				"category":   table.Text(form.Humanize(b.Category)),
				"author":     table.Text(b.AuthorName),
				"published":  table.Bool(b.Published),
				"created_at": table.DateTime(b.CreatedAt),
			}
		},

		NewForm:  func() *forms.BlogForm { return new(forms.BlogForm) },
		EditForm: forms.NewBlogForm,
		Create: func(ctx context.Context, f *forms.BlogForm, files []backend.File) (backend.Blog, error) {
			return s.backend.CreateBlog(ctx, multipartBody(f, files))
		},
		Update: func(ctx context.Context, id string, f *forms.BlogForm, files []backend.File) (backend.Blog, error) {
			return s.backend.UpdateBlog(ctx, id, multipartBody(f, files))
		},
		Delete: s.backend.DeleteBlog,
	})

	registerResource(s, g.Group("/notifications"), resource[backend.Notification, *forms.NotificationForm]{
		Name:         resNotifications,
		Path:         "/notifications",
		Title:        "Notifications",
		Singular:     "notification",
		CreateAction: audit.ActionSend,
		CreateLabel:  "Send notification",

		List: func(ctx context.Context, _ url.Values) ([]backend.Notification, error) {
			return s.backend.ListNotifications(ctx)
		},
		ID:    func(n backend.Notification) string { return n.ID },
		Label: func(n backend.Notification) string { return n.Title },
		Columns: []table.Column{
			{Key: "title", Label: "Title", Sortable: true, Searchable: true},
			{Key: "message", Label: "Message", Searchable: true},
			{Key: "audience", Label: "Audience", Sortable: true},
			{Key: "created_by", Label: "Sent by", Searchable: true},
			{Key: "sent_at", Label: "Sent", Sortable: true},
		},
		Cells: func(n backend.Notification, _ map[string]string) map[string]table.Cell {
			return map[string]table.Cell{
				"title":      table.Text(n.Title),
				"message":    table.Text(core.Truncate(n.Message, 80)),
				"audience":   table.Text(form.Humanize(n.Audience)),
				"created_by": table.Text(n.CreatedBy),
				"sent_at":    table.DateTime(n.SentAt),
			}
		},

		NewForm: func() *forms.NotificationForm { return new(forms.NotificationForm) },
		Choices: s.recipientChoices,
		Create: func(ctx context.Context, f *forms.NotificationForm, _ []backend.File) (backend.Notification, error) {
			return s.backend.SendNotification(ctx, f.Payload())
		},
		Delete: s.backend.DeleteNotification,
	})
}

func (s *Server) recipientChoices(ctx context.Context, usr user.User) (form.Choices, error) {
	users, err := s.users(ctx, usr)
	if err != nil {
		return nil, err
	}
	opts := make([]form.Option, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			opts = append(opts, form.Option{Value: u.ID, Label: u.FullName() + " <" + u.Email + ">"})
		}
	}
	return form.Choices{"user_ids": opts}, nil
}
