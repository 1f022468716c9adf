package emailsvc

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/confadmin/core"
	"github.com/trezcool/confadmin/services/logger"
)

func TestSendgridService_prepare(t *testing.T) {
	member := mail.Address{Name: "Mem Ber", Address: "member@test.cd"}
	events := mail.Address{Name: "Events", Address: "events@test.cd"}

	tests := []struct {
		name        string
		support     string
		testMode    bool
		msg         core.EmailMessage
		wantReplyTo string
		wantCats    []string
		wantSandbox bool
	}{
		{
			name:     "no support address",
			msg:      core.EmailMessage{To: []mail.Address{member}, Subject: "Hi", TextContent: "hi"},
			wantCats: []string{"console"},
		},
		{
			name:        "support reply-to",
			support:     "Support <support@test.cd>",
			msg:         core.EmailMessage{To: []mail.Address{member}, TemplateName: "kyc_decision", Categories: []string{"KYC", "kyc", " "}},
			wantReplyTo: "support@test.cd",
			wantCats:    []string{"console", "kyc_decision", "kyc"},
		},
		{
			name:        "message reply-to wins",
			support:     "support@test.cd",
			msg:         core.EmailMessage{To: []mail.Address{member}, ReplyTo: &events, TemplateName: "console"},
			wantReplyTo: "events@test.cd",
			wantCats:    []string{"console"},
		},
		{
			name:        "invalid support address",
			support:     "not an address",
			testMode:    true,
			msg:         core.EmailMessage{To: []mail.Address{member}},
			wantCats:    []string{"console"},
			wantSandbox: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := &core.Config{
				Env: "QA", AppName: "Console", TestMode: tt.testMode,
				DefaultFromEmail: "Console <noreply@test.cd>", SupportEmail: tt.support,
			}
			svc := NewSendgridService(conf, logsvc.NopLogger{}).(*sendgridService)

			m := svc.prepare(tt.msg)
			require.Len(t, m.Personalizations, 1)
			assert.Equal(t, "[Console] "+tt.msg.Subject, m.Personalizations[0].Subject)
			assert.Equal(t, "noreply@test.cd", m.From.Address)
			assert.Equal(t, tt.wantCats, m.Categories)
			assert.Equal(t, "qa", m.CustomArgs["env"])

			if tt.wantReplyTo == "" {
				assert.Nil(t, m.ReplyTo)
			} else {
				require.NotNil(t, m.ReplyTo)
				assert.Equal(t, tt.wantReplyTo, m.ReplyTo.Address)
			}
			if tt.wantSandbox {
				require.NotNil(t, m.MailSettings)
				assert.True(t, *m.MailSettings.SandboxMode.Enable)
			} else {
				assert.Nil(t, m.MailSettings)
			}
		})
	}
}

func TestConsoleService_replyTo(t *testing.T) {
	conf := &core.Config{AppName: "Console", DefaultFromEmail: "noreply@test.cd", SupportEmail: "Support <support@test.cd>"}
	out := new(strings.Builder)
	svc := newConsoleService(conf, logsvc.NopLogger{}, out)

	require.NoError(t, svc.send(core.EmailMessage{
		To:          []mail.Address{{Address: "member@test.cd"}},
		Subject:     "Hi",
		TextContent: "hello",
	}))
	assert.Contains(t, out.String(), "Reply-To: \"Support\" <support@test.cd>\r\n")
	assert.Contains(t, out.String(), "Subject: [Console] Hi\r\n")
}
