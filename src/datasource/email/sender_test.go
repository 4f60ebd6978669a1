package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SurvivalDashboard/src/config"
)

func senderConfig() *config.Config {
	c := &config.Config{}
	c.SendEmail.Server = "smtp.example.com"
	c.SendEmail.Username = "dashboard@example.com"
	c.SendEmail.To = []string{"analyst@example.com"}
	return c
}

func TestNewReportSender(t *testing.T) {
	s, err := NewReportSender(senderConfig())
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:465", s.server)
	assert.Equal(t, "Passenger survival report", s.subject)

	c := senderConfig()
	c.SendEmail.To = nil
	_, err = NewReportSender(c)
	assert.Error(t, err)

	c = senderConfig()
	c.SendEmail.Server = ""
	_, err = NewReportSender(c)
	assert.Error(t, err)
}

func TestBuildMessage(t *testing.T) {
	c := senderConfig()
	c.SendEmail.Server = "smtp.example.com:587"
	c.SendEmail.Subject = "weekly charts"
	s, err := NewReportSender(c)
	require.NoError(t, err)

	chart := filepath.Join(t.TempDir(), "fare_survival.html")
	require.NoError(t, os.WriteFile(chart, []byte("<html></html>"), 0644))

	msg, err := s.buildMessage("3 charts attached", []string{chart})
	require.NoError(t, err)
	assert.Equal(t, []string{"analyst@example.com"}, msg.To)
	assert.Equal(t, "weekly charts", msg.Subject)
	assert.Equal(t, "3 charts attached", string(msg.Text))
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "fare_survival.html", msg.Attachments[0].Filename)

	_, err = s.buildMessage("", []string{filepath.Join(t.TempDir(), "missing.png")})
	assert.Error(t, err)
}
