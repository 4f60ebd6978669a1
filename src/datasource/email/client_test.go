package email

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SurvivalDashboard/src/storage"
)

type fakeMailbox struct {
	emails       []*Email
	connectErr   error
	fetchErr     error
	disconnected bool
}

func (f *fakeMailbox) Connect() error { return f.connectErr }
func (f *fakeMailbox) Disconnect()    { f.disconnected = true }
func (f *fakeMailbox) FetchUnreadEmails() ([]*Email, error) {
	return f.emails, f.fetchErr
}

func testLogger(t *testing.T) *storage.Logger {
	t.Helper()
	logger, err := storage.NewLogger(filepath.Join(t.TempDir(), "test.log"), "")
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	return logger
}

func TestFilterLatestTargetEmail(t *testing.T) {
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	emails := []*Email{
		{UID: 1, Subject: "passengers weekly", Date: base},
		{UID: 2, Subject: "lunch", Date: base.Add(3 * time.Hour)},
		{UID: 3, Subject: "passengers weekly v2", Date: base.Add(time.Hour)},
	}

	got := filterLatestTargetEmail(emails, "passengers")
	require.NotNil(t, got)
	assert.Equal(t, uint32(3), got.UID)

	assert.Nil(t, filterLatestTargetEmail(emails, "fares"))
	assert.Nil(t, filterLatestTargetEmail(nil, "passengers"))
}

func TestCheckAndProcessEmails(t *testing.T) {
	logger := testLogger(t)

	box := &fakeMailbox{emails: []*Email{
		{UID: 7, Subject: "passengers", Date: time.Now()},
	}}
	got, err := CheckAndProcessEmails(box, "passengers", logger)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint32(7), got.UID)
	assert.True(t, box.disconnected)

	empty := &fakeMailbox{}
	got, err = CheckAndProcessEmails(empty, "passengers", logger)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = CheckAndProcessEmails(&fakeMailbox{connectErr: errors.New("refused")}, "passengers", logger)
	assert.ErrorContains(t, err, "refused")

	broken := &fakeMailbox{fetchErr: errors.New("timeout")}
	_, err = CheckAndProcessEmails(broken, "passengers", logger)
	assert.ErrorContains(t, err, "timeout")
	assert.True(t, broken.disconnected)
}

func TestDecodeHeaderGBK(t *testing.T) {
	assert.Equal(t, "乘客数据", decodeHeader("=?gbk?B?s8u/zcr9vt0=?="))
	assert.Equal(t, "plain subject", decodeHeader("plain subject"))
}

func TestCharsetReaderPassthrough(t *testing.T) {
	r, err := charsetReader("utf-8", strings.NewReader("abc"))
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

const rawMessage = "From: ops@example.com\r\n" +
	"Subject: =?gbk?B?s8u/zcr9vt0=?=\r\n" +
	"Date: Thu, 01 Oct 2026 09:00:00 +0000\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=XYZ\r\n" +
	"\r\n" +
	"--XYZ\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"latest passenger list attached\r\n" +
	"--XYZ\r\n" +
	"Content-Type: application/octet-stream\r\n" +
	"Content-Disposition: attachment; filename=\"train.csv\"\r\n" +
	"Content-Transfer-Encoding: base64\r\n" +
	"\r\n" +
	"UGFzc2VuZ2VySWQsU3Vydml2ZWQKMSwwCg==\r\n" +
	"--XYZ--\r\n"

func TestParseMessage(t *testing.T) {
	c := NewEmailClient("imap.example.com:993", "user", "secret", nil)

	email, err := c.parseMessage(42, strings.NewReader(rawMessage))
	require.NoError(t, err)
	assert.Equal(t, uint32(42), email.UID)
	assert.Equal(t, "乘客数据", email.Subject)
	assert.Equal(t, 2026, email.Date.Year())
	require.Len(t, email.Attachments, 1)
	assert.Equal(t, "train.csv", email.Attachments[0].Filename)
	assert.Equal(t, "PassengerId,Survived\n1,0\n", string(email.Attachments[0].Content))
}

func TestFetchWithoutConnect(t *testing.T) {
	c := NewEmailClient("imap.example.com:993", "user", "secret", nil)
	_, err := c.FetchUnreadEmails()
	assert.Error(t, err)
}
