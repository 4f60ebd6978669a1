package email

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetAttachmentHandlerSavesFirstDataset(t *testing.T) {
	dir := t.TempDir()
	h := NewDatasetAttachmentHandler("passengers", dir, testLogger(t))

	msg := &Email{
		UID:     5,
		Subject: "passengers 2026-10",
		Attachments: []*Attachment{
			{Filename: "notes.txt", Content: []byte("ignore")},
			{Filename: "../train.CSV", Content: []byte("PassengerId\n1\n")},
			{Filename: "extra.xlsx", Content: []byte("xlsx")},
		},
	}

	path, err := h.Handle(msg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "train.CSV"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PassengerId\n1\n", string(data))

	// 同一封邮件不会重复处理
	path, err = h.Handle(msg)
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestDatasetAttachmentHandlerSkips(t *testing.T) {
	dir := t.TempDir()
	h := NewDatasetAttachmentHandler("passengers", dir, nil)

	path, err := h.Handle(&Email{UID: 1, Subject: "invoice", Attachments: []*Attachment{
		{Filename: "train.csv", Content: []byte("x")},
	}})
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = h.Handle(&Email{UID: 2, Subject: "passengers", Attachments: []*Attachment{
		{Filename: "photo.png", Content: []byte("x")},
	}})
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.False(t, h.isProcessed(2))

	path, err = h.Handle(nil)
	require.NoError(t, err)
	assert.Empty(t, path)
}
