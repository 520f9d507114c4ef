package publish

import (
	"context"
	"testing"
	"time"

	"github.com/raushankrgupta/product-page-generator/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerRecent(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, title := range []string{"first", "second", "third"} {
		require.NoError(t, l.Record(ctx, models.PublishedProduct{Title: title, PublishedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	recent, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Title)
	assert.Equal(t, "second", recent[1].Title)

	all, err := l.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

type recordingSender struct {
	to, subject, text, html string
}

func (s *recordingSender) SendEmail(_ context.Context, _, toEmail, subject, text, html string) error {
	s.to, s.subject, s.text, s.html = toEmail, subject, text, html
	return nil
}

func TestEmailNotifier(t *testing.T) {
	s := &recordingSender{}
	err := NewEmailNotifier(s, "ops@example.com").Published(context.Background(), models.PublishedProduct{
		Title:    "Desk Lamp",
		AdminURL: "https://shop.myshopify.com/admin/products/1",
	})
	require.NoError(t, err)

	assert.Equal(t, "ops@example.com", s.to)
	assert.Equal(t, "Draft created: Desk Lamp", s.subject)
	assert.Contains(t, s.text, "https://shop.myshopify.com/admin/products/1")
	assert.Contains(t, s.html, `href="https://shop.myshopify.com/admin/products/1"`)
}
