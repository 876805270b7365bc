package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage_WithoutAttachment(t *testing.T) {
	msg := string(buildMessage("billing@facture.local", []string{"a@b.test"}, "Your invoice", "<p>hi</p>", nil))

	assert.Contains(t, msg, "To: a@b.test")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.Contains(t, msg, "<p>hi</p>")
	assert.NotContains(t, msg, "multipart/mixed")
}

func TestBuildMessage_WithAttachment(t *testing.T) {
	attachment := &Attachment{Filename: "INV-20260115-1.pdf", Content: []byte("%PDF-1.7")}
	msg := string(buildMessage("billing@facture.local", []string{"a@b.test", "c@d.test"}, "Your invoice", "<p>hi</p>", attachment))

	assert.Contains(t, msg, "To: a@b.test, c@d.test")
	assert.Contains(t, msg, "multipart/mixed")
	assert.Contains(t, msg, `attachment; filename="INV-20260115-1.pdf"`)
	assert.Contains(t, msg, "Content-Transfer-Encoding: base64")
	// One closing boundary only.
	assert.Equal(t, 1, strings.Count(msg, "--"+mixedBoundary+"--"))
}
