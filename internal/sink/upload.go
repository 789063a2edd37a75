package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/specialistvlad/partsegnet/internal/ctxlog"
)

// defaultClient is shared by upload sinks without their own client so TCP
// connections are reused.
var defaultClient = &http.Client{}

// Upload PUTs artifacts to a pre-signed object store URL.
type Upload struct {
	URL    string
	Client *http.Client
}

// Publish implements Sink. Any status other than 200 is an error.
func (s *Upload) Publish(ctx context.Context, a Artifact) error {
	logger := ctxlog.FromContext(ctx).With("sink", "upload", "network", a.Network)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.URL, bytes.NewReader(a.Data))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	contentType := "text/plain"
	if a.Kind == KindHTML {
		contentType = "text/html"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(a.Data))

	logger.Info("Uploading artifact", "kind", a.Kind, "size", len(a.Data), "contentType", contentType)

	client := s.Client
	if client == nil {
		client = defaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload failed with status: %s", resp.Status)
	}
	logger.Info("Successfully uploaded artifact", "status", resp.Status)
	return nil
}
