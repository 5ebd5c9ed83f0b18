package nse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const opBhavcopy = "bhavcopy"

// DownloadBhavcopy fetches the daily equity bhavcopy archive for date
// and stores the zip unmodified in the client's output directory,
// returning the path of the written file. The archive URL is derived
// from the date alone; a non-200 response usually means no trading
// session on that date.
func (c *Client) DownloadBhavcopy(ctx context.Context, date time.Time) (string, error) {
	name := fmt.Sprintf("cm_bhavcopy_%s.zip", date.Format("02012006"))
	url := fmt.Sprintf("%s/content/historical/EQUITIES/%s/%s/%s",
		c.archiveURL,
		date.Format("2006"),
		strings.ToUpper(date.Format("Jan")),
		name)

	c.logger.InfoContext(ctx, "Downloading bhavcopy",
		slog.String("date", date.Format("2006-01-02")),
		slog.String("url", url))

	body, err := c.fetch(ctx, opBhavcopy, url)
	if err != nil {
		return "", err
	}

	path := filepath.Join(c.destDir, name)
	if err := os.WriteFile(path, body, 0644); err != nil {
		c.logger.ErrorContext(ctx, "Failed to write bhavcopy archive",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("write bhavcopy archive %s: %w", path, err)
	}

	c.logger.InfoContext(ctx, "Bhavcopy saved",
		slog.String("path", path),
		slog.Int("size_bytes", len(body)))
	return path, nil
}
