package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"GopherView/internal/logger"

	"go.uber.org/zap"
)

// ProgressFunc receives whole-number load percentages in [0, 100]. It is only
// called when the transfer length is known, and never twice with the same value.
type ProgressFunc func(percent int)

// Percent is floor(loaded*100/total). It returns -1 when total is unknown.
func Percent(loaded, total int64) int {
	if total <= 0 {
		return -1
	}
	if loaded >= total {
		return 100
	}
	return int(loaded * 100 / total)
}

// Fetch reads the whole resource at url. http(s) URLs go over the network,
// file:// URLs and bare paths are read from disk. Cancelling ctx aborts the
// transfer with ctx.Err().
func Fetch(ctx context.Context, url string, onProgress ProgressFunc) ([]byte, error) {
	body, total, err := open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	pr := &progressReader{ctx: ctx, r: body, total: total, onProgress: onProgress, last: -1}
	data, err := io.ReadAll(pr)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	logger.Log.Debug("Fetched asset", zap.String("url", url), zap.Int("bytes", len(data)))
	return data, nil
}

func open(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	if isRemote(url) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("request %s: %w", url, err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, 0, fmt.Errorf("get %s: %w", url, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, 0, fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
		}
		return resp.Body, resp.ContentLength, nil
	}

	path := LocalPath(url)
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func isRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// LocalPath strips a file:// scheme. Other inputs are returned unchanged.
func LocalPath(url string) string {
	return strings.TrimPrefix(url, "file://")
}

type progressReader struct {
	ctx        context.Context
	r          io.Reader
	loaded     int64
	total      int64
	onProgress ProgressFunc
	last       int
}

func (p *progressReader) Read(buf []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(buf)
	p.loaded += int64(n)
	if p.onProgress != nil {
		if pct := Percent(p.loaded, p.total); pct >= 0 && pct != p.last {
			p.last = pct
			p.onProgress(pct)
		}
	}
	return n, err
}
