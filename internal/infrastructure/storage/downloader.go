package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Downloader fetches remote images, paced so a burst of imported products
// does not hammer the suppliers' hosts.
type Downloader struct {
	client  *http.Client
	limiter *rate.Limiter
	maxSize int64
}

// NewDownloader allows perSecond requests with the given burst. Bodies over maxSize are rejected.
func NewDownloader(timeout time.Duration, perSecond float64, burst int, maxSize int64) *Downloader {
	if burst <= 0 {
		burst = 1
	}
	return &Downloader{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		maxSize: maxSize,
	}
}

// Fetch waits for a rate slot then downloads url
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad http status: %d %s", resp.StatusCode, resp.Status)
	}

	// one extra byte tells an oversized body from one exactly at the limit
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if int64(len(data)) > d.maxSize {
		return nil, fmt.Errorf("image exceeds %d bytes", d.maxSize)
	}

	return data, nil
}
