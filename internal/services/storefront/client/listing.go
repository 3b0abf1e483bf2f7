package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
)

// ListAllPageSize is the page size used when walking the full listing.
const ListAllPageSize = 100

const (
	listRetryMaxTries   = 5
	listRetryMaxElapsed = 30 * time.Second
)

// ListAllStores walks every listing page. Transport failures and 5xx
// responses are retried with exponential backoff; 4xx responses are not.
func (c *Client) ListAllStores(ctx context.Context) ([]domain.StoreRecord, error) {
	var (
		all   []domain.StoreRecord
		token string
	)
	for {
		pageToken := token
		page, err := backoff.Retry(ctx, func() (Page, error) {
			page, err := c.ListStores(ctx, ListAllPageSize, pageToken)
			if err != nil && !retryable(err) {
				return Page{}, backoff.Permanent(err)
			}
			return page, err
		},
			backoff.WithBackOff(newListBackOff()),
			backoff.WithMaxTries(listRetryMaxTries),
			backoff.WithMaxElapsedTime(listRetryMaxElapsed),
			backoff.WithNotify(func(err error, wait time.Duration) {
				log.Printf("list coffee stores retry page_token=%q wait=%s err=%v", pageToken, wait, err)
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("list coffee stores: %w", err)
		}
		all = append(all, page.Stores...)
		if page.NextPageToken == "" || page.NextPageToken == token {
			return all, nil
		}
		token = page.NextPageToken
	}
}

func newListBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= http.StatusInternalServerError || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}
