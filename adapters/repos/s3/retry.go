//       _
//   ___| | ___ _ __ ___   __ _ _ __
//  / _ \ |/ _ \ '_ ` _ \ / _` | '_ \
// |  __/ |  __/ | | | | | (_| | |_) |
//  \___|_|\___|_| |_| |_|\__,_| .__/
//                              |_|
//
//  Copyright © 2019 - 2025 Elemap B.V. All rights reserved.
//
//  CONTACT: hello@elemap.io
//

package s3

import (
	"context"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/minio/minio-go/v7"
)

const (
	retryInitialInterval = 250 * time.Millisecond
	retryMaxElapsedTime  = 10 * time.Second
)

// withRetry runs op under an exponential backoff. Only transient failures
// are retried, anything the store rejects outright is returned as-is.
func withRetry(ctx context.Context, op func() error) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = retryInitialInterval
	eb.MaxElapsedTime = retryMaxElapsedTime
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(eb, ctx))
}

// isTransient treats transport-level failures and server-side errors as
// retryable. Client errors, a missing key for example, never heal on
// their own.
func isTransient(err error) bool {
	resp := minio.ToErrorResponse(err)
	if resp.StatusCode == 0 {
		return true
	}
	return resp.StatusCode >= http.StatusInternalServerError
}
